package usecase

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

// Roster is the exported snapshot of the organization
type Roster struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Departments []RosterDepartment `json:"departments"`
	Unassigned  []RosterEmployee   `json:"unassigned"`
}

type RosterDepartment struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	ManagerID string           `json:"manager_id,omitempty"`
	Members   []RosterEmployee `json:"members"`
}

type RosterEmployee struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	Role          string `json:"role"`
	Level         string `json:"level"`
	AdmissionDate string `json:"admission_date"`
	ManagerID     string `json:"manager_id,omitempty"`
	BaseSalary    string `json:"base_salary"`
}

type ExportUseCase struct {
	repo interfaces.Repository
}

func NewExportUseCase(repo interfaces.Repository) *ExportUseCase {
	return &ExportUseCase{repo: repo}
}

// BuildRoster groups employees by the department their departmentId points at. Employees
// pointing at a missing department are listed as unassigned.
func (uc *ExportUseCase) BuildRoster(ctx context.Context) (*Roster, error) {
	departments, err := uc.repo.Department().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list departments")
	}
	employees, err := uc.repo.Employee().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}

	roster := &Roster{
		GeneratedAt: time.Now().UTC(),
		Departments: make([]RosterDepartment, 0, len(departments)),
		Unassigned:  []RosterEmployee{},
	}

	index := make(map[model.DepartmentID]int, len(departments))
	for i, d := range departments {
		index[d.ID] = i
		roster.Departments = append(roster.Departments, RosterDepartment{
			ID:        d.ID.String(),
			Name:      d.Name,
			ManagerID: d.ManagerID.String(),
			Members:   []RosterEmployee{},
		})
	}

	for _, e := range employees {
		row := toRosterEmployee(e)
		if i, ok := index[e.DepartmentID]; ok && e.DepartmentID != "" {
			roster.Departments[i].Members = append(roster.Departments[i].Members, row)
			continue
		}
		roster.Unassigned = append(roster.Unassigned, row)
	}

	return roster, nil
}

// Roster writes the roster as indented JSON to w
func (uc *ExportUseCase) Roster(ctx context.Context, w io.Writer) error {
	roster, err := uc.BuildRoster(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(roster); err != nil {
		return goerr.Wrap(err, "failed to encode roster")
	}
	return nil
}

func toRosterEmployee(e *model.Employee) RosterEmployee {
	return RosterEmployee{
		ID:            e.ID.String(),
		Name:          e.Name,
		Email:         e.Email,
		Status:        e.Status.String(),
		Role:          e.Role,
		Level:         e.Level.String(),
		AdmissionDate: e.AdmissionDate,
		ManagerID:     e.ManagerID.String(),
		BaseSalary:    e.BaseSalary.StringFixed(2),
	}
}
