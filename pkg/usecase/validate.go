package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
)

// IssueKind classifies a referential integrity issue
type IssueKind string

const (
	// employee points at a department that does not list it
	IssueMemberNotListed IssueKind = "member_not_listed"
	// employee points at a department that does not exist
	IssueDanglingDepartment IssueKind = "dangling_department"
	// department lists an employee that does not exist
	IssueUnknownMember IssueKind = "unknown_member"
	// department lists an employee pointing elsewhere
	IssueMemberNotLinked     IssueKind = "member_not_linked"
	IssueDuplicateMembership IssueKind = "duplicate_membership"
	IssueCountMismatch       IssueKind = "count_mismatch"
	// reported only, repair cannot choose which employee keeps the email
	IssueDuplicateEmail  IssueKind = "duplicate_email"
	IssueDanglingManager IssueKind = "dangling_manager"
)

// ValidationIssue represents a single issue found during the integrity check
type ValidationIssue struct {
	Kind         IssueKind
	EmployeeID   model.EmployeeID
	DepartmentID model.DepartmentID
	Message      string
	Expected     string
	Actual       string
}

// ValidationResult holds the results of the integrity check
type ValidationResult struct {
	Issues []ValidationIssue
	// Repaired is the number of documents rewritten by Repair
	Repaired int
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// CountByKind returns the number of issues of the given kind
func (r *ValidationResult) CountByKind(kind IssueKind) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

// IntegrityUseCase verifies and repairs the employee/department cross references
type IntegrityUseCase struct {
	repo interfaces.Repository
}

func NewIntegrityUseCase(repo interfaces.Repository) *IntegrityUseCase {
	return &IntegrityUseCase{repo: repo}
}

// Check reports every broken cross reference. It does NOT modify any data.
func (uc *IntegrityUseCase) Check(ctx context.Context) (*ValidationResult, error) {
	employees, err := uc.repo.Employee().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}
	departments, err := uc.repo.Department().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list departments")
	}

	return inspect(employees, departments), nil
}

// Repair checks the data and rewrites it in one transaction. The employee's departmentId is
// the source of truth: dangling department and manager references are cleared, and every
// department's member list and count are rebuilt from the employees pointing at it.
// Duplicate emails are reported but left untouched.
//
// Firestore limits a transaction to 500 writes, so a store with more broken documents has to
// be repaired in several runs.
func (uc *IntegrityUseCase) Repair(ctx context.Context) (*ValidationResult, error) {
	var result *ValidationResult
	err := uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		employees, err := tx.ListEmployees()
		if err != nil {
			return err
		}
		departments, err := tx.ListDepartments()
		if err != nil {
			return err
		}

		result = inspect(employees, departments)
		if !result.HasIssues() {
			return nil
		}

		deptByID := make(map[model.DepartmentID]*model.Department, len(departments))
		for _, d := range departments {
			deptByID[d.ID] = d
		}
		empByID := make(map[model.EmployeeID]*model.Employee, len(employees))
		for _, e := range employees {
			empByID[e.ID] = e
		}

		members := make(map[model.DepartmentID][]model.EmployeeID, len(departments))
		for _, e := range employees {
			fixed := *e
			changed := false
			if fixed.DepartmentID != "" {
				if _, ok := deptByID[fixed.DepartmentID]; !ok {
					fixed.DepartmentID = ""
					changed = true
				}
			}
			if fixed.ManagerID != "" {
				if _, ok := empByID[fixed.ManagerID]; !ok {
					fixed.ManagerID = ""
					changed = true
				}
			}
			if changed {
				if _, err := tx.UpdateEmployee(&fixed); err != nil {
					return err
				}
				result.Repaired++
			}
			if fixed.DepartmentID != "" {
				members[fixed.DepartmentID] = append(members[fixed.DepartmentID], fixed.ID)
			}
		}

		for _, d := range departments {
			fixed := d.Copy()
			fixed.EmployeeIDs = orderMembers(d.EmployeeIDs, members[d.ID])
			fixed.EmployeesCount = len(fixed.EmployeeIDs)
			if fixed.ManagerID != "" {
				if _, ok := empByID[fixed.ManagerID]; !ok {
					fixed.ManagerID = ""
				}
			}

			if fixed.ManagerID == d.ManagerID &&
				fixed.EmployeesCount == d.EmployeesCount &&
				slices.Equal(fixed.EmployeeIDs, d.EmployeeIDs) {
				continue
			}
			if _, err := tx.UpdateDepartment(fixed); err != nil {
				return err
			}
			result.Repaired++
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to repair references")
	}

	logging.From(ctx).Info("integrity repair finished",
		"issues", len(result.Issues),
		"repaired", result.Repaired)
	return result, nil
}

// orderMembers keeps the current order of members that stay and appends the new ones
func orderMembers(current, want []model.EmployeeID) []model.EmployeeID {
	wanted := make(map[model.EmployeeID]bool, len(want))
	for _, id := range want {
		wanted[id] = true
	}

	var out []model.EmployeeID
	for _, id := range model.UniqueEmployeeIDs(current) {
		if wanted[id] {
			out = append(out, id)
			delete(wanted, id)
		}
	}
	for _, id := range want {
		if wanted[id] {
			out = append(out, id)
			delete(wanted, id)
		}
	}
	return out
}

func inspect(employees []*model.Employee, departments []*model.Department) *ValidationResult {
	result := &ValidationResult{}

	empByID := make(map[model.EmployeeID]*model.Employee, len(employees))
	for _, e := range employees {
		empByID[e.ID] = e
	}
	deptByID := make(map[model.DepartmentID]*model.Department, len(departments))
	listedBy := make(map[model.EmployeeID][]model.DepartmentID)
	for _, d := range departments {
		deptByID[d.ID] = d
		for _, id := range model.UniqueEmployeeIDs(d.EmployeeIDs) {
			listedBy[id] = append(listedBy[id], d.ID)
		}
	}

	emails := make(map[string]model.EmployeeID, len(employees))
	// employees are newest first; walk them oldest first so the older owner is reported as expected
	for i := len(employees) - 1; i >= 0; i-- {
		e := employees[i]

		if owner, ok := emails[e.Email]; ok {
			result.AddIssue(ValidationIssue{
				Kind:       IssueDuplicateEmail,
				EmployeeID: e.ID,
				Message:    "email is used by more than one employee",
				Expected:   fmt.Sprintf("unique (first used by %s)", owner),
				Actual:     e.Email,
			})
		} else {
			emails[e.Email] = e.ID
		}

		if e.ManagerID != "" {
			if _, ok := empByID[e.ManagerID]; !ok {
				result.AddIssue(ValidationIssue{
					Kind:       IssueDanglingManager,
					EmployeeID: e.ID,
					Message:    "manager does not exist",
					Expected:   "existing employee",
					Actual:     e.ManagerID.String(),
				})
			}
		}

		if e.DepartmentID == "" {
			continue
		}
		d, ok := deptByID[e.DepartmentID]
		if !ok {
			result.AddIssue(ValidationIssue{
				Kind:         IssueDanglingDepartment,
				EmployeeID:   e.ID,
				DepartmentID: e.DepartmentID,
				Message:      "department does not exist",
				Expected:     "existing department",
				Actual:       e.DepartmentID.String(),
			})
			continue
		}
		if !d.HasMember(e.ID) {
			result.AddIssue(ValidationIssue{
				Kind:         IssueMemberNotListed,
				EmployeeID:   e.ID,
				DepartmentID: d.ID,
				Message:      "department does not list the employee",
				Expected:     "listed in employeeIds",
				Actual:       "absent",
			})
		}
	}

	for i := len(departments) - 1; i >= 0; i-- {
		d := departments[i]

		if d.ManagerID != "" {
			if _, ok := empByID[d.ManagerID]; !ok {
				result.AddIssue(ValidationIssue{
					Kind:         IssueDanglingManager,
					DepartmentID: d.ID,
					Message:      "manager does not exist",
					Expected:     "existing employee",
					Actual:       d.ManagerID.String(),
				})
			}
		}

		if d.EmployeesCount != len(d.EmployeeIDs) {
			result.AddIssue(ValidationIssue{
				Kind:         IssueCountMismatch,
				DepartmentID: d.ID,
				Message:      "employeesCount differs from the member list",
				Expected:     fmt.Sprint(len(d.EmployeeIDs)),
				Actual:       fmt.Sprint(d.EmployeesCount),
			})
		}

		for _, id := range model.UniqueEmployeeIDs(d.EmployeeIDs) {
			e, ok := empByID[id]
			if !ok {
				result.AddIssue(ValidationIssue{
					Kind:         IssueUnknownMember,
					EmployeeID:   id,
					DepartmentID: d.ID,
					Message:      "listed employee does not exist",
					Expected:     "existing employee",
					Actual:       "missing",
				})
				continue
			}
			if e.DepartmentID != d.ID {
				result.AddIssue(ValidationIssue{
					Kind:         IssueMemberNotLinked,
					EmployeeID:   id,
					DepartmentID: d.ID,
					Message:      "listed employee points at another department",
					Expected:     d.ID.String(),
					Actual:       e.DepartmentID.String(),
				})
			}
		}
	}

	for i := len(employees) - 1; i >= 0; i-- {
		e := employees[i]
		if by := listedBy[e.ID]; len(by) > 1 {
			result.AddIssue(ValidationIssue{
				Kind:       IssueDuplicateMembership,
				EmployeeID: e.ID,
				Message:    fmt.Sprintf("listed by %d departments", len(by)),
				Expected:   "1",
				Actual:     fmt.Sprint(by),
			})
		}
	}

	return result
}
