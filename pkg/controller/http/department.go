package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
)

type departmentRequest struct {
	Name        string   `json:"name"`
	ManagerID   string   `json:"managerId"`
	EmployeeIDs []string `json:"employeeIds"`
}

func (x *departmentRequest) toModel() *model.Department {
	return &model.Department{
		Name:        x.Name,
		ManagerID:   model.EmployeeID(x.ManagerID),
		EmployeeIDs: toEmployeeIDs(x.EmployeeIDs),
	}
}

type departmentPatchRequest struct {
	Name        *string   `json:"name"`
	ManagerID   *string   `json:"managerId"`
	EmployeeIDs *[]string `json:"employeeIds"`
}

func (x *departmentPatchRequest) toModel() *model.DepartmentPatch {
	patch := &model.DepartmentPatch{Name: x.Name}
	if x.ManagerID != nil {
		v := model.EmployeeID(*x.ManagerID)
		patch.ManagerID = &v
	}
	if x.EmployeeIDs != nil {
		v := toEmployeeIDs(*x.EmployeeIDs)
		patch.EmployeeIDs = &v
	}
	return patch
}

func toEmployeeIDs(ids []string) []model.EmployeeID {
	out := make([]model.EmployeeID, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.EmployeeID(id))
	}
	return out
}

type departmentResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ManagerID      string    `json:"managerId"`
	ManagerName    string    `json:"managerName,omitempty"`
	EmployeeIDs    []string  `json:"employeeIds"`
	EmployeesCount int       `json:"employeesCount"`
	MemberCount    *int      `json:"memberCount,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newDepartmentResponse(d *model.Department) departmentResponse {
	ids := make([]string, 0, len(d.EmployeeIDs))
	for _, id := range d.EmployeeIDs {
		ids = append(ids, id.String())
	}
	return departmentResponse{
		ID:             d.ID.String(),
		Name:           d.Name,
		ManagerID:      d.ManagerID.String(),
		EmployeeIDs:    ids,
		EmployeesCount: d.EmployeesCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func newDepartmentSummaryResponse(s *model.DepartmentSummary) departmentResponse {
	resp := newDepartmentResponse(s.Department)
	resp.ManagerName = s.ManagerName
	count := s.MemberCount
	resp.MemberCount = &count
	return resp
}

func listDepartmentsHandler(uc *usecase.DepartmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := uc.ListDepartmentSummaries(r.Context(), listQueryFromRequest(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newPageResponse(page, newDepartmentSummaryResponse))
	}
}

func getDepartmentHandler(uc *usecase.DepartmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.DepartmentID(chi.URLParam(r, "id"))
		d, err := uc.GetDepartment(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if d == nil {
			handleError(w, r, usecase.ErrDepartmentNotFound)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newDepartmentResponse(d))
	}
}

// saveDepartmentHandler serves both POST /departments (create) and PUT /departments/{id}
func saveDepartmentHandler(uc *usecase.DepartmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req departmentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		id := model.DepartmentID(chi.URLParam(r, "id"))
		saved, err := uc.SaveDepartmentAndSyncEmployees(r.Context(), id, req.toModel())
		if err != nil {
			handleError(w, r, err)
			return
		}

		status := http.StatusOK
		if id == "" {
			status = http.StatusCreated
		}
		writeJSON(r.Context(), w, status, idResponse{ID: saved.String()})
	}
}

func patchDepartmentHandler(uc *usecase.DepartmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req departmentPatchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		id := model.DepartmentID(chi.URLParam(r, "id"))
		updated, err := uc.UpdateDepartment(r.Context(), id, req.toModel())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newDepartmentResponse(updated))
	}
}

// deleteDepartmentHandler refuses to delete a department that still has employees
func deleteDepartmentHandler(uc *usecase.DepartmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.DepartmentID(chi.URLParam(r, "id"))
		if err := uc.DeleteDepartment(r.Context(), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func bulkDeleteDepartmentsHandler(uc *usecase.DepartmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkDeleteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		ids := make([]model.DepartmentID, 0, len(req.IDs))
		for _, id := range req.IDs {
			ids = append(ids, model.DepartmentID(id))
		}
		if err := uc.DeleteDepartments(r.Context(), ids); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
