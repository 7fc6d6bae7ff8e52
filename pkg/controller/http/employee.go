package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/shopspring/decimal"
)

type employeeRequest struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	DepartmentID  string          `json:"departmentId"`
	Status        string          `json:"status"`
	Avatar        string          `json:"avatar"`
	Role          string          `json:"role"`
	AdmissionDate string          `json:"admissionDate"`
	Level         string          `json:"level"`
	ManagerID     string          `json:"managerId"`
	BaseSalary    decimal.Decimal `json:"baseSalary"`
}

func (x *employeeRequest) toModel() *model.Employee {
	return &model.Employee{
		Name:          x.Name,
		Email:         x.Email,
		DepartmentID:  model.DepartmentID(x.DepartmentID),
		Status:        types.EmployeeStatus(x.Status),
		Avatar:        types.AvatarID(x.Avatar),
		Role:          x.Role,
		AdmissionDate: x.AdmissionDate,
		Level:         types.HierarchyLevel(x.Level),
		ManagerID:     model.EmployeeID(x.ManagerID),
		BaseSalary:    x.BaseSalary,
	}
}

type employeePatchRequest struct {
	Name          *string          `json:"name"`
	Email         *string          `json:"email"`
	DepartmentID  *string          `json:"departmentId"`
	Status        *string          `json:"status"`
	Avatar        *string          `json:"avatar"`
	Role          *string          `json:"role"`
	AdmissionDate *string          `json:"admissionDate"`
	Level         *string          `json:"level"`
	ManagerID     *string          `json:"managerId"`
	BaseSalary    *decimal.Decimal `json:"baseSalary"`
}

func (x *employeePatchRequest) toModel() *model.EmployeePatch {
	patch := &model.EmployeePatch{
		Name:          x.Name,
		Email:         x.Email,
		Role:          x.Role,
		AdmissionDate: x.AdmissionDate,
		BaseSalary:    x.BaseSalary,
	}
	if x.DepartmentID != nil {
		v := model.DepartmentID(*x.DepartmentID)
		patch.DepartmentID = &v
	}
	if x.Status != nil {
		v := types.EmployeeStatus(*x.Status)
		patch.Status = &v
	}
	if x.Avatar != nil {
		v := types.AvatarID(*x.Avatar)
		patch.Avatar = &v
	}
	if x.Level != nil {
		v := types.HierarchyLevel(*x.Level)
		patch.Level = &v
	}
	if x.ManagerID != nil {
		v := model.EmployeeID(*x.ManagerID)
		patch.ManagerID = &v
	}
	return patch
}

type employeeResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	DepartmentID   string    `json:"departmentId"`
	DepartmentName string    `json:"departmentName,omitempty"`
	Status         string    `json:"status"`
	Avatar         string    `json:"avatar"`
	Role           string    `json:"role"`
	AdmissionDate  string    `json:"admissionDate"`
	Level          string    `json:"level"`
	ManagerID      string    `json:"managerId"`
	ManagerName    string    `json:"managerName,omitempty"`
	BaseSalary     string    `json:"baseSalary"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newEmployeeResponse(e *model.Employee) employeeResponse {
	return employeeResponse{
		ID:            e.ID.String(),
		Name:          e.Name,
		Email:         e.Email,
		DepartmentID:  e.DepartmentID.String(),
		Status:        e.Status.String(),
		Avatar:        e.Avatar.String(),
		Role:          e.Role,
		AdmissionDate: e.AdmissionDate,
		Level:         e.Level.String(),
		ManagerID:     e.ManagerID.String(),
		BaseSalary:    e.BaseSalary.StringFixed(2),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func newEmployeeSummaryResponse(s *model.EmployeeSummary) employeeResponse {
	resp := newEmployeeResponse(s.Employee)
	resp.DepartmentName = s.DepartmentName
	resp.ManagerName = s.ManagerName
	return resp
}

func listEmployeesHandler(uc *usecase.EmployeeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := uc.SearchEmployees(r.Context(), listQueryFromRequest(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newPageResponse(page, newEmployeeSummaryResponse))
	}
}

func getEmployeeHandler(uc *usecase.EmployeeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.EmployeeID(chi.URLParam(r, "id"))
		e, err := uc.GetEmployee(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if e == nil {
			handleError(w, r, usecase.ErrEmployeeNotFound)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newEmployeeResponse(e))
	}
}

// saveEmployeeHandler serves both POST /employees (create) and PUT /employees/{id}
func saveEmployeeHandler(uc *usecase.EmployeeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req employeeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		id := model.EmployeeID(chi.URLParam(r, "id"))
		saved, err := uc.SaveEmployeeAndSyncDepartments(r.Context(), id, req.toModel())
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

func patchEmployeeHandler(uc *usecase.EmployeeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req employeePatchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		id := model.EmployeeID(chi.URLParam(r, "id"))
		updated, err := uc.UpdateEmployee(r.Context(), id, req.toModel())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newEmployeeResponse(updated))
	}
}

func deleteEmployeeHandler(uc *usecase.EmployeeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.EmployeeID(chi.URLParam(r, "id"))
		if err := uc.DeleteEmployee(r.Context(), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func bulkDeleteEmployeesHandler(uc *usecase.EmployeeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkDeleteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		ids := make([]model.EmployeeID, 0, len(req.IDs))
		for _, id := range req.IDs {
			ids = append(ids, model.EmployeeID(id))
		}
		if err := uc.DeleteEmployees(r.Context(), ids); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func emailExistsHandler(uc *usecase.EmployeeUseCase) http.HandlerFunc {
	type response struct {
		Exists bool `json:"exists"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		exists, err := uc.EmailExists(r.Context(), query.Get("email"), model.EmployeeID(query.Get("ignore")))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, response{Exists: exists})
	}
}

func listManagersHandler(uc *usecase.EmployeeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		managers, err := uc.ListManagerCandidates(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := make([]employeeResponse, 0, len(managers))
		for _, m := range managers {
			resp = append(resp, newEmployeeResponse(m))
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}
