package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/orgdesk/pkg/controller/http"
	"github.com/secmon-lab/orgdesk/pkg/repository/memory"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"golang.org/x/time/rate"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(c.t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v)).Required()
	return v
}

type idBody struct {
	ID string `json:"id"`
}

type employeeBody struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	DepartmentID   string `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	Role           string `json:"role"`
	BaseSalary     string `json:"baseSalary"`
}

type departmentBody struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	EmployeeIDs    []string `json:"employeeIds"`
	EmployeesCount int      `json:"employeesCount"`
	MemberCount    *int     `json:"memberCount"`
}

type pageBody[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func employeePayload(name, email, departmentID string) map[string]any {
	return map[string]any{
		"name":          name,
		"email":         email,
		"departmentId":  departmentID,
		"status":        "Active",
		"avatar":        "avatar4",
		"role":          "Analyst",
		"admissionDate": "2021-09-13",
		"level":         "Junior",
		"baseSalary":    3100.5,
	}
}

func newNoAuthClient(t *testing.T) *testClient {
	uc := usecase.New(memory.New(), usecase.WithAuth(usecase.NewNoAuthnUseCase("dev@example.com", "Dev")))
	return &testClient{t: t, handler: server.New(uc)}
}

func TestHealth(t *testing.T) {
	c := newNoAuthClient(t)
	rec := c.do(http.MethodGet, "/health", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
}

func TestEmployeeAndDepartmentEndpoints(t *testing.T) {
	c := newNoAuthClient(t)

	rec := c.do(http.MethodPost, "/api/departments", map[string]any{"name": "Platform"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated).Required()
	platform := decode[idBody](t, rec).ID

	rec = c.do(http.MethodPost, "/api/departments", map[string]any{"name": "Sales"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated).Required()
	sales := decode[idBody](t, rec).ID

	rec = c.do(http.MethodPost, "/api/employees", employeePayload("Ana", "Ana@Example.com", platform))
	gt.Value(t, rec.Code).Equal(http.StatusCreated).Required()
	ana := decode[idBody](t, rec).ID

	t.Run("get employee", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/employees/"+ana, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
		body := decode[employeeBody](t, rec)
		gt.Value(t, body.Email).Equal("ana@example.com")
		gt.Value(t, body.DepartmentID).Equal(platform)
		gt.Value(t, body.BaseSalary).Equal("3100.50")
	})

	t.Run("department lists the employee", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/departments/"+platform, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
		gt.Value(t, decode[departmentBody](t, rec).EmployeeIDs).Equal([]string{ana})
	})

	t.Run("move employee with PUT", func(t *testing.T) {
		rec := c.do(http.MethodPut, "/api/employees/"+ana, employeePayload("Ana", "ana@example.com", sales))
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()

		rec = c.do(http.MethodGet, "/api/departments/"+platform, nil)
		gt.Array(t, decode[departmentBody](t, rec).EmployeeIDs).Length(0)
		rec = c.do(http.MethodGet, "/api/departments/"+sales, nil)
		gt.Value(t, decode[departmentBody](t, rec).EmployeeIDs).Equal([]string{ana})
	})

	t.Run("patch employee", func(t *testing.T) {
		rec := c.do(http.MethodPatch, "/api/employees/"+ana, map[string]any{"role": "Lead Analyst"})
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
		gt.Value(t, decode[employeeBody](t, rec).Role).Equal("Lead Analyst")
	})

	t.Run("search employees", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/employees?q=sal&page=1&per_page=5", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
		page := decode[pageBody[employeeBody]](t, rec)
		gt.Number(t, page.Total).Equal(1)
		gt.Number(t, page.PerPage).Equal(5)
		gt.Array(t, page.Items).Length(1).Required()
		gt.Value(t, page.Items[0].DepartmentName).Equal("Sales")
	})

	t.Run("list departments with derived count", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/departments?q=sales", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
		page := decode[pageBody[departmentBody]](t, rec)
		gt.Array(t, page.Items).Length(1).Required()
		gt.Value(t, page.Items[0].MemberCount).NotNil().Required()
		gt.Number(t, *page.Items[0].MemberCount).Equal(1)
	})

	t.Run("email exists", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/employees/email-exists?email=ANA@example.com", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
		gt.Bool(t, decode[map[string]bool](t, rec)["exists"]).True()

		rec = c.do(http.MethodGet, "/api/employees/email-exists?email=ana@example.com&ignore="+ana, nil)
		gt.Bool(t, decode[map[string]bool](t, rec)["exists"]).False()
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		rec := c.do(http.MethodPost, "/api/employees", employeePayload("Other", " ana@EXAMPLE.com", ""))
		gt.Number(t, rec.Code).Equal(http.StatusConflict)
	})

	t.Run("invalid payload is a bad request", func(t *testing.T) {
		payload := employeePayload("Bad", "not-an-email", "")
		rec := c.do(http.MethodPost, "/api/employees", payload)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)

		rec = c.do(http.MethodPost, "/api/employees", map[string]any{"unknown": true})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing employee is not found", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/employees/does-not-exist", nil)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("manager candidates", func(t *testing.T) {
		payload := employeePayload("Marta", "marta@example.com", "")
		payload["level"] = "Manager"
		rec := c.do(http.MethodPost, "/api/employees", payload)
		gt.Value(t, rec.Code).Equal(http.StatusCreated).Required()

		rec = c.do(http.MethodGet, "/api/employees/managers", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
		managers := decode[[]employeeBody](t, rec)
		gt.Array(t, managers).Length(1).Required()
		gt.Value(t, managers[0].Name).Equal("Marta")
	})

	t.Run("guarded department delete", func(t *testing.T) {
		rec := c.do(http.MethodDelete, "/api/departments/"+sales, nil)
		gt.Number(t, rec.Code).Equal(http.StatusConflict)

		rec = c.do(http.MethodPost, "/api/departments/bulk-delete", map[string]any{"ids": []string{platform, sales}})
		gt.Number(t, rec.Code).Equal(http.StatusConflict)

		rec = c.do(http.MethodDelete, "/api/departments/"+platform, nil)
		gt.Number(t, rec.Code).Equal(http.StatusNoContent)
	})

	t.Run("delete employees", func(t *testing.T) {
		rec := c.do(http.MethodPost, "/api/employees/bulk-delete", map[string]any{"ids": []string{ana}})
		gt.Number(t, rec.Code).Equal(http.StatusNoContent)

		rec = c.do(http.MethodGet, "/api/departments/"+sales, nil)
		gt.Array(t, decode[departmentBody](t, rec).EmployeeIDs).Length(0)

		rec = c.do(http.MethodDelete, "/api/employees/"+ana, nil)
		gt.Number(t, rec.Code).Equal(http.StatusNoContent)
	})
}

func newAuthClient(t *testing.T, opts ...server.Options) *testClient {
	repo := memory.New()
	authUC := usecase.NewAuthUseCase(repo)
	_, err := authUC.CreateAdmin(context.Background(), "admin@example.com", "Admin", "correct horse")
	gt.NoError(t, err).Required()

	uc := usecase.New(repo, usecase.WithAuth(authUC))
	return &testClient{t: t, handler: server.New(uc, opts...)}
}

func TestAuthentication(t *testing.T) {
	c := newAuthClient(t)

	t.Run("protected endpoint requires a session", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/employees", nil)
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)

		rec = c.do(http.MethodGet, "/api/auth/me", nil)
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := c.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "admin@example.com", "password": "nope"})
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.String(t, rec.Body.String()).Contains("invalid email or password")
	})

	rec := c.do(http.MethodPost, "/api/auth/login", map[string]any{"email": " ADMIN@example.com", "password": "correct horse"})
	gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
	c.cookies = rec.Result().Cookies()
	gt.Array(t, c.cookies).Length(2)

	t.Run("session grants access", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/employees", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		rec = c.do(http.MethodGet, "/api/auth/me", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK).Required()
		gt.Value(t, decode[map[string]any](t, rec)["email"]).Equal("admin@example.com")
	})

	t.Run("logout ends the session", func(t *testing.T) {
		rec := c.do(http.MethodPost, "/api/auth/logout", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		rec = c.do(http.MethodGet, "/api/employees", nil)
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}

func TestLoginRateLimit(t *testing.T) {
	c := newAuthClient(t, server.WithLoginRateLimit(rate.Limit(0), 2))

	for range 2 {
		rec := c.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "admin@example.com", "password": "nope"})
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	}

	rec := c.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "admin@example.com", "password": "correct horse"})
	gt.Number(t, rec.Code).Equal(http.StatusTooManyRequests)
}
