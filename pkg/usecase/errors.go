package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrEmployeeNotFound   = goerr.New("employee not found")
	ErrDepartmentNotFound = goerr.New("department not found")

	// Validation errors
	ErrInvalidEmployee   = model.ErrInvalidEmployee
	ErrInvalidDepartment = model.ErrInvalidDepartment
	ErrInvalidManager    = goerr.New("invalid manager")
	ErrInvalidAvatar     = goerr.New("avatar is not in the configured set")

	// Conflict errors
	ErrEmailAlreadyExists     = goerr.New("email already exists")
	ErrDepartmentHasEmployees = goerr.New("department still has employees")

	// Authentication errors
	ErrInvalidCredential = goerr.New("invalid email or password")
	ErrInvalidToken      = goerr.New("invalid token")
)

// Context keys for error values
const (
	EmployeeIDKey   = "employee_id"
	DepartmentIDKey = "department_id"
	ManagerIDKey    = "manager_id"
	EmailKey        = "email"
	MemberCountKey  = "member_count"
)
