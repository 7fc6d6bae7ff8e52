package types

import "fmt"

// EmployeeStatus represents whether an employee is currently active
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "Active"
	EmployeeStatusInactive EmployeeStatus = "Inactive"
)

// AllEmployeeStatuses returns all valid employee statuses
func AllEmployeeStatuses() []EmployeeStatus {
	return []EmployeeStatus{
		EmployeeStatusActive,
		EmployeeStatusInactive,
	}
}

// IsValid checks if the employee status is valid
func (s EmployeeStatus) IsValid() bool {
	switch s {
	case EmployeeStatusActive,
		EmployeeStatusInactive:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as EmployeeStatusActive.
// New employees are active unless the caller says otherwise.
func (s EmployeeStatus) Normalize() EmployeeStatus {
	if s == "" {
		return EmployeeStatusActive
	}
	return s
}

// String returns the string representation of the employee status
func (s EmployeeStatus) String() string {
	return string(s)
}

// ParseEmployeeStatus parses a string into an EmployeeStatus
func ParseEmployeeStatus(s string) (EmployeeStatus, error) {
	status := EmployeeStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid employee status: %s", s)
	}
	return status, nil
}
