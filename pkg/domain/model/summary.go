package model

// EmployeeSummary is an employee row of the console list with its resolved references
type EmployeeSummary struct {
	Employee       *Employee
	DepartmentName string
	ManagerName    string
}

// DepartmentSummary is a department row of the console list. MemberCount is derived from the
// employees whose departmentId points at the department, not from EmployeeIDs.
type DepartmentSummary struct {
	Department  *Department
	MemberCount int
	ManagerName string
}
