package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
)

// checkEmailAvailable fails with ErrEmailAlreadyExists when another employee than self
// already uses email. It runs inside the write transaction so two concurrent saves of the
// same email cannot both commit.
func checkEmailAvailable(tx interfaces.Transaction, email string, self model.EmployeeID) error {
	found, err := tx.FindEmployeeByEmail(email)
	if err != nil {
		return goerr.Wrap(err, "failed to look up email")
	}
	if found != nil && found.ID != self {
		return goerr.Wrap(ErrEmailAlreadyExists, "email is taken",
			goerr.V(EmailKey, email),
			goerr.V(EmployeeIDKey, found.ID))
	}
	return nil
}

// checkManager requires managerID, when set, to be an existing employee of level Manager
// other than self.
func checkManager(tx interfaces.Transaction, managerID, self model.EmployeeID) error {
	if managerID == "" {
		return nil
	}
	if managerID == self {
		return goerr.Wrap(ErrInvalidManager, "employee cannot manage itself", goerr.V(ManagerIDKey, managerID))
	}

	manager, err := tx.GetEmployee(managerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrInvalidManager, "manager does not exist", goerr.V(ManagerIDKey, managerID))
		}
		return goerr.Wrap(err, "failed to get manager", goerr.V(ManagerIDKey, managerID))
	}
	if manager.Level != types.HierarchyLevelManager {
		return goerr.Wrap(ErrInvalidManager, "manager must have level Manager",
			goerr.V(ManagerIDKey, managerID),
			goerr.V("level", manager.Level))
	}
	return nil
}

// getDepartmentIfExists returns nil, nil when the department does not exist
func getDepartmentIfExists(tx interfaces.Transaction, id model.DepartmentID) (*model.Department, error) {
	d, err := tx.GetDepartment(id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get department", goerr.V(DepartmentIDKey, id))
	}
	return d, nil
}
