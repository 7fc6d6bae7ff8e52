package firestore

import (
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type transaction struct {
	tx          *firestore.Transaction
	employees   *firestore.CollectionRef
	departments *firestore.CollectionRef
}

var _ interfaces.Transaction = &transaction{}

func (t *transaction) GetEmployee(id model.EmployeeID) (*model.Employee, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "employee not found", goerr.V("id", id))
	}

	doc, err := t.tx.Get(t.employees.Doc(id.String()))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "employee not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get employee in transaction", goerr.V("id", id))
	}

	return decodeEmployee(doc)
}

func (t *transaction) GetEmployees(ids ...model.EmployeeID) (map[model.EmployeeID]*model.Employee, error) {
	result := make(map[model.EmployeeID]*model.Employee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		refs = append(refs, t.employees.Doc(id.String()))
	}

	docs, err := t.tx.GetAll(refs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get employees in transaction", goerr.V("count", len(refs)))
	}

	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		e, err := decodeEmployee(doc)
		if err != nil {
			return nil, err
		}
		result[e.ID] = e
	}

	return result, nil
}

func (t *transaction) FindEmployeeByEmail(email string) (*model.Employee, error) {
	q := t.employees.Where("email", "==", email).Limit(1)
	employees, err := collectEmployees(t.tx.Documents(q))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find employee by email in transaction", goerr.V("email", email))
	}
	if len(employees) == 0 {
		return nil, nil
	}
	return employees[0], nil
}

func (t *transaction) ListEmployees() ([]*model.Employee, error) {
	employees, err := collectEmployees(t.tx.Documents(t.employees))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees in transaction")
	}
	return employees, nil
}

func (t *transaction) ListEmployeesByDepartment(id model.DepartmentID) ([]*model.Employee, error) {
	q := t.employees.Where("departmentId", "==", id.String())
	employees, err := collectEmployees(t.tx.Documents(q))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees by department in transaction", goerr.V("departmentID", id))
	}
	return employees, nil
}

func (t *transaction) GetDepartment(id model.DepartmentID) (*model.Department, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "department not found", goerr.V("id", id))
	}

	doc, err := t.tx.Get(t.departments.Doc(id.String()))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "department not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get department in transaction", goerr.V("id", id))
	}

	return decodeDepartment(doc)
}

func (t *transaction) ListDepartments() ([]*model.Department, error) {
	departments, err := collectDepartments(t.tx.Documents(t.departments))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list departments in transaction")
	}
	return departments, nil
}

func (t *transaction) CreateEmployee(e *model.Employee) (*model.Employee, error) {
	now := time.Now().UTC()
	created := *e
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := t.tx.Create(t.employees.Doc(e.ID.String()), toEmployeeDocument(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create employee", goerr.V("id", e.ID))
	}
	return &created, nil
}

func (t *transaction) UpdateEmployee(e *model.Employee) (*model.Employee, error) {
	updated := *e
	updated.UpdatedAt = time.Now().UTC()
	doc := toEmployeeDocument(&updated)

	err := t.tx.Update(t.employees.Doc(e.ID.String()), []firestore.Update{
		{Path: "name", Value: doc.Name},
		{Path: "email", Value: doc.Email},
		{Path: "departmentId", Value: doc.DepartmentID},
		{Path: "status", Value: doc.Status},
		{Path: "avatar", Value: doc.Avatar},
		{Path: "role", Value: doc.Role},
		{Path: "admissionDate", Value: doc.AdmissionDate},
		{Path: "level", Value: doc.Level},
		{Path: "managerId", Value: doc.ManagerID},
		{Path: "baseSalary", Value: doc.BaseSalary},
		{Path: "updatedAt", Value: doc.UpdatedAt},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update employee", goerr.V("id", e.ID))
	}
	return &updated, nil
}

func (t *transaction) SetEmployeeDepartment(id model.EmployeeID, departmentID model.DepartmentID) error {
	err := t.tx.Update(t.employees.Doc(id.String()), []firestore.Update{
		{Path: "departmentId", Value: departmentID.String()},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to set employee department",
			goerr.V("id", id), goerr.V("departmentID", departmentID))
	}
	return nil
}

func (t *transaction) DeleteEmployee(id model.EmployeeID) error {
	if err := t.tx.Delete(t.employees.Doc(id.String())); err != nil {
		return goerr.Wrap(err, "failed to delete employee", goerr.V("id", id))
	}
	return nil
}

func (t *transaction) CreateDepartment(d *model.Department) (*model.Department, error) {
	now := time.Now().UTC()
	created := d.Copy()
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := t.tx.Create(t.departments.Doc(d.ID.String()), toDepartmentDocument(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create department", goerr.V("id", d.ID))
	}
	return created, nil
}

func (t *transaction) UpdateDepartment(d *model.Department) (*model.Department, error) {
	updated := d.Copy()
	updated.UpdatedAt = time.Now().UTC()
	doc := toDepartmentDocument(updated)

	err := t.tx.Update(t.departments.Doc(d.ID.String()), []firestore.Update{
		{Path: "name", Value: doc.Name},
		{Path: "managerId", Value: doc.ManagerID},
		{Path: "employeeIds", Value: doc.EmployeeIDs},
		{Path: "employeesCount", Value: doc.EmployeesCount},
		{Path: "updatedAt", Value: doc.UpdatedAt},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update department", goerr.V("id", d.ID))
	}
	return updated, nil
}

func (t *transaction) AddDepartmentMembers(id model.DepartmentID, ids ...model.EmployeeID) error {
	if len(ids) == 0 {
		return nil
	}

	err := t.tx.Update(t.departments.Doc(id.String()), []firestore.Update{
		{Path: "employeeIds", Value: firestore.ArrayUnion(toAnySlice(ids)...)},
		{Path: "employeesCount", Value: firestore.Increment(len(ids))},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to add department members", goerr.V("id", id), goerr.V("members", ids))
	}
	return nil
}

func (t *transaction) RemoveDepartmentMembers(id model.DepartmentID, ids ...model.EmployeeID) error {
	if len(ids) == 0 {
		return nil
	}

	err := t.tx.Update(t.departments.Doc(id.String()), []firestore.Update{
		{Path: "employeeIds", Value: firestore.ArrayRemove(toAnySlice(ids)...)},
		{Path: "employeesCount", Value: firestore.Increment(-len(ids))},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to remove department members", goerr.V("id", id), goerr.V("members", ids))
	}
	return nil
}

func (t *transaction) DeleteDepartment(id model.DepartmentID) error {
	if err := t.tx.Delete(t.departments.Doc(id.String())); err != nil {
		return goerr.Wrap(err, "failed to delete department", goerr.V("id", id))
	}
	return nil
}
