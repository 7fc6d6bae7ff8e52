package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type employeeRepository struct {
	client     *firestore.Client
	collection string
}

func (r *employeeRepository) Get(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "employee not found", goerr.V("id", id))
	}

	doc, err := r.client.Collection(r.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "employee not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get employee", goerr.V("id", id))
	}

	return decodeEmployee(doc)
}

func (r *employeeRepository) List(ctx context.Context) ([]*model.Employee, error) {
	q := r.client.Collection(r.collection).OrderBy("createdAt", firestore.Desc)
	return collectEmployees(q.Documents(ctx))
}

func (r *employeeRepository) ListByDepartment(ctx context.Context, departmentID model.DepartmentID) ([]*model.Employee, error) {
	q := r.client.Collection(r.collection).
		Where("departmentId", "==", departmentID.String()).
		OrderBy("createdAt", firestore.Desc)
	employees, err := collectEmployees(q.Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees by department", goerr.V("departmentID", departmentID))
	}
	return employees, nil
}

func (r *employeeRepository) ListByLevel(ctx context.Context, level types.HierarchyLevel) ([]*model.Employee, error) {
	q := r.client.Collection(r.collection).
		Where("level", "==", level.String()).
		OrderBy("createdAt", firestore.Desc)
	employees, err := collectEmployees(q.Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees by level", goerr.V("level", level))
	}
	return employees, nil
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	q := r.client.Collection(r.collection).Where("email", "==", email).Limit(1)
	employees, err := collectEmployees(q.Documents(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find employee by email", goerr.V("email", email))
	}
	if len(employees) == 0 {
		return nil, nil
	}
	return employees[0], nil
}

func decodeEmployee(doc *firestore.DocumentSnapshot) (*model.Employee, error) {
	var d employeeDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal employee", goerr.V("id", doc.Ref.ID))
	}
	return d.toModel(doc.Ref.ID), nil
}

func collectEmployees(iter *firestore.DocumentIterator) ([]*model.Employee, error) {
	defer iter.Stop()

	var employees []*model.Employee
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate employees")
		}

		e, err := decodeEmployee(doc)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	return employees, nil
}
