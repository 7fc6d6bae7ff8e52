package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
)

// ErrNotFound aliases the domain sentinel so callers can match either
var ErrNotFound = interfaces.ErrNotFound

const (
	employeesCollection   = "employees"
	departmentsCollection = "departments"
	adminsCollection      = "admins"
	tokensCollection      = "tokens"
)

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
	employee         *employeeRepository
	department       *departmentRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name with "<prefix>_". Used to isolate test
// runs sharing one database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// New connects to databaseID of projectID. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.employee = &employeeRepository{client: client, collection: f.collection(employeesCollection)}
	f.department = &departmentRepository{client: client, collection: f.collection(departmentsCollection)}

	return f, nil
}

func (f *Firestore) collection(name string) string {
	return CollectionName(f.collectionPrefix, name)
}

// CollectionName returns the collection name used for name under prefix
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// EmployeesCollection returns the employees collection name under prefix
func EmployeesCollection(prefix string) string {
	return CollectionName(prefix, employeesCollection)
}

func (f *Firestore) Employee() interfaces.EmployeeRepository {
	return f.employee
}

func (f *Firestore) Department() interfaces.DepartmentRepository {
	return f.department
}

func (f *Firestore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Transaction) error) error {
	return f.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(ctx, &transaction{
			tx:          t,
			employees:   f.client.Collection(f.employee.collection),
			departments: f.client.Collection(f.department.collection),
		})
	})
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
