package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type departmentRepository struct {
	client     *firestore.Client
	collection string
}

func (r *departmentRepository) Get(ctx context.Context, id model.DepartmentID) (*model.Department, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "department not found", goerr.V("id", id))
	}

	doc, err := r.client.Collection(r.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "department not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get department", goerr.V("id", id))
	}

	return decodeDepartment(doc)
}

func (r *departmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	q := r.client.Collection(r.collection).OrderBy("createdAt", firestore.Desc)
	return collectDepartments(q.Documents(ctx))
}

func decodeDepartment(doc *firestore.DocumentSnapshot) (*model.Department, error) {
	var d departmentDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal department", goerr.V("id", doc.Ref.ID))
	}
	return d.toModel(doc.Ref.ID), nil
}

func collectDepartments(iter *firestore.DocumentIterator) ([]*model.Department, error) {
	defer iter.Stop()

	var departments []*model.Department
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate departments")
		}

		d, err := decodeDepartment(doc)
		if err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}

	return departments, nil
}
