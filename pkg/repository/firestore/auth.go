package firestore

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type tokenDocument struct {
	Secret    string    `firestore:"secret"`
	Sub       string    `firestore:"sub"`
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	ExpiresAt time.Time `firestore:"expiresAt"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type adminDocument struct {
	Email        string    `firestore:"email"`
	Name         string    `firestore:"name"`
	PasswordHash string    `firestore:"passwordHash"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

func (r *Firestore) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	doc := &tokenDocument{
		Secret:    token.Secret.String(),
		Sub:       token.Sub,
		Email:     token.Email,
		Name:      token.Name,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
	docRef := r.client.Collection(r.collection(tokensCollection)).Doc(token.ID.String())
	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put token to firestore", goerr.V("token_id", token.ID))
	}

	return nil
}

func (r *Firestore) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if tokenID == "" {
		return nil, goerr.Wrap(ErrNotFound, "empty token ID")
	}

	docRef := r.client.Collection(r.collection(tokensCollection)).Doc(tokenID.String())
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "token not found", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(err, "failed to get token from firestore", goerr.V("token_id", tokenID))
	}

	var d tokenDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal token", goerr.V("token_id", tokenID))
	}

	return &auth.Token{
		ID:        tokenID,
		Secret:    auth.TokenSecret(d.Secret),
		Sub:       d.Sub,
		Email:     d.Email,
		Name:      d.Name,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}, nil
}

// DeleteToken removes the token. Deleting a missing token is not an error.
func (r *Firestore) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if tokenID == "" {
		return nil
	}

	docRef := r.client.Collection(r.collection(tokensCollection)).Doc(tokenID.String())
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete token from firestore", goerr.V("token_id", tokenID))
	}

	return nil
}

func (r *Firestore) PutAdmin(ctx context.Context, admin *auth.Admin) error {
	if admin.Email == "" {
		return goerr.New("admin email is empty")
	}

	doc := &adminDocument{
		Email:        admin.Email,
		Name:         admin.Name,
		PasswordHash: admin.PasswordHash,
		CreatedAt:    admin.CreatedAt,
	}
	docRef := r.client.Collection(r.collection(adminsCollection)).Doc(admin.Email)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put admin to firestore", goerr.V("email", admin.Email))
	}

	return nil
}

func (r *Firestore) GetAdmin(ctx context.Context, email string) (*auth.Admin, error) {
	if email == "" {
		return nil, goerr.Wrap(ErrNotFound, "empty admin email")
	}

	doc, err := r.client.Collection(r.collection(adminsCollection)).Doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "admin not found", goerr.V("email", email))
		}
		return nil, goerr.Wrap(err, "failed to get admin from firestore", goerr.V("email", email))
	}

	var d adminDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal admin", goerr.V("email", email))
	}

	return &auth.Admin{
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}, nil
}
