package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
	"github.com/secmon-lab/orgdesk/pkg/repository/memory"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/async"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []auth.SessionEvent
}

func (r *eventRecorder) handle(ctx context.Context, event auth.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) snapshot() []auth.SessionEvent {
	async.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]auth.SessionEvent(nil), r.events...)
}

func setupAuth(t *testing.T, opts ...usecase.AuthOption) (*usecase.AuthUseCase, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	uc := usecase.NewAuthUseCase(repo, opts...)

	_, err := uc.CreateAdmin(context.Background(), " Admin@Example.com ", "Admin", "correct horse")
	gt.NoError(t, err).Required()
	return uc, repo
}

func TestAuthUseCase_CreateAdmin(t *testing.T) {
	ctx := context.Background()
	uc, repo := setupAuth(t)

	admin, err := repo.GetAdmin(ctx, "admin@example.com")
	gt.NoError(t, err).Required()
	gt.Value(t, admin.Name).Equal("Admin")
	gt.Value(t, admin.PasswordHash).NotEqual("correct horse")

	_, err = uc.CreateAdmin(ctx, "short@example.com", "", "short")
	gt.Error(t, err).Is(auth.ErrPasswordTooShort)

	_, err = uc.CreateAdmin(ctx, "  ", "", "long enough")
	gt.Value(t, err).NotNil()
}

func TestAuthUseCase_SignIn(t *testing.T) {
	ctx := context.Background()
	uc, repo := setupAuth(t)

	t.Run("issues a stored token", func(t *testing.T) {
		token, err := uc.SignIn(ctx, "ADMIN@example.com ", "correct horse")
		gt.NoError(t, err).Required()
		gt.Value(t, token.Email).Equal("admin@example.com")
		gt.Value(t, token.Name).Equal("Admin")
		gt.NoError(t, token.Validate())

		stored, err := repo.GetToken(ctx, token.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Secret).Equal(token.Secret)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.SignIn(ctx, "admin@example.com", "wrong password")
		gt.Error(t, err).Is(usecase.ErrInvalidCredential)
	})

	t.Run("unknown admin", func(t *testing.T) {
		_, err := uc.SignIn(ctx, "nobody@example.com", "correct horse")
		gt.Error(t, err).Is(usecase.ErrInvalidCredential)
	})

	t.Run("empty credential", func(t *testing.T) {
		_, err := uc.SignIn(ctx, "", "")
		gt.Error(t, err).Is(usecase.ErrInvalidCredential)
	})
}

func TestAuthUseCase_ValidateToken(t *testing.T) {
	ctx := context.Background()
	uc, repo := setupAuth(t)

	token, err := uc.SignIn(ctx, "admin@example.com", "correct horse")
	gt.NoError(t, err).Required()

	t.Run("valid token", func(t *testing.T) {
		got, err := uc.ValidateToken(ctx, token.ID, token.Secret)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Email).Equal("admin@example.com")
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := uc.ValidateToken(ctx, token.ID, auth.NewTokenSecret())
		gt.Error(t, err).Is(usecase.ErrInvalidToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := uc.ValidateToken(ctx, auth.NewTokenID(), auth.NewTokenSecret())
		gt.Error(t, err).Is(usecase.ErrInvalidToken)
	})

	t.Run("concurrent cache misses", func(t *testing.T) {
		other := auth.NewToken("admin@example.com", "admin@example.com", "Admin")
		gt.NoError(t, repo.PutToken(ctx, other)).Required()

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := uc.ValidateToken(ctx, other.ID, other.Secret)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if got.ID != other.ID {
					t.Errorf("got token %s, want %s", got.ID, other.ID)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("expired token is deleted", func(t *testing.T) {
		expired := auth.NewTokenWithTTL("admin@example.com", "admin@example.com", "Admin", -time.Minute)
		gt.NoError(t, repo.PutToken(ctx, expired)).Required()

		_, err := uc.ValidateToken(ctx, expired.ID, expired.Secret)
		gt.Error(t, err).Is(usecase.ErrInvalidToken)

		_, err = repo.GetToken(ctx, expired.ID)
		gt.Error(t, err).Is(memory.ErrNotFound)
	})
}

// gatedTokenRepo holds GetToken until release is closed and then fails if its ctx is done
type gatedTokenRepo struct {
	interfaces.Repository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedTokenRepo) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	r.once.Do(func() { close(r.entered) })
	<-r.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Repository.GetToken(ctx, tokenID)
}

func TestAuthUseCase_ValidateToken_SharedReadOutlivesCaller(t *testing.T) {
	base := memory.New()
	token := auth.NewToken("admin@example.com", "admin@example.com", "Admin")
	gt.NoError(t, base.PutToken(context.Background(), token)).Required()

	repo := &gatedTokenRepo{
		Repository: base,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	uc := usecase.NewAuthUseCase(repo)

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		token *auth.Token
		err   error
	}
	done := make(chan result, 1)
	go func() {
		got, err := uc.ValidateToken(ctx, token.ID, token.Secret)
		done <- result{got, err}
	}()

	<-repo.entered
	cancel()
	close(repo.release)

	res := <-done
	gt.NoError(t, res.err).Required()
	gt.Value(t, res.token.ID).Equal(token.ID)

	// the token is cached now, so a later request does not touch the store
	got, err := uc.ValidateToken(context.Background(), token.ID, token.Secret)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Email).Equal("admin@example.com")
}

func TestAuthUseCase_Logout(t *testing.T) {
	ctx := context.Background()
	uc, repo := setupAuth(t)

	token, err := uc.SignIn(ctx, "admin@example.com", "correct horse")
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Logout(ctx, token.ID)).Required()

	_, err = uc.ValidateToken(ctx, token.ID, token.Secret)
	gt.Error(t, err).Is(usecase.ErrInvalidToken)
	_, err = repo.GetToken(ctx, token.ID)
	gt.Error(t, err).Is(memory.ErrNotFound)

	t.Run("unknown token", func(t *testing.T) {
		gt.NoError(t, uc.Logout(ctx, auth.NewTokenID()))
	})
}

func TestAuthUseCase_Subscribe(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupAuth(t, usecase.WithTokenTTL(time.Hour))

	var recorder eventRecorder
	unsubscribe := uc.Subscribe(recorder.handle)

	token, err := uc.SignIn(ctx, "admin@example.com", "correct horse")
	gt.NoError(t, err).Required()
	gt.Bool(t, time.Until(token.ExpiresAt) <= time.Hour).True()
	gt.NoError(t, uc.Logout(ctx, token.ID)).Required()

	events := recorder.snapshot()
	gt.Array(t, events).Length(2).Required()
	byType := map[auth.SessionEventType]auth.TokenID{}
	for _, ev := range events {
		byType[ev.Type] = ev.Token.ID
	}
	gt.Value(t, byType[auth.SessionSignedIn]).Equal(token.ID)
	gt.Value(t, byType[auth.SessionSignedOut]).Equal(token.ID)

	t.Run("unsubscribed handler receives nothing", func(t *testing.T) {
		unsubscribe()
		unsubscribe()

		_, err := uc.SignIn(ctx, "admin@example.com", "correct horse")
		gt.NoError(t, err).Required()
		gt.Array(t, recorder.snapshot()).Length(2)
	})
}
