package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedToken struct {
	token     *auth.Token
	expiresAt time.Time
}

type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func (c *authCache) get(tokenID auth.TokenID) (*auth.Token, bool) {
	val, ok := c.cache.Load(tokenID)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedToken)
	if time.Now().After(cached.expiresAt) {
		c.cache.Delete(tokenID)
		return nil, false
	}

	return cached.token, true
}

func (c *authCache) set(token *auth.Token) {
	cached := &cachedToken{
		token:     token,
		expiresAt: time.Now().Add(authCacheTTL),
	}
	c.cache.Store(token.ID, cached)
}

func (c *authCache) remove(tokenID auth.TokenID) {
	c.cache.Delete(tokenID)
}

// validateTokenWithCache validates token with cache. Concurrent misses for the same token ID
// share one repository read.
func (uc *AuthUseCase) validateTokenWithCache(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	if tokenID == "" || tokenSecret == "" {
		return nil, goerr.Wrap(ErrInvalidToken, "token is empty")
	}

	if token, ok := uc.cache.get(tokenID); ok {
		if token.Secret != tokenSecret {
			return nil, goerr.Wrap(ErrInvalidToken, "invalid token secret", goerr.V("token_id", tokenID))
		}
		if token.IsExpired() {
			uc.cache.remove(tokenID)
			return nil, goerr.Wrap(ErrInvalidToken, "token expired", goerr.V("token_id", tokenID))
		}
		return token, nil
	}

	// shared by every waiter, detached from the first caller's cancellation
	sharedCtx := context.WithoutCancel(ctx)
	v, err, _ := uc.flight.Do(tokenID.String(), func() (any, error) {
		return uc.repo.GetToken(sharedCtx, tokenID)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrInvalidToken, "unknown token", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(err, "failed to get token from repository")
	}
	token := v.(*auth.Token)

	if token.Secret != tokenSecret {
		return nil, goerr.Wrap(ErrInvalidToken, "invalid token secret", goerr.V("token_id", tokenID))
	}

	if token.IsExpired() {
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete expired token", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(ErrInvalidToken, "token expired", goerr.V("token_id", tokenID))
	}

	uc.cache.set(token)

	return token, nil
}
