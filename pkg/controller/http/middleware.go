package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
	"github.com/secmon-lab/orgdesk/pkg/utils/errutil"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"golang.org/x/time/rate"
)

const (
	tokenIDCookieName     = "token_id"
	tokenSecretCookieName = "token_secret"
)

// authMiddleware validates authentication for protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := tokenFromRequest(r, authUC)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			ctx = logging.With(ctx, logging.From(ctx).With("admin", token.Email))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest validates the session cookies. In no-auth mode the configured admin is
// returned without looking at cookies.
func tokenFromRequest(r *http.Request, authUC AuthUseCase) (*auth.Token, error) {
	if authUC.IsNoAuthn() {
		return authUC.ValidateToken(r.Context(), "", "")
	}

	tokenIDCookie, err := r.Cookie(tokenIDCookieName)
	if err != nil {
		return nil, goerr.New("authentication required")
	}
	tokenSecretCookie, err := r.Cookie(tokenSecretCookieName)
	if err != nil {
		return nil, goerr.New("authentication required")
	}

	token, err := authUC.ValidateToken(r.Context(),
		auth.TokenID(tokenIDCookie.Value),
		auth.TokenSecret(tokenSecretCookie.Value))
	if err != nil {
		logging.From(r.Context()).Debug("token rejected", "error", err)
		return nil, goerr.New("invalid authentication token")
	}
	return token, nil
}

// limiterIdleTTL is how long a client address may stay silent before its bucket is dropped.
// It must exceed the time a bucket needs to refill, so a dropped bucket was already full.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client address. Buckets idle for idleTTL are
// swept on access.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	r         rate.Limit
	b         int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newIPRateLimiter(r rate.Limit, b int, idleTTL time.Duration, now func() time.Time) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:  make(map[string]*limiterEntry),
		r:         r,
		b:         b,
		idleTTL:   idleTTL,
		now:       now,
		lastSweep: now(),
	}
}

func (l *ipRateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		for k, entry := range l.limiters {
			if now.Sub(entry.lastSeen) >= l.idleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// rateLimitByIP rejects requests with 429 once the client address exhausts its bucket
func rateLimitByIP(r rate.Limit, b int) func(http.Handler) http.Handler {
	limiter := newIPRateLimiter(r, b, limiterIdleTTL, time.Now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.get(clientIP(req)).Allow() {
				errutil.HandleHTTP(req.Context(), w, goerr.New("too many requests"), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
