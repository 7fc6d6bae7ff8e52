package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"golang.org/x/time/rate"
)

const (
	// DefaultLoginRate allows 5 sign-in attempts per minute and client address
	DefaultLoginRate  = rate.Limit(5.0 / 60.0)
	DefaultLoginBurst = 5
)

type Server struct {
	router     *chi.Mux
	uc         *usecase.UseCases
	authUC     AuthUseCase
	loginRate  rate.Limit
	loginBurst int
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithLoginRateLimit overrides the per-address sign-in limit
func WithLoginRateLimit(r rate.Limit, burst int) Options {
	return func(s *Server) {
		s.loginRate = r
		s.loginBurst = burst
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:     r,
		uc:         uc,
		authUC:     uc.Auth,
		loginRate:  DefaultLoginRate,
		loginBurst: DefaultLoginBurst,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authUC == nil {
		s.authUC = usecase.NewNoAuthnUseCase("", "")
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimitByIP(s.loginRate, s.loginBurst)).Post("/login", authLoginHandler(s.authUC))
			r.Post("/logout", authLogoutHandler(s.authUC))
			r.Get("/me", authMeHandler(s.authUC))
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", listEmployeesHandler(uc.Employee))
				r.Post("/", saveEmployeeHandler(uc.Employee))
				r.Post("/bulk-delete", bulkDeleteEmployeesHandler(uc.Employee))
				r.Get("/email-exists", emailExistsHandler(uc.Employee))
				r.Get("/managers", listManagersHandler(uc.Employee))
				r.Get("/{id}", getEmployeeHandler(uc.Employee))
				r.Put("/{id}", saveEmployeeHandler(uc.Employee))
				r.Patch("/{id}", patchEmployeeHandler(uc.Employee))
				r.Delete("/{id}", deleteEmployeeHandler(uc.Employee))
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", listDepartmentsHandler(uc.Department))
				r.Post("/", saveDepartmentHandler(uc.Department))
				r.Post("/bulk-delete", bulkDeleteDepartmentsHandler(uc.Department))
				r.Get("/{id}", getDepartmentHandler(uc.Department))
				r.Put("/{id}", saveDepartmentHandler(uc.Department))
				r.Patch("/{id}", patchDepartmentHandler(uc.Department))
				r.Delete("/{id}", deleteDepartmentHandler(uc.Department))
			})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger attaches a logger carrying the request ID to the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
