package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budget/internal/auth"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
)

// Ledger is the set of ledger operations the API exposes.
type Ledger interface {
	SetSalary(ctx context.Context, userID string, year, month int, salary string) (core.Period, error)
	AddExpense(ctx context.Context, userID string, in core.ExpenseInput) (core.Expense, error)
	ListExpenses(ctx context.Context, userID string, year, month int) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	Summarize(ctx context.Context, userID string, year, month int) (core.Summary, error)
	ListPeriods(ctx context.Context, userID string) ([]core.Period, error)
}

// Authenticator registers, signs in and verifies users.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Me(ctx context.Context, userID string) (core.User, error)
	Verify(token string) (string, error)
}

type Options struct {
	RateLimitPerMinute int
	Logger             *applog.Logger
	// Ready reports whether dependencies (the database) are reachable.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger  Ledger
	auth    Authenticator
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	ready   func(ctx context.Context) error

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, authn Authenticator, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		ledger:  ledger,
		auth:    authn,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:  trace.NewMiddleware(extractClientIP),
		ready:   opts.Ready,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("POST /api/salary", s.requireAuth(s.handleSetSalary))
	mux.HandleFunc("POST /api/expenses", s.requireAuth(s.handleAddExpense))
	mux.HandleFunc("GET /api/expenses", s.requireAuth(s.handleListExpenses))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.requireAuth(s.handleDeleteExpense))
	mux.HandleFunc("GET /api/months", s.requireAuth(s.handleListPeriods))
	mux.HandleFunc("GET /api/summary", s.requireAuth(s.handleSummary))
	mux.HandleFunc("GET /api/export", s.requireAuth(s.handleExport))

	headers := security.NewHeadersMiddleware(security.APIHeadersConfig())
	limit := s.limiter.Middleware(extractClientIP, isMutating, nil)

	var h http.Handler = mux
	h = limit(h)
	h = headers.Middleware(h)
	h = applog.Middleware(logger, func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s
}

func isMutating(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Shutdown stops the rate limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
