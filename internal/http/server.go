// Package http serves the tally JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/services"
)

type ExpenseAPI interface {
	Create(ctx context.Context, in services.NewExpense) (core.Expense, error)
	Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, year, month int) ([]core.Expense, error)
}

type IncomeAPI interface {
	Upsert(ctx context.Context, year, month int, amount core.Money) (core.MonthlyIncome, error)
	Get(ctx context.Context, year, month int) (*core.MonthlyIncome, error)
}

type ReportAPI interface {
	Categories(ctx context.Context, year, month int) ([]core.CategoryStat, error)
	Daily(ctx context.Context, year, month int) ([]core.DayStat, error)
	Monthly(ctx context.Context, year int) ([]core.MonthStat, error)
	Yearly(ctx context.Context) ([]core.YearStat, error)
}

// Authenticator wraps handlers that need a resolved user.
type Authenticator func(http.Handler) http.Handler

type Options struct {
	Expenses ExpenseAPI
	Incomes  IncomeAPI
	Reports  ReportAPI
	Auth     Authenticator
	// Ready reports whether the storage backend answers; nil means always ready.
	Ready              func(ctx context.Context) error
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	expenses ExpenseAPI
	incomes  IncomeAPI
	reports  ReportAPI
	ready    func(ctx context.Context) error
	limiter  *ratelimit.Limiter
	tracer   *trace.Tracer
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	authenticate := opts.Auth
	if authenticate == nil {
		authenticate = func(next http.Handler) http.Handler { return next }
	}

	s := &Server{
		expenses: opts.Expenses,
		incomes:  opts.Incomes,
		reports:  opts.Reports,
		ready:    opts.Ready,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.New(security.ClientIP),
		now:      time.Now,
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/expenses", s.handleListExpenses)
	api.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	api.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	api.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	api.HandleFunc("GET /api/income", s.handleGetIncome)
	api.HandleFunc("POST /api/income", s.handleUpsertIncome)
	api.HandleFunc("GET /api/stats/categories", s.handleCategoryStats)
	api.HandleFunc("GET /api/stats/daily", s.handleDailyStats)
	api.HandleFunc("GET /api/stats/monthly", s.handleMonthlyStats)
	api.HandleFunc("GET /api/stats/yearly", s.handleYearlyStats)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/categories", handleCategories)
	mux.Handle("/api/", authenticate(api))

	var h http.Handler = mux
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.limiter.Middleware(security.ClientIP)(h)
	h = log.Middleware(logger.WithComponent(log.ComponentHTTP), trace.RequestIDFromRequest)(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	})
	return err
}

// RequestStats exposes the tracer counters.
func (s *Server) RequestStats() trace.Stats {
	return s.tracer.Stats()
}
