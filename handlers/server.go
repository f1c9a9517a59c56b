// Package handlers provides the HTTP request handlers of the reference task backend.
//
// The backend speaks exactly the protocol the live client adapter expects, so the client can be
// developed and tested end to end without an external deployment. Its wire shape (base path,
// login path, tasks resource, login field names) comes from the same configuration as the client.
//
// The following endpoints are available, relative to the configured base path:
//
//  1. POST {login path} - Log in and receive a token
//  2. GET {resource} - List all tasks
//  3. POST {resource} - Create a task
//  4. PUT {resource}/{id} - Replace a task
//  5. DELETE {resource}/{id} - Delete a task
//  6. GET /metrics - Display Prometheus metrics
//
// Task endpoints require "Authorization: Bearer <token>". Errors are written as plain text so the
// client can show the server's message as is.
package handlers

import (
	"net/http"
	"time"

	"TaskClient/store"
	"TaskClient/wire"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// AdminRole may delete tasks when Config.DeleteRequiresAdmin is set.
const AdminRole = "Admin"

// Account is a credential accepted by the login endpoint.
type Account struct {
	Username string
	Password string
	Role     string
}

// Config describes the backend.
type Config struct {
	Endpoints           wire.Endpoints
	Fields              wire.FieldNames
	SecretKey           []byte
	TokenTTL            time.Duration
	Accounts            []Account
	DeleteRequiresAdmin bool
	RateLimit           rate.Limit
	RateBurst           int
}

// Server serves the task API over a TaskStore.
type Server struct {
	cfg     Config
	store   store.TaskStore
	clock   clockwork.Clock
	limiter *rate.Limiter
	log     *logrus.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the real clock used for token expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithLogger sets the request logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New returns a backend serving tasks from st.
func New(cfg Config, st store.TaskStore, opts ...Option) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}
	s := &Server{
		cfg:   cfg,
		store: st,
		clock: clockwork.NewRealClock(),
		log:   logrus.StandardLogger(),
	}
	s.limiter = rate.NewLimiter(cfg.RateLimit, cfg.RateBurst)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes registers every endpoint on a new mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	login := s.cfg.Endpoints.LoginRoute()
	tasks := s.cfg.Endpoints.TasksRoute()

	mux.HandleFunc("POST "+login, s.MetricsHandler(s.LoginHandler))
	mux.HandleFunc("GET "+tasks, s.MetricsHandler(s.GetTasksHandler))
	mux.HandleFunc("POST "+tasks, s.MetricsHandler(s.CreateTaskHandler))
	mux.HandleFunc("PUT "+tasks+"/{id}", s.MetricsHandler(s.UpdateTaskHandler))
	mux.HandleFunc("DELETE "+tasks+"/{id}", s.MetricsHandler(s.DeleteTaskHandler))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) account(username, password string) (Account, bool) {
	for _, a := range s.cfg.Accounts {
		if a.Username != "" && a.Username == username && a.Password == password {
			return a, true
		}
	}
	return Account{}, false
}
