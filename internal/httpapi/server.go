package httpapi

import (
	"net/http"

	"todolist/api/internal/auth"
	"todolist/api/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Logger *logrus.Logger
	// Registry receives the server's collectors and backs GET /metrics.
	// A private registry is created when nil.
	Registry *prometheus.Registry
}

type Server struct {
	store     store.Store
	auth      *auth.Authenticator
	passwords *auth.PasswordHasher
	log       *logrus.Logger
	metrics   *metrics
	validate  *validator.Validate
	mux       *http.ServeMux
	bus       *eventBus
}

func NewServer(st store.Store, authn *auth.Authenticator, passwords *auth.PasswordHasher, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		store:     st,
		auth:      authn,
		passwords: passwords,
		log:       logger,
		metrics:   newMetrics(reg),
		validate:  newValidator(),
		mux:       http.NewServeMux(),
		bus:       newEventBus(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.recoverMiddleware(h)
	h = requestIDMiddleware(h)
	h = s.loggingMiddleware(h)
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.handler)

	s.mux.HandleFunc("POST /auth/token", s.handleLogin)
	s.mux.HandleFunc("POST /auth/refresh-token", s.requireUser(s.handleRefreshToken))

	s.mux.HandleFunc("POST /users", s.handleCreateUser)
	s.mux.HandleFunc("GET /users", s.handleListUsers)
	s.mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	s.mux.HandleFunc("PUT /users/{id}", s.requireUser(s.handleUpdateUser))
	s.mux.HandleFunc("DELETE /users/{id}", s.requireUser(s.handleDeleteUser))

	s.mux.HandleFunc("POST /todos", s.requireUser(s.handleCreateTodo))
	s.mux.HandleFunc("GET /todos", s.requireUser(s.handleListTodos))
	s.mux.HandleFunc("GET /todos/stream", s.requireUser(s.handleTodoStream))
	s.mux.HandleFunc("PATCH /todos/{id}", s.requireUser(s.handlePatchTodo))
	s.mux.HandleFunc("DELETE /todos/{id}", s.requireUser(s.handleDeleteTodo))
}
