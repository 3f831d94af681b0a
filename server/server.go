package server

import (
	"context"
	"net/http"
	"time"

	"todo-auth-api/api"
	"todo-auth-api/cache"
)

// Store is the persistence the handlers need. *store.Store implements it.
type Store interface {
	CreateAccount(ctx context.Context, a api.Account) (api.Account, error)
	ListAccounts(ctx context.Context) ([]api.Account, error)
	GetAccountByPublicID(ctx context.Context, publicID string) (api.Account, error)
	GetAccountByName(ctx context.Context, name string) (api.Account, error)
	UpdateAccount(ctx context.Context, publicID string, u api.AccountUpdate) error
	DeleteAccount(ctx context.Context, publicID string) error

	CreateTask(ctx context.Context, t api.Task) (api.Task, error)
	ListTasks(ctx context.Context) ([]api.Task, error)
	ListTasksByOwner(ctx context.Context, userID int64) ([]api.Task, error)
	GetTask(ctx context.Context, userID, id int64) (api.Task, error)
	UpdateTask(ctx context.Context, userID, id int64, u api.TaskUpdate) error
	DeleteTask(ctx context.Context, userID, id int64) error
}

// TokenService is implemented by *auth.Tokens.
type TokenService interface {
	Issue(publicID string) (string, error)
	Verify(token string) (string, error)
}

const DefaultRequestTimeout = 3 * time.Second

type Server struct {
	store    Store
	tokens   TokenService
	accounts *cache.Accounts
	timeout  time.Duration
}

// NewServer wires the handlers to their collaborators. accounts may be nil.
func NewServer(store Store, tokens TokenService, accounts *cache.Accounts, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Server{store: store, tokens: tokens, accounts: accounts, timeout: timeout}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", s.login)

	mux.Handle("GET /users", s.requireToken(s.listAccounts))
	mux.Handle("POST /users", s.requireToken(s.createAccount))
	mux.Handle("GET /users/{id}", s.requireToken(s.getAccount))
	mux.Handle("PUT /users/{id}", s.requireToken(s.updateAccount))
	mux.Handle("DELETE /users/{id}", s.requireToken(s.deleteAccount))

	mux.Handle("GET /todo", s.requireToken(s.listTasks))
	mux.Handle("POST /todo", s.requireToken(s.createTask))
	mux.Handle("GET /todo/{id}", s.requireToken(s.getTask))
	mux.Handle("PUT /todo/{id}", s.requireToken(s.updateTask))
	mux.Handle("DELETE /todo/{id}", s.requireToken(s.deleteTask))

	// Method-less patterns only match what the ones above did not.
	for _, path := range []string{"/login", "/users", "/users/{id}", "/todo", "/todo/{id}"} {
		mux.HandleFunc(path, methodNotAllowed)
	}
	mux.HandleFunc("/", notFound)

	return s.logRequests(s.recoverPanics(mux))
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}
