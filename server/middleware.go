package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"todo-auth-api/api"
	"todo-auth-api/auth"
	"todo-auth-api/store"
)

// TokenHeader carries the bearer token on protected routes.
const TokenHeader = "X-Access-Token"

type contextKey string

const accountKey contextKey = "account"

// AccountFromContext returns the account resolved by the token middleware.
func AccountFromContext(ctx context.Context) (api.Account, bool) {
	a, ok := ctx.Value(accountKey).(api.Account)
	return a, ok
}

// WithAccount returns a copy of ctx carrying a as the current account.
func WithAccount(ctx context.Context, a api.Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

// requireToken rejects requests without a valid token before next runs and
// hands next the account the token belongs to.
func (s *Server) requireToken(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		publicID, err := s.tokens.Verify(r.Header.Get(TokenHeader))
		if errors.Is(err, auth.ErrMissingToken) {
			writeJSON(w, http.StatusUnauthorized, message{"message": "Token is missing!"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, message{"message": "Token is invalid!"})
			return
		}

		account, err := s.currentAccount(r, publicID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Valid signature, but the account is gone.
				writeJSON(w, http.StatusUnauthorized, message{"message": "Token is invalid!"})
				return
			}
			serverError(w, r, err)
			return
		}

		next(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}

func (s *Server) currentAccount(r *http.Request, publicID string) (api.Account, error) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	if a, ok := s.accounts.Get(ctx, publicID); ok {
		return a, nil
	}

	a, err := s.store.GetAccountByPublicID(ctx, publicID)
	if err != nil {
		return api.Account{}, err
	}
	s.accounts.Set(ctx, a)
	return a, nil
}

// caller is only used behind requireToken, where the account is always set.
func caller(r *http.Request) api.Account {
	a, _ := AccountFromContext(r.Context())
	return a
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				log.Printf("ERROR: panic serving %s %s: %v", r.Method, r.URL.Path, rv)
				internalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
