package server

import (
	"context"
	"errors"
	"net/http"

	"todo-auth-api/api"
	"todo-auth-api/auth"
	"todo-auth-api/store"
)

const basicChallenge = `Basic realm="Login required!"`

// login exchanges Basic auth credentials for a token.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	name, password, ok := r.BasicAuth()
	if !ok || name == "" || password == "" {
		unauthorized(w)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	account, err := s.authenticate(ctx, name, password)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Unknown names answer 204, not 401. Clients depend on it.
		w.Header().Set("WWW-Authenticate", basicChallenge)
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, auth.ErrUnauthorized):
		unauthorized(w)
		return
	case err != nil:
		serverError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(account.PublicID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{"token": token})
}

// authenticate returns the account called name if password matches its hash.
// It fails with store.ErrNotFound for unknown names and auth.ErrUnauthorized
// for a wrong password.
func (s *Server) authenticate(ctx context.Context, name, password string) (api.Account, error) {
	account, err := s.store.GetAccountByName(ctx, name)
	if err != nil {
		return api.Account{}, err
	}
	if !auth.CheckPassword(password, account.PasswordHash) {
		return api.Account{}, auth.ErrUnauthorized
	}
	return account, nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", basicChallenge)
	http.Error(w, "FAILED: Could not verify", http.StatusUnauthorized)
}
