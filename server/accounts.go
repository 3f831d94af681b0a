package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"todo-auth-api/api"
	"todo-auth-api/auth"
	"todo-auth-api/store"
)

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{"Users": accounts})
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	account, err := s.store.GetAccountByPublicID(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			accountNotFound(w)
			return
		}
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{"message": []api.Account{account}})
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAccountRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "Values are not following rules")
		return
	}
	if req.Name == "" || req.Password == "" {
		badRequest(w, "The 'name' and 'password' fields are required")
		return
	}
	if tooLong(req.Name, api.MaxNameLength) {
		badRequest(w, fmt.Sprintf("The 'name' field must be at most %d characters", api.MaxNameLength))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		passwordError(w, r, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	account, err := s.store.CreateAccount(ctx, api.Account{
		PublicID:     uuid.NewString(),
		Name:         req.Name,
		PasswordHash: hashed,
		Admin:        false,
	})
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, message{
		"message":   "The user has been created!",
		"public_id": account.PublicID,
	})
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("id")

	var req api.UpdateAccountRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "Values are not following rules")
		return
	}

	var update api.AccountUpdate
	if req.Name != nil && *req.Name != "" {
		if tooLong(*req.Name, api.MaxNameLength) {
			badRequest(w, fmt.Sprintf("The 'name' field must be at most %d characters", api.MaxNameLength))
			return
		}
		update.Name = req.Name
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			passwordError(w, r, err)
			return
		}
		update.PasswordHash = &hashed
	}
	update.Admin = req.Admin

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.store.UpdateAccount(ctx, publicID, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			accountNotFound(w)
			return
		}
		serverError(w, r, err)
		return
	}
	s.accounts.Invalidate(ctx, publicID)

	writeJSON(w, http.StatusCreated, message{
		"message": fmt.Sprintf("User: %s was successfully updated!", publicID),
	})
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("id")

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.store.DeleteAccount(ctx, publicID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			accountNotFound(w)
			return
		}
		serverError(w, r, err)
		return
	}
	s.accounts.Invalidate(ctx, publicID)

	writeJSON(w, http.StatusAccepted, message{
		"message": fmt.Sprintf("User: %s has been deleted!", publicID),
	})
}

// passwordError answers 400 for passwords bcrypt cannot take.
func passwordError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrPasswordTooLong) || errors.Is(err, auth.ErrEmptyPassword) {
		badRequest(w, fmt.Sprintf("The 'password' field must be 1 to %d bytes", auth.MaxPasswordBytes))
		return
	}
	serverError(w, r, err)
}

func accountNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, message{"error": "User not found!"})
}
