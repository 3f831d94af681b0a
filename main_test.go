package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todo-auth-api/api"
	"todo-auth-api/config"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.SecretKey = "test-secret"
	cfg.DBDriver = "sqlite"
	cfg.DBSource = ":memory:"
	cfg.AdminName = "alice"
	cfg.AdminPassword = "password123"

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestEnsureAdmin(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	admin, err := a.store.GetAccountByName(ctx, "alice")
	if err != nil {
		t.Fatalf("expected the admin account to be bootstrapped: %v", err)
	}
	if !admin.Admin {
		t.Error("expected the bootstrapped account to be an admin")
	}

	created, err := ensureAdmin(ctx, a.store, "alice", "password123")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if created {
		t.Error("expected an existing admin to be left alone")
	}

	accounts, err := a.store.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("expected 1 account; got %d", len(accounts))
	}
}

func TestLoginCreateAndListTodo(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.SetBasicAuth("alice", "password123")
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK; got %d", rr.Code)
	}
	var login map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/todo", bytes.NewReader([]byte(`{"description": "buy milk", "complete": false}`)))
	req.Header.Set("X-Access-Token", login["token"])
	rr = httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201; got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/todo?owner=me", nil)
	req.Header.Set("X-Access-Token", login["token"])
	rr = httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200; got %d", rr.Code)
	}

	if strings.Contains(rr.Body.String(), "user_id") {
		t.Errorf("task list exposes the owner's internal id: %s", rr.Body.String())
	}
	var response struct {
		Tasks []api.Task `json:"all-to-do"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(response.Tasks) != 1 || response.Tasks[0].Description != "buy milk" || response.Tasks[0].Complete {
		t.Fatalf("expected one open 'buy milk' task; got %+v", response.Tasks)
	}

	ctx := context.Background()
	admin, err := a.store.GetAccountByName(ctx, "alice")
	if err != nil {
		t.Fatalf("load alice: %v", err)
	}
	owned, err := a.store.ListTasksByOwner(ctx, admin.ID)
	if err != nil {
		t.Fatalf("list alice's tasks: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != response.Tasks[0].ID {
		t.Errorf("expected task %d to belong to alice; got %+v", response.Tasks[0].ID, owned)
	}
}
