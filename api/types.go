package api

import (
	"github.com/golang-jwt/jwt/v5"
)

// Account is a row of the users table. ID is internal and never leaves the
// service; PublicID is what clients and tokens refer to.
type Account struct {
	ID           int64  `json:"-"`
	PublicID     string `json:"public_id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Admin        bool   `json:"admin"`
}

// Task is a row of the todos table.
type Task struct {
	ID          int64  `json:"todo_id"`
	UserID      int64  `json:"-"`
	Description string `json:"description"`
	Complete    bool   `json:"complete"`
}

// Column widths of users.name and todos.description.
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 100
)

type Claims struct {
	PublicID string `json:"public_id"`
	jwt.RegisteredClaims
}

type CreateAccountRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	// Admin is accepted for compatibility but new accounts are never admins.
	Admin bool `json:"admin"`
}

// UpdateAccountRequest fields are nil when the key is absent from the body.
type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Admin    *bool   `json:"admin"`
}

type CreateTaskRequest struct {
	Description string `json:"description"`
	Complete    bool   `json:"complete"`
}

type UpdateTaskRequest struct {
	Description *string `json:"description"`
	Complete    *bool   `json:"complete"`
}

// AccountUpdate is the set of columns an update will write. A nil field is
// left untouched.
type AccountUpdate struct {
	Name         *string
	PasswordHash *string
	Admin        *bool
}

func (u AccountUpdate) Empty() bool {
	return u.Name == nil && u.PasswordHash == nil && u.Admin == nil
}

type TaskUpdate struct {
	Description *string
	Complete    *bool
}

func (u TaskUpdate) Empty() bool {
	return u.Description == nil && u.Complete == nil
}
