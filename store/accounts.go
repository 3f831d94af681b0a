package store

import (
	"context"
	"database/sql"
	"errors"

	"todo-auth-api/api"
)

const accountColumns = "id, public_id, name, password_hash, admin"

func scanAccount(row interface{ Scan(...any) error }) (api.Account, error) {
	var a api.Account
	err := row.Scan(&a.ID, &a.PublicID, &a.Name, &a.PasswordHash, &a.Admin)
	return a, err
}

// CreateAccount inserts a and returns it with the id assigned by the database.
func (s *Store) CreateAccount(ctx context.Context, a api.Account) (api.Account, error) {
	id, err := s.insert(ctx,
		"INSERT INTO users (public_id, name, password_hash, admin) VALUES (?, ?, ?, ?)",
		a.PublicID, a.Name, a.PasswordHash, a.Admin,
	)
	if err != nil {
		return api.Account{}, err
	}
	a.ID = id
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]api.Account, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+accountColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []api.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Store) GetAccountByPublicID(ctx context.Context, publicID string) (api.Account, error) {
	return s.getAccount(ctx, "public_id", publicID)
}

// GetAccountByName returns the oldest account with the given name. Names are
// not unique.
func (s *Store) GetAccountByName(ctx context.Context, name string) (api.Account, error) {
	return s.getAccount(ctx, "name", name)
}

func (s *Store) getAccount(ctx context.Context, col string, v any) (api.Account, error) {
	query := "SELECT " + accountColumns + " FROM users WHERE " + col + " = ? ORDER BY id LIMIT 1"
	a, err := scanAccount(s.DB.QueryRowContext(ctx, s.rebind(query), v))
	if errors.Is(err, sql.ErrNoRows) {
		return api.Account{}, ErrNotFound
	}
	return a, err
}

// UpdateAccount writes the non-nil fields of u. It returns ErrNotFound when
// no account has the given public id.
func (s *Store) UpdateAccount(ctx context.Context, publicID string, u api.AccountUpdate) error {
	if u.Empty() {
		_, err := s.GetAccountByPublicID(ctx, publicID)
		return err
	}

	var set setClause
	if u.Name != nil {
		set.add("name", *u.Name)
	}
	if u.PasswordHash != nil {
		set.add("password_hash", *u.PasswordHash)
	}
	if u.Admin != nil {
		set.add("admin", *u.Admin)
	}

	res, err := s.DB.ExecContext(ctx,
		s.rebind("UPDATE users SET "+set.String()+" WHERE public_id = ?"),
		append(set.args, publicID)...,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// MySQL reports 0 when the new values equal the old ones.
		_, err := s.GetAccountByPublicID(ctx, publicID)
		return err
	}
	return nil
}

// DeleteAccount removes the account in a single conditional statement.
// Tasks that reference it are left in place.
func (s *Store) DeleteAccount(ctx context.Context, publicID string) error {
	res, err := s.DB.ExecContext(ctx, s.rebind("DELETE FROM users WHERE public_id = ?"), publicID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
