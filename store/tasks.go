package store

import (
	"context"
	"database/sql"
	"errors"

	"todo-auth-api/api"
)

const taskColumns = "id, user_id, description, complete"

func scanTask(row interface{ Scan(...any) error }) (api.Task, error) {
	var t api.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.Complete)
	return t, err
}

func (s *Store) CreateTask(ctx context.Context, t api.Task) (api.Task, error) {
	id, err := s.insert(ctx,
		"INSERT INTO todos (user_id, description, complete) VALUES (?, ?, ?)",
		t.UserID, t.Description, t.Complete,
	)
	if err != nil {
		return api.Task{}, err
	}
	t.ID = id
	return t, nil
}

// ListTasks returns every task regardless of owner.
func (s *Store) ListTasks(ctx context.Context) ([]api.Task, error) {
	return s.queryTasks(ctx, "SELECT "+taskColumns+" FROM todos ORDER BY id")
}

func (s *Store) ListTasksByOwner(ctx context.Context, userID int64) ([]api.Task, error) {
	return s.queryTasks(ctx, "SELECT "+taskColumns+" FROM todos WHERE user_id = ? ORDER BY id", userID)
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]api.Task, error) {
	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []api.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns task id if it belongs to userID, ErrNotFound otherwise.
func (s *Store) GetTask(ctx context.Context, userID, id int64) (api.Task, error) {
	query := "SELECT " + taskColumns + " FROM todos WHERE id = ? AND user_id = ?"
	t, err := scanTask(s.DB.QueryRowContext(ctx, s.rebind(query), id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return api.Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) UpdateTask(ctx context.Context, userID, id int64, u api.TaskUpdate) error {
	if u.Empty() {
		_, err := s.GetTask(ctx, userID, id)
		return err
	}

	var set setClause
	if u.Description != nil {
		set.add("description", *u.Description)
	}
	if u.Complete != nil {
		set.add("complete", *u.Complete)
	}

	res, err := s.DB.ExecContext(ctx,
		s.rebind("UPDATE todos SET "+set.String()+" WHERE id = ? AND user_id = ?"),
		append(set.args, id, userID)...,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		_, err := s.GetTask(ctx, userID, id)
		return err
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, id int64) error {
	res, err := s.DB.ExecContext(ctx, s.rebind("DELETE FROM todos WHERE id = ? AND user_id = ?"), id, userID)
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
