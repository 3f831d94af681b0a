package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"todo-auth-api/api"
	"todo-auth-api/store"
)

// listTasks returns every task. ?owner=me narrows the list to the caller's.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	var (
		tasks []api.Task
		err   error
	)
	if r.URL.Query().Get("owner") == "me" {
		tasks, err = s.store.ListTasksByOwner(ctx, caller(r).ID)
	} else {
		tasks, err = s.store.ListTasks(ctx)
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{"all-to-do": tasks})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	task, err := s.store.GetTask(ctx, caller(r).ID, id)
	if err != nil {
		taskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{"all-to-do": []api.Task{task}})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "Values are not following rules")
		return
	}
	if req.Description == "" {
		badRequest(w, "The 'description' field is required")
		return
	}
	if tooLong(req.Description, api.MaxDescriptionLength) {
		descriptionTooLong(w)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	task, err := s.store.CreateTask(ctx, api.Task{
		UserID:      caller(r).ID,
		Description: req.Description,
		Complete:    req.Complete,
	})
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, message{"to-do": "Task add successfully!", "todo_id": task.ID})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req api.UpdateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "Values are not following rules")
		return
	}

	var update api.TaskUpdate
	if req.Description != nil && *req.Description != "" {
		if tooLong(*req.Description, api.MaxDescriptionLength) {
			descriptionTooLong(w)
			return
		}
		update.Description = req.Description
	}
	update.Complete = req.Complete

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.store.UpdateTask(ctx, caller(r).ID, id, update); err != nil {
		taskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, message{"to-do": "Task updated successfully!"})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.store.DeleteTask(ctx, caller(r).ID, id); err != nil {
		taskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, message{"to-do": "Task has been deleted!"})
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		badRequest(w, "Invalid Todo ID")
		return 0, false
	}
	return id, true
}

func descriptionTooLong(w http.ResponseWriter) {
	badRequest(w, fmt.Sprintf("The 'description' field must be at most %d characters", api.MaxDescriptionLength))
}

func taskError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, message{"error": "Task not found!"})
		return
	}
	serverError(w, r, err)
}
