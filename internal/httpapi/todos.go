package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"todolist/api/internal/model"
	"todolist/api/internal/store"
)

type todoRequest struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	State       model.TodoState `json:"state" validate:"required,oneof=draft todo doing done trash"`
}

type todoPatchRequest struct {
	Title       *string          `json:"title" validate:"omitnil,min=1"`
	Description *string          `json:"description"`
	State       *model.TodoState `json:"state" validate:"omitnil,oneof=draft todo doing done trash"`
}

type todoListQuery struct {
	State model.TodoState `json:"state" validate:"omitempty,oneof=draft todo doing done trash"`
}

type todoResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	State       model.TodoState `json:"state"`
}

type todosResponse struct {
	Todos []todoResponse `json:"todos"`
}

func newTodoResponse(t model.Todo) todoResponse {
	return todoResponse{ID: t.ID, Title: t.Title, Description: t.Description, State: t.State}
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req todoRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.store.CreateTodo(r.Context(), model.Todo{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
		UserID:      user.ID,
	})
	if err != nil {
		s.log.WithError(err).Error("create todo")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.bus.Publish(EventTodoCreated, user.ID, created.ID)
	writeJSON(w, http.StatusOK, newTodoResponse(created))
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	q := r.URL.Query()

	query := todoListQuery{State: model.TodoState(strings.TrimSpace(q.Get("state")))}
	if err := s.validateStruct(query); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	todos, err := s.store.ListTodos(r.Context(), store.TodoFilter{
		UserID:      user.ID,
		Title:       q.Get("title"),
		Description: q.Get("description"),
		State:       query.State,
		Offset:      offset,
		Limit:       limit,
	})
	if err != nil {
		s.log.WithError(err).Error("list todos")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := todosResponse{Todos: make([]todoResponse, 0, len(todos))}
	for _, t := range todos {
		resp.Todos = append(resp.Todos, newTodoResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePatchTodo(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var req todoPatchRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	todo, err := s.store.GetTodo(r.Context(), user.ID, id)
	if err != nil {
		s.writeTodoError(w, "get todo", err)
		return
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.State != nil {
		todo.State = *req.State
	}

	updated, err := s.store.UpdateTodo(r.Context(), *todo)
	if err != nil {
		s.writeTodoError(w, "update todo", err)
		return
	}

	s.bus.Publish(EventTodoUpdated, user.ID, updated.ID)
	writeJSON(w, http.StatusOK, newTodoResponse(updated))
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.DeleteTodo(r.Context(), user.ID, id); err != nil {
		s.writeTodoError(w, "delete todo", err)
		return
	}

	s.bus.Publish(EventTodoDeleted, user.ID, id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Task has been deleted successfully."})
}

// writeTodoError reports another user's todo exactly like a missing one.
func (s *Server) writeTodoError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	s.log.WithError(err).Error(op)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// handleTodoStream pushes the caller's todo change events as server-sent events.
func (s *Server) handleTodoStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	user := userFromContext(r.Context())
	ch := s.bus.Subscribe(user.ID)
	defer s.bus.Unsubscribe(ch)

	// Initial event so the client knows the stream is up.
	_, _ = fmt.Fprintf(w, "event: hello\ndata: {}\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			b, _ := json.Marshal(ev)
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, string(b))
			flusher.Flush()
		}
	}
}
