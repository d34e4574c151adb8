package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"todolist/api/internal/model"
	"todolist/api/internal/store"
)

func (s *Store) CreateTodo(_ context.Context, t model.Todo) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[t.UserID]; !ok {
		// Mirrors the foreign key violation of the postgres store.
		return model.Todo{}, store.ErrNotFound
	}
	if !t.State.Valid() {
		return model.Todo{}, errWithCode("invalid_state")
	}

	now := time.Now().UTC()
	t.ID = s.todoSeq.next()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.todos[t.ID] = t
	return t, nil
}

func (s *Store) ListTodos(_ context.Context, f store.TodoFilter) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Todo, 0)
	for _, t := range s.todos {
		if t.UserID != f.UserID {
			continue
		}
		if f.Title != "" && !strings.Contains(t.Title, f.Title) {
			continue
		}
		if f.Description != "" && !strings.Contains(t.Description, f.Description) {
			continue
		}
		if f.State != "" && t.State != f.State {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return page(out, f.Offset, f.Limit), nil
}

func (s *Store) GetTodo(_ context.Context, userID, id int64) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *Store) UpdateTodo(_ context.Context, t model.Todo) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.todos[t.ID]
	if !ok || existing.UserID != t.UserID {
		return model.Todo{}, store.ErrNotFound
	}
	if !t.State.Valid() {
		return model.Todo{}, errWithCode("invalid_state")
	}

	existing.Title = t.Title
	existing.Description = t.Description
	existing.State = t.State
	existing.UpdatedAt = time.Now().UTC()
	s.todos[existing.ID] = existing
	return existing, nil
}

func (s *Store) DeleteTodo(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.todos, id)
	return nil
}
