package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"todolist/api/internal/model"
	"todolist/api/internal/store"
)

func (s *Store) CreateUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if u.Username == "" {
		return model.User{}, errWithCode("username_required")
	}
	if u.Email == "" {
		return model.User{}, errWithCode("email_required")
	}

	if err := s.checkUniqueLocked(u, 0); err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	u.ID = s.userSeq.next()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) ListUsers(_ context.Context, f store.UserFilter) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return page(out, f.Offset, f.Limit), nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return model.User{}, store.ErrNotFound
	}

	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if u.Username == "" {
		return model.User{}, errWithCode("username_required")
	}
	if u.Email == "" {
		return model.User{}, errWithCode("email_required")
	}
	if err := s.checkUniqueLocked(u, u.ID); err != nil {
		return model.User{}, err
	}

	existing.Username = u.Username
	existing.Email = u.Email
	if u.PasswordHash != "" {
		existing.PasswordHash = u.PasswordHash
	}
	existing.UpdatedAt = time.Now().UTC()
	s.users[existing.ID] = existing
	return existing, nil
}

// DeleteUser removes the user and every todo it owns.
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	for todoID, t := range s.todos {
		if t.UserID == id {
			delete(s.todos, todoID)
		}
	}
	return nil
}

// checkUniqueLocked reports a conflict if another user (any id but self) already
// holds u's username or email. Username is checked first.
func (s *Store) checkUniqueLocked(u model.User, self int64) error {
	for _, existing := range s.users {
		if existing.ID == self {
			continue
		}
		if existing.Username == u.Username {
			return &store.ConflictError{Field: store.FieldUsername}
		}
	}
	for _, existing := range s.users {
		if existing.ID == self {
			continue
		}
		if existing.Email == u.Email {
			return &store.ConflictError{Field: store.FieldEmail}
		}
	}
	return nil
}
