package memory

import (
	"sync"

	"todolist/api/internal/model"
	"todolist/api/internal/store"
)

// Store keeps users and todos in id-keyed maps guarded by a single mutex.
// Uniqueness checks and the write they guard happen under the same lock.
type Store struct {
	mu sync.Mutex

	users map[int64]model.User
	todos map[int64]model.Todo

	userSeq sequence
	todoSeq sequence
}

func NewStore() *Store {
	return &Store{
		users: make(map[int64]model.User),
		todos: make(map[int64]model.Todo),
	}
}

type codeError string

func (e codeError) Error() string        { return string(e) }
func (e codeError) Is(target error) bool { return target == store.ErrInvalid }

func errWithCode(code string) error { return codeError(code) }

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
