package httpapi

import (
	"sync"
	"time"
)

const (
	EventTodoCreated = "todo.created"
	EventTodoUpdated = "todo.updated"
	EventTodoDeleted = "todo.deleted"
)

type busEvent struct {
	Type   string    `json:"type"`
	TodoID int64     `json:"todo_id"`
	Time   time.Time `json:"time"`
}

type subscriber struct {
	ch     chan busEvent
	userID int64
}

// eventBus fans todo changes out to the owner's open streams only.
type eventBus struct {
	mu   sync.Mutex
	subs map[chan busEvent]subscriber
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[chan busEvent]subscriber)}
}

func (b *eventBus) Subscribe(userID int64) chan busEvent {
	ch := make(chan busEvent, 32)
	b.mu.Lock()
	b.subs[ch] = subscriber{ch: ch, userID: userID}
	b.mu.Unlock()
	return ch
}

// Unsubscribe is a no-op for channels DropUser already closed.
func (b *eventBus) Unsubscribe(ch chan busEvent) {
	if ch == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

// DropUser closes every stream the user has open.
func (b *eventBus) DropUser(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch, sub := range b.subs {
		if sub.userID != userID {
			continue
		}
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *eventBus) Publish(typ string, userID, todoID int64) {
	ev := busEvent{Type: typ, TodoID: todoID, Time: time.Now().UTC()}

	b.mu.Lock()
	for _, sub := range b.subs {
		if sub.userID != userID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// drop if subscriber is slow
		}
	}
	b.mu.Unlock()
}
