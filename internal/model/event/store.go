package event

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID   = errors.New("event id must be positive")
	ErrDuplicateID = errors.New("duplicate event id")
)

// Store exposes read-only access to the event log.
type Store interface {
	All() []Event
	FindByID(id int) (Event, bool)
}

// MemoryStore implements Store with an in-memory slice fixed at construction.
type MemoryStore struct {
	items []Event
	index map[int]int
}

// NewMemoryStore returns a MemoryStore holding a copy of the supplied events in order.
func NewMemoryStore(items []Event) (*MemoryStore, error) {
	index := make(map[int]int, len(items))
	for i, item := range items {
		if item.ID <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidID, item.ID)
		}
		if _, exists := index[item.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, item.ID)
		}
		index[item.ID] = i
	}

	return &MemoryStore{
		items: append([]Event(nil), items...),
		index: index,
	}, nil
}

// All returns the events in insertion order.
func (s *MemoryStore) All() []Event {
	return append([]Event(nil), s.items...)
}

// FindByID looks up an event by identifier.
func (s *MemoryStore) FindByID(id int) (Event, bool) {
	i, ok := s.index[id]
	if !ok {
		return Event{}, false
	}
	return s.items[i], true
}
