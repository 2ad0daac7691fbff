package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory. Failure hooks let tests
// simulate a broken medium.
type MemoryStore struct {
	mu  sync.Mutex
	rec Record
	set bool

	SaveErr  error
	ClearErr error
	LoadErr  error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return Record{}, m.LoadErr
	}
	if !m.set || !m.rec.complete() {
		return Record{}, ErrNotFound
	}
	return m.rec, nil
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.rec = rec
	m.set = true
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.rec = Record{}
	m.set = false
	return nil
}

// Put stores a record without validation. Tests use it to seed partial state.
func (m *MemoryStore) Put(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	m.set = true
}

// Peek returns the raw stored record.
func (m *MemoryStore) Peek() (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.set
}
