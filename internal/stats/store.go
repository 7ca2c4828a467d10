package stats

import (
	"context"
	"sync"
)

// Store persists the statistics blob under a single fixed key.
type Store interface {
	// Load returns nil, nil when nothing was saved yet.
	Load(ctx context.Context) (*Statistics, error)
	Save(ctx context.Context, s Statistics) error
}

// MemoryStore keeps the encoded blob in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (*Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	s, err := Decode(m.data)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s Statistics) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}
