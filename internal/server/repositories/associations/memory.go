package associations

import (
	"context"
	"sync"
)

// MemoryRepository keeps associations in process memory. A restart wipes
// it, after which the next negotiation re-uploads the example.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]string)}
}

func (r *MemoryRepository) Get(_ context.Context, example string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.docs[example]
	return id, ok, nil
}

func (r *MemoryRepository) Set(_ context.Context, example, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[example] = documentID
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, example string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, example)
	return nil
}
