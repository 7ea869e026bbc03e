package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
)

const backendMemory = "memory"

// MemoryRepository is an in-process ports.ComparativeRepository with the
// same version semantics as PostgresRepository. Stored values are cloned on
// the way in and out so callers never share maps with the store.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]domain.Comparative
}

var _ ports.ComparativeRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]domain.Comparative)}
}

// Get implements ports.ComparativeRepository.
func (r *MemoryRepository) Get(ctx context.Context, id string) (domain.Comparative, error) {
	if err := ctx.Err(); err != nil {
		return domain.Comparative{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.data[id]
	if !ok {
		return domain.Comparative{}, ports.NewStoreError(backendMemory, "get", id, domain.ErrNotFound)
	}
	return c.Clone(), nil
}

// Create implements ports.ComparativeRepository.
func (r *MemoryRepository) Create(ctx context.Context, c domain.Comparative) (domain.Comparative, error) {
	if err := ctx.Err(); err != nil {
		return domain.Comparative{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[c.ID]; ok {
		return domain.Comparative{}, ports.NewStoreError(backendMemory, "create", c.ID, domain.ErrAlreadyExists)
	}
	stored := c.Clone()
	stored.Version = 1
	r.data[c.ID] = stored
	return stored.Clone(), nil
}

// Save implements ports.ComparativeRepository.
func (r *MemoryRepository) Save(ctx context.Context, c domain.Comparative) (domain.Comparative, error) {
	if err := ctx.Err(); err != nil {
		return domain.Comparative{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.data[c.ID]
	if !ok {
		return domain.Comparative{}, ports.NewStoreError(backendMemory, "save", c.ID, domain.ErrNotFound)
	}
	if current.Version != c.Version {
		return domain.Comparative{}, ports.NewStoreError(backendMemory, "save", c.ID,
			fmt.Errorf("%w: expected version %d, stored %d", domain.ErrVersionConflict, c.Version, current.Version))
	}

	stored := c.Clone()
	stored.Version = current.Version + 1
	r.data[c.ID] = stored
	return stored.Clone(), nil
}

// List implements ports.ComparativeRepository.
func (r *MemoryRepository) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
