package market

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// Repository persists one kind of record keyed by its id.
//
// List returns records in ascending id order. Callers should treat the order
// as implementation-defined and compare by id set.
type Repository[T Record] interface {
	Create(ctx context.Context, rec T) error
	Get(ctx context.Context, id int64) (T, error)
	List(ctx context.Context) ([]T, error)
	Replace(ctx context.Context, rec T) error
	Delete(ctx context.Context, id int64) error
}

// Store groups the three repositories and schema-level operations.
type Store interface {
	Users() Repository[User]
	Orders() Repository[Order]
	Offers() Repository[Offer]
	// Reset drops every table and recreates the schema.
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// MemoryStore implements Store in process memory. It backs tests and local runs.
type MemoryStore struct {
	users  *memoryRepo[User]
	orders *memoryRepo[Order]
	offers *memoryRepo[Offer]
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  newMemoryRepo[User](CollectionUsers),
		orders: newMemoryRepo[Order](CollectionOrders),
		offers: newMemoryRepo[Offer](CollectionOffers),
	}
}

func (s *MemoryStore) Users() Repository[User]   { return s.users }
func (s *MemoryStore) Orders() Repository[Order] { return s.orders }
func (s *MemoryStore) Offers() Repository[Offer] { return s.offers }

// Reset empties every collection.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.users.clear()
	s.orders.clear()
	s.offers.clear()
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

type memoryRepo[T Record] struct {
	mu         sync.RWMutex
	collection string
	items      map[int64]T
}

func newMemoryRepo[T Record](collection string) *memoryRepo[T] {
	return &memoryRepo[T]{collection: collection, items: make(map[int64]T)}
}

func (r *memoryRepo[T]) Create(_ context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := rec.RecordID()
	if _, exists := r.items[id]; exists {
		return &ConflictError{Collection: r.collection, ID: id}
	}
	r.items[id] = rec
	return nil
}

func (r *memoryRepo[T]) Get(_ context.Context, id int64) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		var zero T
		return zero, &NotFoundError{Collection: r.collection, ID: id}
	}
	return rec, nil
}

func (r *memoryRepo[T]) List(_ context.Context) ([]T, error) {
	r.mu.RLock()
	out := make([]T, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, rec)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b T) int {
		return cmp.Compare(a.RecordID(), b.RecordID())
	})
	return out, nil
}

func (r *memoryRepo[T]) Replace(_ context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := rec.RecordID()
	if _, ok := r.items[id]; !ok {
		return &NotFoundError{Collection: r.collection, ID: id}
	}
	r.items[id] = rec
	return nil
}

func (r *memoryRepo[T]) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return &NotFoundError{Collection: r.collection, ID: id}
	}
	delete(r.items, id)
	return nil
}

func (r *memoryRepo[T]) clear() {
	r.mu.Lock()
	r.items = make(map[int64]T)
	r.mu.Unlock()
}
