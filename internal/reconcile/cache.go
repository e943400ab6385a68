package reconcile

import (
	"context"
	"fmt"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

// entityCache is a read-through, write-back cache over one repository for
// the lifetime of an epoch. Repeated lookups return the same pointer, so
// mutations made by one handler are seen by the next.
type entityCache[T any] struct {
	name  string
	repo  storage.Repository[T]
	idOf  func(*T) string
	items map[string]*T
	// ids known to be absent from the store in this epoch
	absent map[string]struct{}
	dirty  []string
	marked map[string]struct{}
}

func newEntityCache[T any](name string, repo storage.Repository[T], idOf func(*T) string) *entityCache[T] {
	c := &entityCache[T]{name: name, repo: repo, idOf: idOf}
	c.reset()
	return c
}

func (c *entityCache[T]) reset() {
	c.items = make(map[string]*T)
	c.absent = make(map[string]struct{})
	c.dirty = nil
	c.marked = make(map[string]struct{})
}

// Get returns the cached entity, loading it from the store on a miss.
// It returns nil when the entity exists nowhere.
func (c *entityCache[T]) Get(ctx context.Context, id string) (*T, error) {
	if item, ok := c.items[id]; ok {
		return item, nil
	}
	if _, ok := c.absent[id]; ok {
		return nil, nil
	}
	item, err := c.repo.FindOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", c.name, id, err)
	}
	if item == nil {
		c.absent[id] = struct{}{}
		return nil, nil
	}
	c.items[id] = item
	return item, nil
}

// Ensure returns the entity, creating and marking it dirty when it exists
// nowhere. created reports whether create was called.
func (c *entityCache[T]) Ensure(ctx context.Context, id string, create func() (*T, error)) (item *T, created bool, err error) {
	item, err = c.Get(ctx, id)
	if err != nil || item != nil {
		return item, false, err
	}
	item, err = create()
	if err != nil {
		return nil, false, fmt.Errorf("create %s %s: %w", c.name, id, err)
	}
	c.Save(item)
	return item, true, nil
}

// Save stores items in the cache and marks them for the next flush.
func (c *entityCache[T]) Save(items ...*T) {
	for _, item := range items {
		id := c.idOf(item)
		c.items[id] = item
		delete(c.absent, id)
		if _, ok := c.marked[id]; ok {
			continue
		}
		c.marked[id] = struct{}{}
		c.dirty = append(c.dirty, id)
	}
}

// Dirty returns the number of entities pending flush.
func (c *entityCache[T]) Dirty() int {
	return len(c.dirty)
}

// Flush upserts every dirty entity into repo in one call, then empties the
// cache. repo is the cache's own repository or its transactional twin.
func (c *entityCache[T]) Flush(ctx context.Context, repo storage.Repository[T]) (int, error) {
	if len(c.dirty) == 0 {
		c.reset()
		return 0, nil
	}
	batch := make([]*T, 0, len(c.dirty))
	for _, id := range c.dirty {
		batch = append(batch, c.items[id])
	}
	if err := repo.Upsert(ctx, batch); err != nil {
		return 0, fmt.Errorf("flush %s: %w", c.name, err)
	}
	c.reset()
	return len(batch), nil
}

// recordLog buffers append-only records until the epoch flush.
type recordLog[T any] struct {
	name    string
	records []*T
}

func newRecordLog[T any](name string) *recordLog[T] {
	return &recordLog[T]{name: name}
}

func (l *recordLog[T]) Append(record *T) {
	l.records = append(l.records, record)
}

// Records returns the unflushed records in append order.
func (l *recordLog[T]) Records() []*T {
	return l.records
}

func (l *recordLog[T]) Flush(ctx context.Context, repo storage.Repository[T]) (int, error) {
	n := len(l.records)
	if n == 0 {
		return 0, nil
	}
	if err := repo.Upsert(ctx, l.records); err != nil {
		return 0, fmt.Errorf("flush %s: %w", l.name, err)
	}
	l.records = nil
	return n, nil
}
