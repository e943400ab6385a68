package reconcile

import "context"

// NamedStateTable is a keyed committed-height table, such as indexer_state.
type NamedStateTable interface {
	LoadState(ctx context.Context, name string) (uint64, bool, error)
	SaveState(ctx context.Context, name string, height uint64) error
}

// DBStateStore stores state in the indexer_state table.
type DBStateStore struct {
	Store NamedStateTable
	Name  string
}

func (s *DBStateStore) Load(ctx context.Context) (uint64, bool, error) {
	if s == nil || s.Store == nil {
		return 0, false, nil
	}
	return s.Store.LoadState(ctx, s.Name)
}

func (s *DBStateStore) Save(ctx context.Context, height uint64) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveState(ctx, s.Name, height)
}
