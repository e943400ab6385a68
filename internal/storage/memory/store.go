// Package memory is an in-process Store used by tests and dry runs.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

// Table is a map-backed repository. Rows are shallow copies of what was upserted.
type Table[T any] struct {
	mu      sync.RWMutex
	idOf    func(*T) string
	rows    map[string]*T
	upserts int
	failErr error
}

func newTable[T any](idOf func(*T) string) *Table[T] {
	return &Table[T]{idOf: idOf, rows: make(map[string]*T)}
}

func (t *Table[T]) FindOne(_ context.Context, id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (t *Table[T]) Upsert(_ context.Context, items []*T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.failErr; err != nil {
		t.failErr = nil
		return err
	}
	t.upserts++
	for _, item := range items {
		cp := *item
		t.rows[t.idOf(item)] = &cp
	}
	return nil
}

// FailNextUpsert makes the next Upsert call return err without writing.
func (t *Table[T]) FailNextUpsert(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failErr = err
}

// snapshot captures the rows and returns a func restoring them.
func (t *Table[T]) snapshot() func() {
	t.mu.RLock()
	rows, upserts := maps.Clone(t.rows), t.upserts
	t.mu.RUnlock()
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.rows, t.upserts = rows, upserts
	}
}

// UpsertCalls returns how many Upsert batches the table received.
func (t *Table[T]) UpsertCalls() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.upserts
}

// Len returns the number of stored rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// All returns copies of every row, in no particular order.
func (t *Table[T]) All() []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*T, 0, len(t.rows))
	for _, row := range t.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out
}

// PairTable adds the pair record queries to Table.
type PairTable struct {
	*Table[model.PairRecord]
}

func (t PairTable) LatestStablePair(ctx context.Context, token1 string) (*model.PairRecord, error) {
	pairs, err := t.matching(func(r *model.PairRecord) bool {
		return r.Token1 == token1 && r.BaseStable
	}, 1)
	if err != nil || len(pairs) == 0 {
		return nil, err
	}
	return pairs[0], nil
}

func (t PairTable) LatestPairsByQuote(ctx context.Context, token1 string) ([]*model.PairRecord, error) {
	pairs, err := t.matching(func(r *model.PairRecord) bool {
		return r.Token1 == token1
	}, 0)
	if err != nil {
		return nil, err
	}
	return storage.LatestPerCounter(pairs), nil
}

func (t PairTable) matching(keep func(*model.PairRecord) bool, limit int) ([]*model.PairRecord, error) {
	var out []*model.PairRecord
	for _, row := range t.All() {
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return storage.NewerPair(out[i], out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Store keeps every table in memory.
type Store struct {
	PoolTable        *Table[model.Pool]
	PositionTable    *Table[model.Position]
	TokenTable       *Table[model.Token]
	WalletTable      *Table[model.Wallet]
	ManagerTable     *Table[model.Manager]
	PoolManagerTable *Table[model.PoolManager]
	HookTable        *Table[model.Hook]
	AMMConfigTable   *Table[model.AMMConfig]
	PairTable        PairTable
	SwapTable        *Table[model.SwapRecord]
	LiquidityTable   *Table[model.LiquidityRecord]
	TokenHourTable   *Table[model.TokenBucket]
	TokenDayTable    *Table[model.TokenBucket]
	PoolHourTable    *Table[model.PoolBucket]
	PoolDayTable     *Table[model.PoolBucket]

	mu    sync.Mutex
	state map[string]uint64
	txMu  sync.Mutex
}

var _ storage.TxStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		PoolTable:        newTable(func(p *model.Pool) string { return p.ID }),
		PositionTable:    newTable(func(p *model.Position) string { return p.ID }),
		TokenTable:       newTable(func(t *model.Token) string { return t.ID }),
		WalletTable:      newTable(func(w *model.Wallet) string { return w.ID }),
		ManagerTable:     newTable(func(m *model.Manager) string { return m.ID }),
		PoolManagerTable: newTable(func(m *model.PoolManager) string { return m.ID }),
		HookTable:        newTable(func(h *model.Hook) string { return h.ID }),
		AMMConfigTable:   newTable(func(c *model.AMMConfig) string { return c.ID }),
		PairTable:        PairTable{newTable(func(r *model.PairRecord) string { return r.ID })},
		SwapTable:        newTable(func(r *model.SwapRecord) string { return r.ID }),
		LiquidityTable:   newTable(func(r *model.LiquidityRecord) string { return r.ID }),
		TokenHourTable:   newTable(func(b *model.TokenBucket) string { return b.ID }),
		TokenDayTable:    newTable(func(b *model.TokenBucket) string { return b.ID }),
		PoolHourTable:    newTable(func(b *model.PoolBucket) string { return b.ID }),
		PoolDayTable:     newTable(func(b *model.PoolBucket) string { return b.ID }),
		state:            make(map[string]uint64),
	}
}

func (s *Store) Pools() storage.Repository[model.Pool]               { return s.PoolTable }
func (s *Store) Positions() storage.Repository[model.Position]       { return s.PositionTable }
func (s *Store) Tokens() storage.Repository[model.Token]             { return s.TokenTable }
func (s *Store) Wallets() storage.Repository[model.Wallet]           { return s.WalletTable }
func (s *Store) Managers() storage.Repository[model.Manager]         { return s.ManagerTable }
func (s *Store) PoolManagers() storage.Repository[model.PoolManager] { return s.PoolManagerTable }
func (s *Store) Hooks() storage.Repository[model.Hook]               { return s.HookTable }
func (s *Store) AMMConfigs() storage.Repository[model.AMMConfig]     { return s.AMMConfigTable }
func (s *Store) PairRecords() storage.PairRepository                 { return s.PairTable }
func (s *Store) SwapRecords() storage.Repository[model.SwapRecord]   { return s.SwapTable }
func (s *Store) LiquidityRecords() storage.Repository[model.LiquidityRecord] {
	return s.LiquidityTable
}
func (s *Store) TokenHours() storage.Repository[model.TokenBucket] { return s.TokenHourTable }
func (s *Store) TokenDays() storage.Repository[model.TokenBucket]  { return s.TokenDayTable }
func (s *Store) PoolHours() storage.Repository[model.PoolBucket]   { return s.PoolHourTable }
func (s *Store) PoolDays() storage.Repository[model.PoolBucket]    { return s.PoolDayTable }

// WithTx runs fn against s and restores every table when fn fails.
func (s *Store) WithTx(_ context.Context, fn func(storage.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	restores := []func(){
		s.PoolTable.snapshot(),
		s.PositionTable.snapshot(),
		s.TokenTable.snapshot(),
		s.WalletTable.snapshot(),
		s.ManagerTable.snapshot(),
		s.PoolManagerTable.snapshot(),
		s.HookTable.snapshot(),
		s.AMMConfigTable.snapshot(),
		s.PairTable.snapshot(),
		s.SwapTable.snapshot(),
		s.LiquidityTable.snapshot(),
		s.TokenHourTable.snapshot(),
		s.TokenDayTable.snapshot(),
		s.PoolHourTable.snapshot(),
		s.PoolDayTable.snapshot(),
	}
	if err := fn(s); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// LoadState returns the committed height stored under name.
func (s *Store) LoadState(_ context.Context, name string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	height, ok := s.state[name]
	return height, ok, nil
}

// SaveState records the committed height under name.
func (s *Store) SaveState(_ context.Context, name string, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[name] = height
	return nil
}
