package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/jackc/pgx/v5"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// table maps one entity kind onto one table. fields returns pointers to the
// struct fields in column order; the first column is the primary key.
type table[T any] struct {
	db      querier
	name    string
	columns []string
	numeric []bool
	fields  func(*T) []any

	selectList string
	upsertSQL  string
}

func newTable[T any](db querier, name string, columns []string, fields func(*T) []any) *table[T] {
	sample := fields(new(T))
	if len(sample) != len(columns) {
		panic(fmt.Sprintf("table %s: %d columns but %d fields", name, len(columns), len(sample)))
	}
	t := &table[T]{
		db:      db,
		name:    name,
		columns: columns,
		numeric: make([]bool, len(columns)),
		fields:  fields,
	}
	for i, f := range sample {
		_, t.numeric[i] = f.(**big.Int)
	}
	t.selectList = t.buildSelectList()
	t.upsertSQL = t.buildUpsert()
	return t
}

func (t *table[T]) buildSelectList() string {
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		if t.numeric[i] {
			cols[i] = c + "::text"
		} else {
			cols[i] = c
		}
	}
	return strings.Join(cols, ", ")
}

func (t *table[T]) buildUpsert() string {
	placeholders := make([]string, len(t.columns))
	updates := make([]string, 0, len(t.columns))
	for i, c := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if t.numeric[i] {
			placeholders[i] += "::numeric"
		}
		if i > 0 {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	updates = append(updates, "updated_at = now()")
	return fmt.Sprintf(
		"INSERT INTO %s (%s, updated_at) VALUES (%s, now()) ON CONFLICT (%s) DO UPDATE SET %s",
		t.name,
		strings.Join(t.columns, ", "),
		strings.Join(placeholders, ", "),
		t.columns[0],
		strings.Join(updates, ", "),
	)
}

func (t *table[T]) FindOne(ctx context.Context, id string) (*T, error) {
	rows, err := t.query(ctx, t.columns[0]+" = $1", "", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Upsert writes items in one batch with ON CONFLICT DO UPDATE.
func (t *table[T]) Upsert(ctx context.Context, items []*T) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(t.upsertSQL, encodeFields(t.fields(item))...)
	}

	br := t.db.SendBatch(ctx, batch)
	defer br.Close()

	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert %s: %w", t.name, err)
		}
	}
	return nil
}

// selectSQL builds a select over the mapped columns. distinctOn, when set,
// keeps one row per value of that column.
func (t *table[T]) selectSQL(distinctOn, where, tail string) string {
	sql := "SELECT "
	if distinctOn != "" {
		sql += "DISTINCT ON (" + distinctOn + ") "
	}
	sql += fmt.Sprintf("%s FROM %s WHERE %s", t.selectList, t.name, where)
	if tail != "" {
		sql += " " + tail
	}
	return sql
}

// query selects rows matching where, with an optional ORDER BY / LIMIT tail.
func (t *table[T]) query(ctx context.Context, where, tail string, args ...any) ([]*T, error) {
	return t.queryRows(ctx, t.selectSQL("", where, tail), args...)
}

func (t *table[T]) queryRows(ctx context.Context, sql string, args ...any) ([]*T, error) {
	rows, err := t.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		item := new(T)
		scans := make([]fieldScan, 0, len(t.columns))
		dests := make([]any, 0, len(t.columns))
		for _, f := range t.fields(item) {
			s := scanField(f)
			scans = append(scans, s)
			dests = append(dests, s.dest)
		}
		if err := rows.Scan(dests...); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				break
			}
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		for _, s := range scans {
			if s.apply == nil {
				continue
			}
			if err := s.apply(); err != nil {
				return nil, fmt.Errorf("scan %s: %w", t.name, err)
			}
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", t.name, err)
	}
	return out, nil
}

func encodeFields(fields []any) []any {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = encodeField(f)
	}
	return args
}

func encodeField(ptr any) any {
	switch p := ptr.(type) {
	case **big.Int:
		if *p == nil {
			return "0"
		}
		return (*p).String()
	case *uint8:
		return int16(*p)
	case *uint16:
		return int32(*p)
	case *uint32:
		return int64(*p)
	case *uint64:
		return int64(*p)
	case *int:
		return int64(*p)
	case *int32:
		return *p
	case *int64:
		return *p
	case *float64:
		return *p
	case *bool:
		return *p
	case *string:
		return *p
	default:
		panic(fmt.Sprintf("unsupported field type %T", ptr))
	}
}

// fieldScan is a scan destination plus the conversion back into the field.
type fieldScan struct {
	dest  any
	apply func() error
}

func scanField(ptr any) fieldScan {
	switch p := ptr.(type) {
	case **big.Int:
		var s string
		return fieldScan{dest: &s, apply: func() error {
			v, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return fmt.Errorf("invalid numeric %q", s)
			}
			*p = v
			return nil
		}}
	case *uint8:
		var v int16
		return fieldScan{dest: &v, apply: func() error { *p = uint8(v); return nil }}
	case *uint16:
		var v int32
		return fieldScan{dest: &v, apply: func() error { *p = uint16(v); return nil }}
	case *uint32:
		var v int64
		return fieldScan{dest: &v, apply: func() error { *p = uint32(v); return nil }}
	case *uint64:
		var v int64
		return fieldScan{dest: &v, apply: func() error { *p = uint64(v); return nil }}
	case *int:
		var v int64
		return fieldScan{dest: &v, apply: func() error { *p = int(v); return nil }}
	default:
		return fieldScan{dest: ptr}
	}
}
