package store

import (
	"context"
	"errors"
)

// memRows serves fixed rows of scalars
type memRows struct {
	cols []string
	data [][]any
	i    int
	err  error
}

func (m *memRows) Next() bool {
	if m.i >= len(m.data) {
		return false
	}
	m.i++
	return true
}

func (m *memRows) Scan(dest ...any) error {
	r := m.data[m.i-1]
	if len(dest) != len(r) {
		return errors.New("scan arity")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r[i].(string)
		case *int:
			*p = r[i].(int)
		default:
			return errors.New("unsupported dest")
		}
	}
	return nil
}

func (m *memRows) Err() error        { return m.err }
func (m *memRows) Close()            {}
func (m *memRows) Columns() []string { return m.cols }

type memTag int64

func (t memTag) String() string      { return "OK" }
func (t memTag) RowsAffected() int64 { return int64(t) }

// memQuerier answers every query with the same rows
type memQuerier struct {
	rows     [][]any
	affected int64
	err      error
	pingErr  error
	closed   bool
	copied   [][]any
}

func (q *memQuerier) Exec(context.Context, string, ...any) (CommandTag, error) {
	return memTag(q.affected), q.err
}

func (q *memQuerier) Query(context.Context, string, ...any) (Rows, error) {
	if q.err != nil {
		return nil, q.err
	}
	return &memRows{data: q.rows}, nil
}

func (q *memQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	rs, _ := q.Query(ctx, sql, args...)
	return rowFunc(func(dest ...any) error {
		if q.err != nil {
			return q.err
		}
		if !rs.Next() {
			return errors.New("no rows")
		}
		return rs.Scan(dest...)
	})
}

func (q *memQuerier) CopyFrom(_ context.Context, _ string, _ []string, rows [][]any) (int64, error) {
	q.copied = append(q.copied, rows...)
	return int64(len(rows)), q.err
}

func (q *memQuerier) Tx(_ context.Context, fn func(RowQuerier) error) error { return fn(q) }
func (q *memQuerier) Ping(context.Context) error                            { return q.pingErr }
func (q *memQuerier) Close() error                                          { q.closed = true; return nil }

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// memCH records batches
type memCH struct {
	batches map[string][][]any
	pingErr error
	closed  bool
}

func (c *memCH) InsertBatch(_ context.Context, table string, _ []string, rows [][]any) error {
	if c.batches == nil {
		c.batches = map[string][][]any{}
	}
	c.batches[table] = append(c.batches[table], rows...)
	return nil
}
func (c *memCH) Exec(context.Context, string, ...any) error          { return nil }
func (c *memCH) Query(context.Context, string, ...any) (Rows, error) { return &memRows{}, nil }
func (c *memCH) Ping(context.Context) error                          { return c.pingErr }
func (c *memCH) Close() error                                        { c.closed = true; return nil }
