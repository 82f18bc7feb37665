package rwpool

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotMocked is returned when a TestQuerier method is called without a
// corresponding Func field set.
var ErrNotMocked = errors.New("rwpool.TestQuerier: method not mocked; set the corresponding Func field")

// TestQuerier is a mock Querier implementation for unit tests.
type TestQuerier struct {
	ExecFunc      func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc     func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc  func(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatchFunc func(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFromFunc  func(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	BeginFunc     func(ctx context.Context) (pgx.Tx, error)
}

var _ Querier = (*TestQuerier)(nil)

// NewTestConn wraps q in a connection carrying the capability C, for unit
// tests of code written against Readable or Writeable bounds. For
// integration-level isolation, prefer a real pool built with
// Config.TestMode instead.
func NewTestConn[C Capability](q Querier) *Conn[C] {
	return &Conn[C]{q: q}
}

func (t *TestQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.ExecFunc != nil {
		return t.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, ErrNotMocked
}

func (t *TestQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.QueryFunc != nil {
		return t.QueryFunc(ctx, sql, args...)
	}
	return &ErrRows{ErrValue: ErrNotMocked}, ErrNotMocked
}

func (t *TestQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if t.QueryRowFunc != nil {
		return t.QueryRowFunc(ctx, sql, args...)
	}
	return &ErrRow{Err: ErrNotMocked}
}

func (t *TestQuerier) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if t.SendBatchFunc != nil {
		return t.SendBatchFunc(ctx, b)
	}
	return nil
}

func (t *TestQuerier) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	if t.CopyFromFunc != nil {
		return t.CopyFromFunc(ctx, tableName, columnNames, rowSrc)
	}
	return 0, ErrNotMocked
}

func (t *TestQuerier) Begin(ctx context.Context) (pgx.Tx, error) {
	if t.BeginFunc != nil {
		return t.BeginFunc(ctx)
	}
	return nil, ErrNotMocked
}

// ErrRow implements pgx.Row. Its Scan always returns Err.
type ErrRow struct {
	Err error
}

func (r *ErrRow) Scan(dest ...any) error {
	return r.Err
}

// NewRow returns a pgx.Row backed by the provided values.
func NewRow(values ...any) pgx.Row {
	return &valueRow{values: values}
}

type valueRow struct {
	values []any
}

func (r *valueRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("rwpool.valueRow: scan dest count %d != column count %d", len(dest), len(r.values))
	}

	for i, val := range r.values {
		if err := assignScanValue("rwpool.valueRow", i, dest[i], val); err != nil {
			return err
		}
	}

	return nil
}

// ErrRows implements pgx.Rows and always returns the configured error.
type ErrRows struct {
	// ErrValue is returned by Err(), Scan(), and Values().
	ErrValue error
}

func (r *ErrRows) Close()                                       {}
func (r *ErrRows) Err() error                                   { return r.ErrValue }
func (r *ErrRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *ErrRows) Conn() *pgx.Conn                              { return nil }
func (r *ErrRows) RawValues() [][]byte                          { return nil }
func (r *ErrRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *ErrRows) Next() bool                                   { return false }
func (r *ErrRows) Values() ([]any, error)                       { return nil, r.ErrValue }

func (r *ErrRows) Scan(dest ...any) error {
	if r.ErrValue != nil {
		return r.ErrValue
	}
	return fmt.Errorf("rwpool.ErrRows: Scan called with nil ErrValue")
}

// RowsBuilder builds pgx.Rows backed by in-memory rows.
type RowsBuilder struct {
	columns []string
	rows    [][]any
}

// NewRows creates a new RowsBuilder.
func NewRows(columns []string) *RowsBuilder {
	return &RowsBuilder{columns: columns}
}

// AddRow appends a row. It panics on arity mismatch.
func (b *RowsBuilder) AddRow(values ...any) *RowsBuilder {
	if len(values) != len(b.columns) {
		panic("rwpool.RowsBuilder: column count mismatch")
	}
	b.rows = append(b.rows, values)
	return b
}

// Build returns a pgx.Rows cursor for the builder data.
func (b *RowsBuilder) Build() pgx.Rows {
	return &fakeRows{
		columns: b.columns,
		data:    b.rows,
		idx:     -1,
	}
}

type fakeRows struct {
	columns []string
	data    [][]any
	idx     int
	closed  bool
	scanErr error
}

func (r *fakeRows) Close() {
	r.closed = true
}

func (r *fakeRows) Err() error {
	return r.scanErr
}

func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}

func (r *fakeRows) Conn() *pgx.Conn {
	return nil
}

func (r *fakeRows) RawValues() [][]byte {
	return nil
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, col := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: col}
	}
	return fields
}

func (r *fakeRows) Next() bool {
	if r.closed {
		return false
	}

	r.idx++
	if r.idx >= len(r.data) {
		r.closed = true
		return false
	}
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.data) {
		return pgx.ErrNoRows
	}

	row := r.data[r.idx]
	if len(dest) != len(row) {
		err := fmt.Errorf("rwpool.fakeRows: scan dest count %d != column count %d", len(dest), len(row))
		r.scanErr = err
		return err
	}

	for i, val := range row {
		if err := assignScanValue("rwpool.fakeRows", i, dest[i], val); err != nil {
			r.scanErr = err
			return err
		}
	}

	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	if r.idx < 0 || r.idx >= len(r.data) {
		return nil, pgx.ErrNoRows
	}
	return r.data[r.idx], nil
}

func assignScanValue(prefix string, idx int, dest any, val any) error {
	switch d := dest.(type) {
	case *string:
		v, ok := val.(string)
		if !ok {
			return fmt.Errorf("%s: expected string at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *int:
		v, ok := val.(int)
		if !ok {
			return fmt.Errorf("%s: expected int at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *int64:
		v, ok := val.(int64)
		if !ok {
			return fmt.Errorf("%s: expected int64 at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *bool:
		v, ok := val.(bool)
		if !ok {
			return fmt.Errorf("%s: expected bool at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *float64:
		v, ok := val.(float64)
		if !ok {
			return fmt.Errorf("%s: expected float64 at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *any:
		*d = val
	default:
		return fmt.Errorf("%s: unsupported scan target type %T at column %d", prefix, dest, idx)
	}

	return nil
}
