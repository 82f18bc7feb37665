package rwpool

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultRollbackTimeout = 5 * time.Second

// Conn is one connection tagged with the capability C. It comes in two forms
// sharing this type: an owned checkout returned by Pool.Acquire, released
// with Release, and a borrowed connection handed to a Transaction callback,
// valid only until the callback returns. Both forms expose the native pgx
// query surface by delegation, so ordinary query code works unmodified;
// capability checking happens at call sites that are generic over Readable
// or Writeable, not per method.
//
// A Conn is exclusively owned by the goroutine holding it. It is not safe
// for concurrent use and must not outlive its pool or transaction scope.
type Conn[C Capability] struct {
	q       Querier
	release func() // nil for connections borrowed inside a transaction
}

// Release returns an owned connection to its pool. The connection must not
// be used afterward. Release is a no-op on a borrowed connection, which is
// returned implicitly when its transaction scope ends.
func (c *Conn[C]) Release() {
	if c.release == nil {
		return
	}
	c.release()
	c.release = nil
	c.q = nil
}

// Exec executes a query that does not return rows.
func (c *Conn[C]) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return c.q.Exec(ctx, sql, arguments...)
}

// Query executes a query that returns rows, typically a SELECT.
// The caller must close the returned Rows when done (use defer rows.Close()).
func (c *Conn[C]) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.q.Query(ctx, sql, args...)
}

// QueryRow executes a query expected to return at most one row.
// If no rows match, row.Scan() returns pgx.ErrNoRows.
func (c *Conn[C]) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.q.QueryRow(ctx, sql, args...)
}

// SendBatch sends all queued queries in b over a single round trip.
func (c *Conn[C]) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return c.q.SendBatch(ctx, b)
}

// CopyFrom performs a bulk COPY FROM into tableName.
func (c *Conn[C]) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return c.q.CopyFrom(ctx, tableName, columnNames, rowSrc)
}

// Transaction runs fn inside a database transaction. The connection handed
// to fn carries the same capability tag as the receiver and is valid only
// until fn returns. If fn returns nil the transaction is committed; if fn
// returns an error or panics it is rolled back (a panic is re-raised after
// rollback). Transaction is re-entrant: calling it on the callback's
// connection nests via pgx savepoints. On a test-mode checkout every
// transaction is a savepoint inside the connection's never-committed test
// transaction.
func (c *Conn[C]) Transaction(ctx context.Context, fn func(ctx context.Context, conn *Conn[C]) error) error {
	return c.TransactionTx(ctx, pgx.TxOptions{}, fn)
}

// TransactionTx is Transaction with explicit transaction options. Options
// apply only when the receiver holds a direct connection. On a connection
// already inside a transaction, which includes nested scopes and every
// test-mode checkout, the new scope is a pgx savepoint that inherits the
// characteristics of the enclosing transaction, and txOptions are ignored.
func (c *Conn[C]) TransactionTx(ctx context.Context, txOptions pgx.TxOptions, fn func(ctx context.Context, conn *Conn[C]) error) (err error) {
	tx, err := c.begin(ctx, txOptions)
	if err != nil {
		return &SafeError{msg: "rwpool: begin tx failed", cause: err}
	}

	// Rollback gets its own bounded context so a canceled caller context
	// cannot leave the transaction open.
	rollbackCtx, cancelRollback := context.WithTimeout(context.Background(), defaultRollbackTimeout)
	defer cancelRollback()

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(rollbackCtx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(rollbackCtx)
		}
	}()

	// The borrowed connection takes its tag from the receiver's type
	// parameter; nothing the callback controls can re-derive it.
	err = fn(ctx, &Conn[C]{q: tx})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &SafeError{msg: "rwpool: commit tx failed", cause: err}
	}

	return nil
}

func (c *Conn[C]) begin(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	type txBeginner interface {
		BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	}
	if b, ok := c.q.(txBeginner); ok {
		return b.BeginTx(ctx, txOptions)
	}
	// pgx.Tx has no BeginTx: nested scopes are savepoints and take no options.
	return c.q.Begin(ctx)
}
