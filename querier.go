package rwpool

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the query surface shared by both handle forms backing a Conn:
// *pgxpool.Conn for pool checkouts and pgx.Tx for connections borrowed
// inside a transaction scope. Application code should not depend on Querier
// directly; depend on *Conn[C] with a Readable or Writeable bound so the
// capability stays attached.
type Querier interface {
	// Exec executes a query that does not return rows.
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)

	// Query executes a query that returns rows, typically a SELECT.
	// The caller must close the returned Rows when done (use defer rows.Close()).
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow executes a query expected to return at most one row.
	// If no rows match, row.Scan() returns pgx.ErrNoRows.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// SendBatch sends all queued queries in b over a single round trip.
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults

	// CopyFrom performs a bulk COPY FROM into tableName.
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)

	// Begin starts a transaction. On a handle already inside a transaction
	// this opens a pgx savepoint. Prefer Conn.Transaction, which keeps the
	// capability tag attached and handles commit/rollback.
	Begin(ctx context.Context) (pgx.Tx, error)
}
