package rwpool

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var errPoolClosed = errors.New("rwpool: pool is closed")

// testTxRegistry maps each physical connection created in test mode to the
// outer transaction begun on it. pgxpool owns physical-connection identity;
// the registry only records the open pgx.Tx per connection so checkouts can
// query through it. These transactions are never committed: they end when
// the connection is closed, discarding all writes.
type testTxRegistry struct {
	mu  sync.Mutex
	txs map[*pgx.Conn]pgx.Tx
}

func newTestTxRegistry() *testTxRegistry {
	return &testTxRegistry{txs: make(map[*pgx.Conn]pgx.Tx)}
}

// afterConnect returns the pgxpool hook that runs exactly once per newly
// created physical connection, before it is handed to any caller.
func (r *testTxRegistry) afterConnect(log zerolog.Logger) func(context.Context, *pgx.Conn) error {
	return func(ctx context.Context, conn *pgx.Conn) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		r.register(conn, tx)
		log.Debug().Msg("test transaction begun on new connection")
		return nil
	}
}

// beforeClose is the pgxpool hook that runs when the engine discards a
// physical connection (age, idleness, failed health check, pool close).
func (r *testTxRegistry) beforeClose(conn *pgx.Conn) {
	r.drop(conn)
}

func (r *testTxRegistry) register(conn *pgx.Conn, tx pgx.Tx) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs[conn] = tx
}

func (r *testTxRegistry) lookup(conn *pgx.Conn) (pgx.Tx, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[conn]
	return tx, ok
}

func (r *testTxRegistry) drop(conn *pgx.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.txs, conn)
}

func (r *testTxRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txs)
}

// testConn is a physical connection owned by the test-mode layer. It is
// hijacked out of pgxpool on first checkout because the engine's release
// path destroys any connection whose transaction status is not idle, which
// in test mode is every connection.
type testConn struct {
	conn *pgx.Conn
	tx   pgx.Tx
}

// close discards the connection along with its open test transaction.
func (c *testConn) close(ctx context.Context) {
	if c.conn != nil {
		_ = c.conn.Close(ctx)
	}
}

// testConnPool serves test-mode checkouts from its own free list, bounded by
// the pool's max size. Releasing a checkout returns it here, never to
// pgxpool, so the open test transaction survives any number of round-trips.
type testConnPool struct {
	create func(ctx context.Context) (*testConn, error)
	idle   chan *testConn
	tokens chan struct{}

	mu     sync.Mutex
	all    []*testConn
	closed bool
}

func newTestConnPool(maxSize int32, create func(ctx context.Context) (*testConn, error)) *testConnPool {
	p := &testConnPool{
		create: create,
		idle:   make(chan *testConn, maxSize),
		tokens: make(chan struct{}, maxSize),
	}
	for range int(maxSize) {
		p.tokens <- struct{}{}
	}
	return p
}

func (p *testConnPool) acquire(ctx context.Context) (*testConn, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, errPoolClosed
	}

	// Prefer reusing an open connection over creating a new one.
	select {
	case tc := <-p.idle:
		return tc, nil
	default:
	}

	select {
	case tc := <-p.idle:
		return tc, nil
	case <-p.tokens:
		tc, err := p.create(ctx)
		if err != nil {
			p.tokens <- struct{}{}
			return nil, err
		}
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			closeCtx, cancel := context.WithTimeout(context.Background(), defaultRollbackTimeout)
			defer cancel()
			tc.close(closeCtx)
			return nil, errPoolClosed
		}
		p.all = append(p.all, tc)
		p.mu.Unlock()
		return tc, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *testConnPool) release(tc *testConn) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		// close already discarded every connection it tracked.
		return
	}
	p.idle <- tc
}

// close discards every connection the layer ever created, checked out or
// not, together with their never-committed test transactions.
func (p *testConnPool) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	all := p.all
	p.all = nil
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRollbackTimeout)
	defer cancel()
	for _, tc := range all {
		tc.close(ctx)
	}
}
