// Package rwpool pools Postgres connections behind capability tags that
// statically distinguish read-only from read-write access, with an isolated
// test mode in which nothing is ever committed.
//
// Invariants:
//
//   - I1: a connection's capability tag is fixed at pool construction and is
//     never widened, narrowed, or re-derived, including inside transactions.
//   - I2: passing a read-only connection where write capability is required
//     does not compile; there is no runtime capability check anywhere.
//   - I3: pooling itself (size bound, waiter queuing, health checks) is
//     delegated to pgxpool; this package adds no locking of its own around it.
//   - I4: in test mode every physical connection lives inside one transaction
//     begun at creation time and never committed.
//   - I5: connect-path errors are safe to log by default.
//
// Functions that read accept any capability; functions that write constrain
// their type parameter to Writeable:
//
//	func load[C rwpool.Readable](ctx context.Context, conn *rwpool.Conn[C]) error
//	func store[C rwpool.Writeable](ctx context.Context, conn *rwpool.Conn[C]) error
//
// A *Conn[rwpool.ReadWrite] is accepted by both; a *Conn[rwpool.ReadOnly]
// only by load. Write capability subsumes read capability, so there is never
// a reason to hold both pool flavors for the same work.
package rwpool
