// This program must not compile. It passes a read-only connection to a
// Writeable-bounded function, which the type system rejects:
//
//	go build ./testdata/misuse
//
// is expected to fail with "ReadOnly does not satisfy Writeable".
package main

import (
	"context"

	"github.com/rwpool-go/rwpool"
)

func store[C rwpool.Writeable](ctx context.Context, conn *rwpool.Conn[C]) error {
	_, err := conn.Exec(ctx, "INSERT INTO requests (user_agent) VALUES ($1)", "nope")
	return err
}

func main() {
	conn := rwpool.NewTestConn[rwpool.ReadOnly](&rwpool.TestQuerier{})
	_ = store(context.Background(), conn)
}
