package rwpool

// ReadOnly marks a pool or connection as read-only.
type ReadOnly struct{}

// ReadWrite marks a pool or connection as read-write.
type ReadWrite struct{}

// Capability is the closed set of marker types a Pool or Conn can be tagged
// with. The union cannot be extended outside this package, so a tag can never
// be forged. Markers are zero-size and carry no behavior; they exist only as
// type arguments.
type Capability interface {
	ReadOnly | ReadWrite
}

// Readable is the constraint for code that reads. Every capability satisfies
// it: read-write access subsumes read-only access.
type Readable = Capability

// Writeable is the constraint for code that writes. Only ReadWrite satisfies
// it. Its type set is a strict subset of Readable's, so any type argument
// accepted here is also accepted by Readable-bounded code, while the reverse
// is rejected at compile time.
type Writeable interface {
	ReadWrite
}
