package rwpool

import "time"

// Config controls pool construction.
type Config struct {
	// DatabaseURL is the connection target. Required.
	DatabaseURL string `koanf:"database_url"`

	// TestMode wraps every physical connection's lifetime in one transaction
	// that is never committed, isolating all work performed through the pool.
	// Defaults to false.
	TestMode bool `koanf:"test_mode"`

	// MaxConns bounds concurrently checked-out physical connections.
	// Defaults to 2x runtime.GOMAXPROCS(0).
	MaxConns int32 `koanf:"max_conns"`

	// MinConns defaults to 0.
	MinConns int32 `koanf:"min_conns"`

	// HealthCheckPeriod defaults to 30s.
	HealthCheckPeriod time.Duration `koanf:"health_check_period"`

	// MaxConnLifetime defaults to 30m.
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`

	// MaxConnIdleTime defaults to 5m.
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`

	// ConnectTimeout defaults to 10s.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}
