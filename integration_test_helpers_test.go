//go:build integration

package rwpool

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	integrationDSNURLPattern   = regexp.MustCompile(`(?i)postgres(?:ql)?://[^\s]+`)
	integrationPasswordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)
	integrationSchemaPattern   = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

func requireIntegrationEnv(t *testing.T) string {
	t.Helper()

	url := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if url == "" {
		t.Fatal("integration requires environment variable: DATABASE_URL")
	}
	return url
}

func integrationSchemaName(t *testing.T) string {
	t.Helper()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("rwpool_it_%s", suffix)
	if !integrationSchemaPattern.MatchString(name) {
		t.Fatalf("generated invalid schema name: %q", name)
	}
	return name
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func qualifiedTable(schema, table string) string {
	return quoteIdent(schema) + "." + quoteIdent(table)
}

func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = integrationDSNURLPattern.ReplaceAllString(msg, "[REDACTED_DSN]")
	msg = integrationPasswordPattern.ReplaceAllString(msg, "password=[REDACTED]")
	return msg
}

func mustNoErr(t *testing.T, err error, operation string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %s", operation, sanitizeErrorMessage(err))
	}
}

// setupRequestsTable creates a dedicated schema with a requests table,
// committed outside any pool, and registers a cleanup that drops the schema.
func setupRequestsTable(t *testing.T, databaseURL string) string {
	t.Helper()

	schema := integrationSchemaName(t)
	table := qualifiedTable(schema, "requests")

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancelSetup()

	conn, err := pgx.Connect(setupCtx, databaseURL)
	mustNoErr(t, err, "connect for table setup")
	defer conn.Close(context.Background())

	_, err = conn.Exec(setupCtx, fmt.Sprintf("CREATE SCHEMA %s", quoteIdent(schema)))
	mustNoErr(t, err, "create schema")

	_, err = conn.Exec(setupCtx, fmt.Sprintf(`
CREATE TABLE %s (
	id BIGSERIAL PRIMARY KEY,
	user_agent TEXT NOT NULL
)`, table))
	mustNoErr(t, err, "create table")

	t.Cleanup(func() {
		cleanupCtx, cancelCleanup := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelCleanup()

		cleanupConn, err := pgx.Connect(cleanupCtx, databaseURL)
		if err != nil {
			t.Errorf("cleanup connect failed: %s", sanitizeErrorMessage(err))
			return
		}
		defer cleanupConn.Close(context.Background())

		if _, err := cleanupConn.Exec(cleanupCtx, fmt.Sprintf("DROP SCHEMA %s CASCADE", quoteIdent(schema))); err != nil {
			t.Errorf("cleanup drop schema failed: %s", sanitizeErrorMessage(err))
		}
	})

	return table
}

// countRowsDirect counts rows through a plain driver connection, outside any
// pool, observing only committed state.
func countRowsDirect(t *testing.T, databaseURL, table string) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseURL)
	mustNoErr(t, err, "connect for direct count")
	defer conn.Close(context.Background())

	var n int64
	err = conn.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	mustNoErr(t, err, "direct count")
	return n
}
