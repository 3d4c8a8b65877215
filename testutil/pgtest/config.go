package pgtest

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/require"
)

const (
	envTestDSN     = "RENTAL_TEST_DSN"
	envAdapterType = "ADAPTER_TYPE"
)

// TestDSN returns the DSN of the integration test database or skips the test.
func TestDSN(t testing.TB) string {
	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s is not set, skipping PostgreSQL integration test", envTestDSN)
	}

	return dsn
}

// PGXPoolTestConfig creates a pgxpool.Config tuned for tests.
func PGXPoolTestConfig(t testing.TB, dsn string) *pgxpool.Config {
	const maxConnections = int32(10)
	const minConnections = int32(1)
	const maxConnIdleTime = time.Minute
	const connectTimeout = time.Second * 5

	dbConfig, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err, "failed to parse the test DSN")

	dbConfig.MaxConns = maxConnections
	dbConfig.MinConns = minConnections
	dbConfig.MaxConnIdleTime = maxConnIdleTime
	dbConfig.ConnConfig.ConnectTimeout = connectTimeout

	return dbConfig
}

// SQLDBTestConfig opens and pings a *sql.DB for tests.
func SQLDBTestConfig(t testing.TB, dsn string) *sql.DB {
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "failed to open the test database")

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(time.Minute)

	require.NoError(t, db.PingContext(context.Background()), "failed to ping the test database")

	return db
}

// SQLXTestConfig opens and pings a *sqlx.DB for tests.
func SQLXTestConfig(t testing.TB, dsn string) *sqlx.DB {
	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err, "failed to open the test database")

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(time.Minute)

	require.NoError(t, db.PingContext(context.Background()), "failed to ping the test database")

	return db
}
