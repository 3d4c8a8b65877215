package pgtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/rentalstore/postgresengine"
)

const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"

	truncateAll = "TRUNCATE payments, borrowings, books"
)

// Wrapper abstracts over the supported database adapters.
type Wrapper interface {
	GetStore() *postgresengine.Store
	Reset(t testing.TB)
	Close()
}

type execer func(ctx context.Context, sqlQuery string) error

type wrapper struct {
	store *postgresengine.Store
	exec  execer
	close func()
}

func (w *wrapper) GetStore() *postgresengine.Store {
	return w.store
}

// Reset creates the schema if needed and removes all rows.
func (w *wrapper) Reset(t testing.TB) {
	ctx := context.Background()

	require.NoError(t, w.store.CreateSchema(ctx), "failed to create the schema")
	require.NoError(t, w.exec(ctx, truncateAll), "failed to truncate the tables")
}

func (w *wrapper) Close() {
	w.close()
}

// CreateWrapperWithTestConfig creates the wrapper for the adapter selected by ADAPTER_TYPE.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	dsn := TestDSN(t)
	adapterType := strings.ToLower(os.Getenv(envAdapterType))

	switch adapterType {
	case typePGXPool, "":
		pool, err := pgxpool.NewWithConfig(context.Background(), PGXPoolTestConfig(t, dsn))
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := postgresengine.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating the store")

		return &wrapper{
			store: store,
			exec: func(ctx context.Context, sqlQuery string) error {
				_, execErr := pool.Exec(ctx, sqlQuery)
				return execErr
			},
			close: pool.Close,
		}

	case typeSQLDB:
		db := SQLDBTestConfig(t, dsn)

		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating the store")

		return &wrapper{
			store: store,
			exec: func(ctx context.Context, sqlQuery string) error {
				_, execErr := db.ExecContext(ctx, sqlQuery)
				return execErr
			},
			close: func() { _ = db.Close() },
		}

	case typeSQLXDB:
		db := SQLXTestConfig(t, dsn)

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating the store")

		return &wrapper{
			store: store,
			exec: func(ctx context.Context, sqlQuery string) error {
				_, execErr := db.ExecContext(ctx, sqlQuery)
				return execErr
			},
			close: func() { _ = db.Close() },
		}

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}
}
