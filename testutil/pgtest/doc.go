// Package pgtest wires the PostgreSQL rental store for integration tests.
//
// Tests are skipped unless RENTAL_TEST_DSN points to a reachable database.
// ADAPTER_TYPE selects the database adapter: "pgx.pool" (default), "sql.db", or "sqlx.db".
//
// Usage:
//
//	wrapper := pgtest.CreateWrapperWithTestConfig(t)
//	defer wrapper.Close()
//	wrapper.Reset(t)
//	store := wrapper.GetStore()
package pgtest
