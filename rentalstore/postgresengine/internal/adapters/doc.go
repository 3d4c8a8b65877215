// Package adapters provide database adapter implementations for the PostgreSQL rental store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface: plain statements, read-committed transactions, and
// optional routing of eventually consistent reads to a replica.
package adapters
