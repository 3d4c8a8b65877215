package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db        *sql.DB
	replicaDB *sql.DB // optional replica for eventually consistent reads
}

// NewSQLAdapter creates a new SQL adapter with a primary database.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// NewSQLAdapterWithReplica creates a new SQL adapter with a primary and a replica database.
func NewSQLAdapterWithReplica(db *sql.DB, replica *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db, replicaDB: replica}
}

// Query executes a query using the replica for eventually consistent reads, otherwise the primary.
func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	db := s.db

	if useReplica(ctx, s.replicaDB != nil) {
		db = s.replicaDB
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a statement using the primary database.
func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// BeginTx starts a read-committed transaction on the primary database.
func (s *SQLAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, stdTxOptions())
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx}, nil
}
