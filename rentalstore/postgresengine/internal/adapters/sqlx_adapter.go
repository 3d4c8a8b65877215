package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db        *sqlx.DB
	replicaDB *sqlx.DB // optional replica for eventually consistent reads
}

// NewSQLXAdapter creates a new SQLX adapter with a primary database.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// NewSQLXAdapterWithReplica creates a new SQLX adapter with a primary and a replica database.
func NewSQLXAdapterWithReplica(db *sqlx.DB, replica *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db, replicaDB: replica}
}

// Query executes a query using the replica for eventually consistent reads, otherwise the primary.
func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
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
func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// BeginTx starts a read-committed transaction on the primary database.
func (s *SQLXAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTxx(ctx, stdTxOptions())
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx.Tx}, nil
}
