package adapters

import (
	"context"
	"database/sql"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// stdRows wraps standard library sql.Rows to implement the DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Scan copies row values into provided destinations.
func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

// Err returns the error, if any, that was encountered during iteration.
func (s *stdRows) Err() error {
	return s.rows.Err()
}

// Close closes the rows iterator.
func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement the DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

// stdTx wraps a standard library sql.Tx (also used for sqlx.Tx) to implement the DBTx interface.
type stdTx struct {
	tx *sql.Tx
}

// Query executes a query inside the transaction.
func (s *stdTx) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a statement inside the transaction.
func (s *stdTx) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.tx.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// Commit commits the transaction.
func (s *stdTx) Commit(context.Context) error {
	return s.tx.Commit()
}

// Rollback aborts the transaction.
func (s *stdTx) Rollback(context.Context) error {
	return s.tx.Rollback()
}

// stdTxOptions are the options for all database/sql based transactions.
func stdTxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

// useReplica reports whether a read may be routed to the replica.
func useReplica(ctx context.Context, hasReplica bool) bool {
	return hasReplica && rentalstore.GetConsistencyLevel(ctx) == rentalstore.EventualConsistency
}
