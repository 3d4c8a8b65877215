package postgresengine

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	operationCreateSchema = "create_schema"
)

// CreateSchema creates the tables and indexes of the store if they do not exist yet.
func (s *Store) CreateSchema(ctx context.Context) (err error) {
	observer, ctx := s.startOperation(ctx, operationCreateSchema)
	defer func() { observer.finish(err, noRecordCount) }()

	for _, statement := range s.schemaStatements() {
		if _, err = s.exec(ctx, s.db, statement); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) schemaStatements() []string {
	books := quoteIdent(s.booksTable)
	borrowings := quoteIdent(s.borrowingsTable)
	payments := quoteIdent(s.paymentsTable)

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id uuid PRIMARY KEY,
	title text NOT NULL,
	author text NOT NULL,
	cover text NOT NULL CHECK (cover IN ('HARD', 'SOFT')),
	inventory integer NOT NULL CHECK (inventory >= 0),
	daily_fee numeric(6,2) NOT NULL CHECK (daily_fee >= 0)
)`, books),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id uuid PRIMARY KEY,
	borrow_date date NOT NULL,
	expected_return_date date NOT NULL,
	actual_return_date date NULL,
	book_id uuid NOT NULL REFERENCES %s (id),
	user_id uuid NOT NULL
)`, borrowings, books),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (user_id, actual_return_date)`,
			quoteIdent(s.borrowingsTable+"_user_idx"), borrowings),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id uuid PRIMARY KEY,
	status text NOT NULL CHECK (status IN ('PENDING', 'PAID', 'EXPIRED')),
	type text NOT NULL CHECK (type IN ('PAYMENT', 'FINE')),
	borrowing_id uuid NOT NULL REFERENCES %s (id),
	session_id text NOT NULL DEFAULT '',
	session_url text NOT NULL DEFAULT '',
	amount numeric(10,2) NOT NULL CHECK (amount >= 0)
)`, payments, borrowings),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (borrowing_id, type)`,
			quoteIdent(s.paymentsTable+"_borrowing_idx"), payments),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (session_id)`,
			quoteIdent(s.paymentsTable+"_session_idx"), payments),
	}
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
