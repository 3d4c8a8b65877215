package postgresengine

import (
	"context"
	"database/sql"
	"sync"

	"github.com/AntonStoeckl/book-rental-go/rentalstore/postgresengine/internal/adapters"
)

// fakeDB is a scripted adapters.DBAdapter. Rows are served by the rows func, statements are recorded.
type fakeDB struct {
	mu           sync.Mutex
	statements   []string
	rows         func(sqlQuery string) [][]any
	execErr      error
	rowsAffected int64
	commits      int
	rollbacks    int
}

func (f *fakeDB) Query(_ context.Context, sqlQuery string) (adapters.DBRows, error) {
	f.record(sqlQuery)

	var data [][]any
	if f.rows != nil {
		data = f.rows(sqlQuery)
	}

	return &fakeRows{data: data}, nil
}

func (f *fakeDB) Exec(_ context.Context, sqlQuery string) (adapters.DBResult, error) {
	f.record(sqlQuery)

	if f.execErr != nil {
		return nil, f.execErr
	}

	return fakeResult(f.rowsAffected), nil
}

func (f *fakeDB) BeginTx(context.Context) (adapters.DBTx, error) {
	return &fakeTx{db: f}, nil
}

func (f *fakeDB) record(sqlQuery string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statements = append(f.statements, sqlQuery)
}

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) Query(ctx context.Context, sqlQuery string) (adapters.DBRows, error) {
	return t.db.Query(ctx, sqlQuery)
}

func (t *fakeTx) Exec(ctx context.Context, sqlQuery string) (adapters.DBResult, error) {
	return t.db.Exec(ctx, sqlQuery)
}

func (t *fakeTx) Commit(context.Context) error {
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.db.rollbacks++
	return nil
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}

	r.pos++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]

	for i, target := range dest {
		switch typed := target.(type) {
		case *string:
			*typed = row[i].(string)
		case *int64:
			*typed = row[i].(int64)
		case *sql.NullString:
			if row[i] == nil {
				*typed = sql.NullString{}
			} else {
				*typed = sql.NullString{String: row[i].(string), Valid: true}
			}
		}
	}

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	return nil
}

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) {
	return int64(r), nil
}
