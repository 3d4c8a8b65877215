package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName      = "books"
	defaultBorrowingsTableName = "borrowings"
	defaultPaymentsTableName   = "payments"

	dialectPostgres    = "postgres"
	castText           = "TEXT"
	fnAdvisoryXactLock = "pg_advisory_xact_lock"
	fnHashText         = "hashtext"

	colID                 = "id"
	colTitle              = "title"
	colAuthor             = "author"
	colCover              = "cover"
	colInventory          = "inventory"
	colDailyFee           = "daily_fee"
	colBorrowDate         = "borrow_date"
	colExpectedReturnDate = "expected_return_date"
	colActualReturnDate   = "actual_return_date"
	colBookID             = "book_id"
	colUserID             = "user_id"
	colStatus             = "status"
	colType               = "type"
	colBorrowingID        = "borrowing_id"
	colSessionID          = "session_id"
	colSessionURL         = "session_url"
	colAmount             = "amount"

	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"

	logMsgBuildQueryFailed  = "failed to build query"
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgDBExecFailed      = "database statement execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgReadRowFailed     = "failed to read database row"
	logMsgRollbackFailed    = "failed to roll back transaction"
	logMsgSQLExecuted       = "executed sql for: "
	logMsgOperation         = "rentalstore operation: "
	logMsgOperationFailed   = "rentalstore operation failed: "
	logAttrError            = "error"
	logAttrErrorType        = "error_type"
	logAttrQuery            = "query"
	logAttrDurationMS       = "duration_ms"
	logAttrRecordCount      = "record_count"
	logActionQuery          = "query"
	logActionExec           = "exec"
	operationRunInTx        = "run_in_tx"
	operationInsertBook     = "insert_book"
	operationDeleteBook     = "delete_book"
	operationBookByID       = "book_by_id"
	operationListBooks      = "list_books"
	operationBorrowingByID  = "borrowing_by_id"
	operationListBorrowings = "list_borrowings"
	operationPaymentByID    = "payment_by_id"
	operationPaymentBySess  = "payment_by_session"
	operationListPayments   = "list_payments"
	noRecordCount           = -1
)

// Store is the PostgreSQL backed rental store.
// It leverages a database adapter and supports customizable observability and table names.
type Store struct {
	db               adapters.DBAdapter
	booksTable       string
	borrowingsTable  string
	paymentsTable    string
	logger           rentalstore.Logger
	contextualLogger rentalstore.ContextualLogger
	metricsCollector rentalstore.MetricsCollector
	tracingCollector rentalstore.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, rentalstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store using a primary and a replica pgx Pool.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, rentalstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, rentalstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBAndReplica creates a new Store using a primary and a replica sql.DB.
func NewStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, rentalstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, rentalstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

// NewStoreFromSQLXAndReplica creates a new Store using a primary and a replica sqlx.DB.
func NewStoreFromSQLXAndReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, rentalstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapterWithReplica(db, replica), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:              db,
		booksTable:      defaultBooksTableName,
		borrowingsTable: defaultBorrowingsTableName,
		paymentsTable:   defaultPaymentsTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// RunInTx executes fn inside one read-committed transaction on the primary.
// The transaction is committed when fn returns nil and rolled back when fn returns an error or panics.
func (s *Store) RunInTx(ctx context.Context, fn rentalstore.TxFunc) (err error) {
	observer, ctx := s.startOperation(ctx, operationRunInTx)
	defer func() { observer.finish(err, noRecordCount) }()

	return s.withTx(ctx, func(dbTx adapters.DBTx) error {
		return fn(ctx, &pgTx{store: s, db: dbTx})
	})
}

// InsertBook stores a new book. It returns ErrDuplicateRecord if the id is taken.
func (s *Store) InsertBook(ctx context.Context, book rentalstore.Book) (err error) {
	observer, ctx := s.startOperation(ctx, operationInsertBook)
	defer func() { observer.finish(err, noRecordCount) }()

	sqlQuery, err := s.buildInsertBookQuery(book)
	if err != nil {
		return s.buildQueryFailed(ctx, err)
	}

	_, err = s.exec(ctx, s.db, sqlQuery)

	return err
}

// DeleteBook deletes a book together with all its borrowings and their payments in one transaction.
func (s *Store) DeleteBook(ctx context.Context, bookID uuid.UUID) (err error) {
	observer, ctx := s.startOperation(ctx, operationDeleteBook)
	defer func() { observer.finish(err, noRecordCount) }()

	statements, err := s.buildDeleteBookQueries(bookID)
	if err != nil {
		return s.buildQueryFailed(ctx, err)
	}

	return s.withTx(ctx, func(dbTx adapters.DBTx) error {
		var rowsAffected int64

		for _, statement := range statements {
			if rowsAffected, err = s.exec(ctx, dbTx, statement); err != nil {
				return err
			}
		}

		// the last statement deletes the book itself
		if rowsAffected == 0 {
			return notFound("book", bookID.String())
		}

		return nil
	})
}

// BookByID reads one book.
func (s *Store) BookByID(ctx context.Context, bookID uuid.UUID) (book rentalstore.Book, err error) {
	observer, ctx := s.startOperation(ctx, operationBookByID)
	defer func() { observer.finish(err, 1) }()

	return s.readBook(ctx, s.db, bookID, false)
}

// ListBooks reads all books ordered by title.
func (s *Store) ListBooks(ctx context.Context) (books []rentalstore.Book, err error) {
	observer, ctx := s.startOperation(ctx, operationListBooks)
	defer func() { observer.finish(err, len(books)) }()

	sqlQuery, err := s.buildListBooksQuery()
	if err != nil {
		return nil, s.buildQueryFailed(ctx, err)
	}

	return readAll(ctx, s, s.db, sqlQuery, scanBook)
}

// BorrowingByID reads one borrowing including its book title.
func (s *Store) BorrowingByID(ctx context.Context, borrowingID uuid.UUID) (borrowing rentalstore.Borrowing, err error) {
	observer, ctx := s.startOperation(ctx, operationBorrowingByID)
	defer func() { observer.finish(err, 1) }()

	return s.readBorrowing(ctx, s.db, borrowingID, false)
}

// ListBorrowings reads all borrowings matching the filter ordered by borrow date.
func (s *Store) ListBorrowings(
	ctx context.Context,
	filter rentalstore.BorrowingFilter,
) (borrowings []rentalstore.Borrowing, err error) {

	observer, ctx := s.startOperation(ctx, operationListBorrowings)
	defer func() { observer.finish(err, len(borrowings)) }()

	sqlQuery, err := s.buildListBorrowingsQuery(filter)
	if err != nil {
		return nil, s.buildQueryFailed(ctx, err)
	}

	return readAll(ctx, s, s.db, sqlQuery, scanBorrowing)
}

// PaymentByID reads one payment including the borrowing's user and book title.
func (s *Store) PaymentByID(ctx context.Context, paymentID uuid.UUID) (payment rentalstore.Payment, err error) {
	observer, ctx := s.startOperation(ctx, operationPaymentByID)
	defer func() { observer.finish(err, 1) }()

	sqlQuery, err := s.buildSelectPaymentQuery(paymentID)
	if err != nil {
		return rentalstore.Payment{}, s.buildQueryFailed(ctx, err)
	}

	return readOne(ctx, s, s.db, sqlQuery, scanPayment, "payment", paymentID.String())
}

// PaymentBySession reads the payment that owns a checkout session.
func (s *Store) PaymentBySession(ctx context.Context, sessionID string) (payment rentalstore.Payment, err error) {
	observer, ctx := s.startOperation(ctx, operationPaymentBySess)
	defer func() { observer.finish(err, 1) }()

	return s.readPaymentBySession(ctx, s.db, sessionID, false)
}

// ListPayments reads all payments matching the filter ordered by id.
func (s *Store) ListPayments(
	ctx context.Context,
	filter rentalstore.PaymentFilter,
) (payments []rentalstore.Payment, err error) {

	observer, ctx := s.startOperation(ctx, operationListPayments)
	defer func() { observer.finish(err, len(payments)) }()

	sqlQuery, err := s.buildListPaymentsQuery(filter)
	if err != nil {
		return nil, s.buildQueryFailed(ctx, err)
	}

	return readAll(ctx, s, s.db, sqlQuery, scanPayment)
}

/*** shared read helpers, used with the pool and inside transactions ***/

func (s *Store) readBook(ctx context.Context, q adapters.Querier, bookID uuid.UUID, forUpdate bool) (rentalstore.Book, error) {
	sqlQuery, err := s.buildSelectBookQuery(bookID, forUpdate)
	if err != nil {
		return rentalstore.Book{}, s.buildQueryFailed(ctx, err)
	}

	return readOne(ctx, s, q, sqlQuery, scanBook, "book", bookID.String())
}

func (s *Store) readBorrowing(
	ctx context.Context,
	q adapters.Querier,
	borrowingID uuid.UUID,
	forUpdate bool,
) (rentalstore.Borrowing, error) {

	sqlQuery, err := s.buildSelectBorrowingQuery(borrowingID, forUpdate)
	if err != nil {
		return rentalstore.Borrowing{}, s.buildQueryFailed(ctx, err)
	}

	return readOne(ctx, s, q, sqlQuery, scanBorrowing, "borrowing", borrowingID.String())
}

func (s *Store) readPaymentBySession(
	ctx context.Context,
	q adapters.Querier,
	sessionID string,
	forUpdate bool,
) (rentalstore.Payment, error) {

	if sessionID == "" {
		return rentalstore.Payment{}, notFound("payment with session", sessionID)
	}

	sqlQuery, err := s.buildSelectPaymentBySessionQuery(sessionID, forUpdate)
	if err != nil {
		return rentalstore.Payment{}, s.buildQueryFailed(ctx, err)
	}

	return readOne(ctx, s, q, sqlQuery, scanPayment, "payment with session", sessionID)
}

// readAll executes the query and converts every row with scan. The rows are closed before returning.
func readAll[T any](
	ctx context.Context,
	s *Store,
	q adapters.Querier,
	sqlQuery string,
	scan func(adapters.DBRows) (T, error),
) ([]T, error) {

	rows, err := s.query(ctx, q, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(ctx, rows)

	records := make([]T, 0)

	for rows.Next() {
		record, scanErr := scan(rows)
		if scanErr != nil {
			s.logError(ctx, logMsgReadRowFailed, scanErr)
			return nil, scanErr
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, errors.Join(rentalstore.ErrQueryingFailed, err)
	}

	return records, nil
}

func readOne[T any](
	ctx context.Context,
	s *Store,
	q adapters.Querier,
	sqlQuery string,
	scan func(adapters.DBRows) (T, error),
	kind string,
	id string,
) (T, error) {

	var empty T

	records, err := readAll(ctx, s, q, sqlQuery, scan)
	if err != nil {
		return empty, err
	}

	if len(records) == 0 {
		return empty, notFound(kind, id)
	}

	return records[0], nil
}

/*** statement execution ***/

func (s *Store) query(ctx context.Context, q adapters.Querier, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := q.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionQuery, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, errors.Join(rentalstore.ErrQueryingFailed, err)
	}

	return rows, nil
}

// exec executes a statement and returns the number of affected rows.
// Constraint violations are mapped to ErrDuplicateRecord and ErrNotFound.
func (s *Store) exec(ctx context.Context, q adapters.Querier, sqlQuery string) (int64, error) {
	start := time.Now()
	result, err := q.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionExec, time.Since(start))

	if err != nil {
		if mapped := mapConstraintViolation(err); mapped != nil {
			return 0, errors.Join(mapped, err)
		}

		s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)

		return 0, errors.Join(rentalstore.ErrExecutingStatementFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Join(rentalstore.ErrGettingRowsAffectedFailed, err)
	}

	return rowsAffected, nil
}

// withTx runs fn in a transaction on the primary and commits or rolls back depending on the outcome.
func (s *Store) withTx(ctx context.Context, fn func(dbTx adapters.DBTx) error) (err error) {
	dbTx, err := s.db.BeginTx(ctx)
	if err != nil {
		return errors.Join(rentalstore.ErrBeginningTxFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(ctx, dbTx)
			panic(p)
		}

		if err != nil {
			s.rollback(ctx, dbTx)
		}
	}()

	if err = fn(dbTx); err != nil {
		return err
	}

	if err = dbTx.Commit(ctx); err != nil {
		return errors.Join(rentalstore.ErrCommittingTxFailed, err)
	}

	return nil
}

func (s *Store) rollback(ctx context.Context, dbTx adapters.DBTx) {
	// a canceled context must not prevent the rollback
	if err := dbTx.Rollback(context.WithoutCancel(ctx)); err != nil {
		s.logWarn(ctx, logMsgRollbackFailed, err)
	}
}

func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, err)
	}
}

func (s *Store) buildQueryFailed(ctx context.Context, err error) error {
	s.logError(ctx, logMsgBuildQueryFailed, err)
	return errors.Join(rentalstore.ErrBuildingQueryFailed, err)
}

// mapConstraintViolation recognizes constraint violations reported by pgx and lib/pq.
func mapConstraintViolation(err error) error {
	var code string

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code = pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code = string(pqErr.Code)
	}

	switch code {
	case pgCodeUniqueViolation:
		return rentalstore.ErrDuplicateRecord
	case pgCodeForeignKeyViolation:
		return rentalstore.ErrNotFound
	default:
		return nil
	}
}
