package postgresengine

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

func (s *Store) dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

/*** books ***/

func (s *Store) selectBooks() *goqu.SelectDataset {
	bk := goqu.T(s.booksTable)

	return s.dialect().From(bk).Select(
		bk.Col(colID).Cast(castText),
		bk.Col(colTitle),
		bk.Col(colAuthor),
		bk.Col(colCover),
		bk.Col(colInventory),
		bk.Col(colDailyFee).Cast(castText),
	)
}

func (s *Store) buildSelectBookQuery(bookID uuid.UUID, forUpdate bool) (string, error) {
	bk := goqu.T(s.booksTable)
	ds := s.selectBooks().Where(bk.Col(colID).Eq(bookID.String()))

	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	return toSQL(ds)
}

func (s *Store) buildListBooksQuery() (string, error) {
	bk := goqu.T(s.booksTable)

	return toSQL(s.selectBooks().Order(bk.Col(colTitle).Asc(), bk.Col(colID).Asc()))
}

func (s *Store) buildInsertBookQuery(book rentalstore.Book) (string, error) {
	sqlQuery, _, err := s.dialect().Insert(s.booksTable).Rows(goqu.Record{
		colID:        book.ID.String(),
		colTitle:     book.Title,
		colAuthor:    book.Author,
		colCover:     book.Cover,
		colInventory: book.Inventory,
		colDailyFee:  book.DailyFee.StringFixed(2),
	}).ToSQL()

	return sqlQuery, err
}

func (s *Store) buildSetInventoryQuery(bookID uuid.UUID, inventory int) (string, error) {
	sqlQuery, _, err := s.dialect().Update(s.booksTable).
		Set(goqu.Record{colInventory: inventory}).
		Where(goqu.C(colID).Eq(bookID.String())).
		ToSQL()

	return sqlQuery, err
}

// buildDeleteBookQueries returns the statements that delete a book together with its
// borrowings and their payments, in execution order.
func (s *Store) buildDeleteBookQueries(bookID uuid.UUID) ([]string, error) {
	borrowingsOfBook := s.dialect().From(s.borrowingsTable).
		Select(goqu.C(colID)).
		Where(goqu.C(colBookID).Eq(bookID.String()))

	deletePayments, _, err := s.dialect().Delete(s.paymentsTable).
		Where(goqu.C(colBorrowingID).In(borrowingsOfBook)).
		ToSQL()
	if err != nil {
		return nil, err
	}

	deleteBorrowings, _, err := s.dialect().Delete(s.borrowingsTable).
		Where(goqu.C(colBookID).Eq(bookID.String())).
		ToSQL()
	if err != nil {
		return nil, err
	}

	deleteBook, _, err := s.dialect().Delete(s.booksTable).
		Where(goqu.C(colID).Eq(bookID.String())).
		ToSQL()
	if err != nil {
		return nil, err
	}

	return []string{deletePayments, deleteBorrowings, deleteBook}, nil
}

/*** borrowings ***/

func (s *Store) selectBorrowings() *goqu.SelectDataset {
	br := goqu.T(s.borrowingsTable)
	bk := goqu.T(s.booksTable)

	return s.dialect().From(br).
		Join(bk, goqu.On(bk.Col(colID).Eq(br.Col(colBookID)))).
		Select(
			br.Col(colID).Cast(castText),
			br.Col(colBorrowDate).Cast(castText),
			br.Col(colExpectedReturnDate).Cast(castText),
			br.Col(colActualReturnDate).Cast(castText),
			br.Col(colBookID).Cast(castText),
			br.Col(colUserID).Cast(castText),
			bk.Col(colTitle),
		)
}

func (s *Store) buildSelectBorrowingQuery(borrowingID uuid.UUID, forUpdate bool) (string, error) {
	br := goqu.T(s.borrowingsTable)
	ds := s.selectBorrowings().Where(br.Col(colID).Eq(borrowingID.String()))

	if forUpdate {
		ds = ds.ForUpdate(exp.Wait, br)
	}

	return toSQL(ds)
}

func (s *Store) buildListBorrowingsQuery(filter rentalstore.BorrowingFilter) (string, error) {
	br := goqu.T(s.borrowingsTable)
	ds := s.selectBorrowings()

	if userIDs := filter.UserIDs(); len(userIDs) > 0 {
		ds = ds.Where(br.Col(colUserID).In(idStrings(userIDs)))
	}

	switch filter.ActiveState() {
	case rentalstore.OnlyActiveBorrowings:
		ds = ds.Where(br.Col(colActualReturnDate).IsNull())
	case rentalstore.OnlyReturnedBorrowings:
		ds = ds.Where(br.Col(colActualReturnDate).IsNotNull())
	case rentalstore.AnyActiveState:
	}

	if dueBy := filter.DueBy(); !dueBy.IsZero() {
		ds = ds.Where(br.Col(colExpectedReturnDate).Lte(formatDate(dueBy)))
	}

	return toSQL(ds.Order(br.Col(colBorrowDate).Asc(), br.Col(colID).Asc()))
}

func (s *Store) buildInsertBorrowingQuery(borrowing rentalstore.Borrowing) (string, error) {
	var actualReturnDate any
	if borrowing.ActualReturnDate != nil {
		actualReturnDate = formatDate(*borrowing.ActualReturnDate)
	}

	sqlQuery, _, err := s.dialect().Insert(s.borrowingsTable).Rows(goqu.Record{
		colID:                 borrowing.ID.String(),
		colBorrowDate:         formatDate(borrowing.BorrowDate),
		colExpectedReturnDate: formatDate(borrowing.ExpectedReturnDate),
		colActualReturnDate:   actualReturnDate,
		colBookID:             borrowing.BookID.String(),
		colUserID:             borrowing.UserID.String(),
	}).ToSQL()

	return sqlQuery, err
}

// buildSetActualReturnDateQuery only matches a borrowing that is still active,
// so zero affected rows after a successful lock means it was returned concurrently.
func (s *Store) buildSetActualReturnDateQuery(borrowingID uuid.UUID, returnDate time.Time) (string, error) {
	sqlQuery, _, err := s.dialect().Update(s.borrowingsTable).
		Set(goqu.Record{colActualReturnDate: formatDate(returnDate)}).
		Where(
			goqu.C(colID).Eq(borrowingID.String()),
			goqu.C(colActualReturnDate).IsNull(),
		).
		ToSQL()

	return sqlQuery, err
}

func (s *Store) buildAdvisoryUserLockQuery(userID uuid.UUID) (string, error) {
	return toSQL(s.dialect().Select(
		goqu.Func(fnAdvisoryXactLock, goqu.Func(fnHashText, userID.String())),
	))
}

/*** payments ***/

func (s *Store) selectPayments() *goqu.SelectDataset {
	p := goqu.T(s.paymentsTable)
	br := goqu.T(s.borrowingsTable)
	bk := goqu.T(s.booksTable)

	return s.dialect().From(p).
		Join(br, goqu.On(br.Col(colID).Eq(p.Col(colBorrowingID)))).
		Join(bk, goqu.On(bk.Col(colID).Eq(br.Col(colBookID)))).
		Select(
			p.Col(colID).Cast(castText),
			p.Col(colStatus),
			p.Col(colType),
			p.Col(colBorrowingID).Cast(castText),
			p.Col(colSessionID),
			p.Col(colSessionURL),
			p.Col(colAmount).Cast(castText),
			br.Col(colUserID).Cast(castText),
			bk.Col(colTitle),
		)
}

func (s *Store) buildSelectPaymentQuery(paymentID uuid.UUID) (string, error) {
	p := goqu.T(s.paymentsTable)

	return toSQL(s.selectPayments().Where(p.Col(colID).Eq(paymentID.String())))
}

func (s *Store) buildSelectPaymentBySessionQuery(sessionID string, forUpdate bool) (string, error) {
	p := goqu.T(s.paymentsTable)
	ds := s.selectPayments().Where(p.Col(colSessionID).Eq(sessionID))

	if forUpdate {
		ds = ds.ForUpdate(exp.Wait, p)
	}

	return toSQL(ds.Order(p.Col(colID).Desc()).Limit(1))
}

// buildLockPaymentOfBorrowingQuery locks the latest payment of the given type for a borrowing.
func (s *Store) buildLockPaymentOfBorrowingQuery(borrowingID uuid.UUID, paymentType string) (string, error) {
	p := goqu.T(s.paymentsTable)
	ds := s.selectPayments().
		Where(
			p.Col(colBorrowingID).Eq(borrowingID.String()),
			p.Col(colType).Eq(paymentType),
		).
		Order(p.Col(colID).Desc()).
		Limit(1).
		ForUpdate(exp.Wait, p)

	return toSQL(ds)
}

func (s *Store) buildListPaymentsQuery(filter rentalstore.PaymentFilter) (string, error) {
	p := goqu.T(s.paymentsTable)
	br := goqu.T(s.borrowingsTable)
	ds := s.selectPayments()

	if userIDs := filter.UserIDs(); len(userIDs) > 0 {
		ds = ds.Where(br.Col(colUserID).In(idStrings(userIDs)))
	}

	if borrowingIDs := filter.BorrowingIDs(); len(borrowingIDs) > 0 {
		ds = ds.Where(p.Col(colBorrowingID).In(idStrings(borrowingIDs)))
	}

	if statuses := filter.Statuses(); len(statuses) > 0 {
		ds = ds.Where(p.Col(colStatus).In(statuses))
	}

	return toSQL(ds.Order(p.Col(colID).Asc()))
}

func (s *Store) buildCountPendingPaymentsQuery(userID uuid.UUID) (string, error) {
	p := goqu.T(s.paymentsTable)
	br := goqu.T(s.borrowingsTable)

	return toSQL(s.dialect().From(p).
		Join(br, goqu.On(br.Col(colID).Eq(p.Col(colBorrowingID)))).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			br.Col(colUserID).Eq(userID.String()),
			p.Col(colStatus).Eq(rentalstore.PaymentStatusPending),
		))
}

func (s *Store) buildInsertPaymentQuery(payment rentalstore.Payment) (string, error) {
	sqlQuery, _, err := s.dialect().Insert(s.paymentsTable).Rows(goqu.Record{
		colID:          payment.ID.String(),
		colStatus:      payment.Status,
		colType:        payment.Type,
		colBorrowingID: payment.BorrowingID.String(),
		colSessionID:   payment.SessionID,
		colSessionURL:  payment.SessionURL,
		colAmount:      payment.Amount.StringFixed(2),
	}).ToSQL()

	return sqlQuery, err
}

// buildUpdatePaymentQuery is guarded by the expected status, zero affected rows means a conflict.
func (s *Store) buildUpdatePaymentQuery(payment rentalstore.Payment, expectedStatus string) (string, error) {
	sqlQuery, _, err := s.dialect().Update(s.paymentsTable).
		Set(goqu.Record{
			colStatus:     payment.Status,
			colSessionID:  payment.SessionID,
			colSessionURL: payment.SessionURL,
		}).
		Where(
			goqu.C(colID).Eq(payment.ID.String()),
			goqu.C(colStatus).Eq(expectedStatus),
		).
		ToSQL()

	return sqlQuery, err
}

/*** helpers ***/

func toSQL(ds *goqu.SelectDataset) (string, error) {
	sqlQuery, _, err := ds.ToSQL()
	return sqlQuery, err
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}

	return out
}

func formatDate(t time.Time) string {
	return t.Format(rentalstore.DateLayout)
}
