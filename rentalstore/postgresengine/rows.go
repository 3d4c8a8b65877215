package postgresengine

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/postgresengine/internal/adapters"
)

// All uuid, date and numeric columns are selected as text, so every adapter scans the same Go types.

type bookRow struct {
	id        string
	title     string
	author    string
	cover     string
	inventory int64
	dailyFee  string
}

func scanBook(rows adapters.DBRows) (rentalstore.Book, error) {
	var row bookRow

	if err := rows.Scan(&row.id, &row.title, &row.author, &row.cover, &row.inventory, &row.dailyFee); err != nil {
		return rentalstore.Book{}, errors.Join(rentalstore.ErrScanningDBRowFailed, err)
	}

	id, idErr := uuid.Parse(row.id)
	dailyFee, feeErr := decimal.NewFromString(row.dailyFee)

	if err := errors.Join(idErr, feeErr); err != nil {
		return rentalstore.Book{}, errors.Join(rentalstore.ErrConvertingRowFailed, err)
	}

	return rentalstore.Book{
		ID:        id,
		Title:     row.title,
		Author:    row.author,
		Cover:     row.cover,
		Inventory: int(row.inventory),
		DailyFee:  dailyFee,
	}, nil
}

type borrowingRow struct {
	id                 string
	borrowDate         string
	expectedReturnDate string
	actualReturnDate   sql.NullString
	bookID             string
	userID             string
	bookTitle          string
}

func scanBorrowing(rows adapters.DBRows) (rentalstore.Borrowing, error) {
	var row borrowingRow

	err := rows.Scan(
		&row.id,
		&row.borrowDate,
		&row.expectedReturnDate,
		&row.actualReturnDate,
		&row.bookID,
		&row.userID,
		&row.bookTitle,
	)
	if err != nil {
		return rentalstore.Borrowing{}, errors.Join(rentalstore.ErrScanningDBRowFailed, err)
	}

	id, idErr := uuid.Parse(row.id)
	bookID, bookErr := uuid.Parse(row.bookID)
	userID, userErr := uuid.Parse(row.userID)
	borrowDate, borrowErr := parseDate(row.borrowDate)
	expectedReturnDate, expectedErr := parseDate(row.expectedReturnDate)

	var actualReturnDate *time.Time
	var actualErr error

	if row.actualReturnDate.Valid {
		var returned time.Time
		returned, actualErr = parseDate(row.actualReturnDate.String)
		actualReturnDate = &returned
	}

	if err := errors.Join(idErr, bookErr, userErr, borrowErr, expectedErr, actualErr); err != nil {
		return rentalstore.Borrowing{}, errors.Join(rentalstore.ErrConvertingRowFailed, err)
	}

	return rentalstore.Borrowing{
		ID:                 id,
		BorrowDate:         borrowDate,
		ExpectedReturnDate: expectedReturnDate,
		ActualReturnDate:   actualReturnDate,
		BookID:             bookID,
		UserID:             userID,
		BookTitle:          row.bookTitle,
	}, nil
}

type paymentRow struct {
	id          string
	status      string
	paymentType string
	borrowingID string
	sessionID   string
	sessionURL  string
	amount      string
	userID      string
	bookTitle   string
}

func scanPayment(rows adapters.DBRows) (rentalstore.Payment, error) {
	var row paymentRow

	err := rows.Scan(
		&row.id,
		&row.status,
		&row.paymentType,
		&row.borrowingID,
		&row.sessionID,
		&row.sessionURL,
		&row.amount,
		&row.userID,
		&row.bookTitle,
	)
	if err != nil {
		return rentalstore.Payment{}, errors.Join(rentalstore.ErrScanningDBRowFailed, err)
	}

	id, idErr := uuid.Parse(row.id)
	borrowingID, borrowingErr := uuid.Parse(row.borrowingID)
	userID, userErr := uuid.Parse(row.userID)
	amount, amountErr := decimal.NewFromString(row.amount)

	if err := errors.Join(idErr, borrowingErr, userErr, amountErr); err != nil {
		return rentalstore.Payment{}, errors.Join(rentalstore.ErrConvertingRowFailed, err)
	}

	return rentalstore.Payment{
		ID:          id,
		Status:      row.status,
		Type:        row.paymentType,
		BorrowingID: borrowingID,
		SessionID:   row.sessionID,
		SessionURL:  row.sessionURL,
		Amount:      amount,
		UserID:      userID,
		BookTitle:   row.bookTitle,
	}, nil
}

func scanCount(rows adapters.DBRows) (int64, error) {
	var count int64

	if err := rows.Scan(&count); err != nil {
		return 0, errors.Join(rentalstore.ErrScanningDBRowFailed, err)
	}

	return count, nil
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(rentalstore.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", value, err)
	}

	return date, nil
}

func notFound(kind, id string) error {
	return errors.Join(rentalstore.ErrNotFound, fmt.Errorf("%s %s", kind, id))
}
