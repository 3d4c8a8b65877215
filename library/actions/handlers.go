package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/features/command/borrowbook"
	"github.com/AntonStoeckl/book-rental-go/library/features/command/confirmpayment"
	"github.com/AntonStoeckl/book-rental-go/library/features/command/expirepaymentsessions"
	"github.com/AntonStoeckl/book-rental-go/library/features/command/reissuepaymentsession"
	"github.com/AntonStoeckl/book-rental-go/library/features/command/returnborrowing"
	"github.com/AntonStoeckl/book-rental-go/library/features/query/books"
	"github.com/AntonStoeckl/book-rental-go/library/features/query/borrowings"
	"github.com/AntonStoeckl/book-rental-go/library/features/query/payments"
	"github.com/AntonStoeckl/book-rental-go/library/features/report/overdueborrowings"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/observable"
)

// handlerBundle holds the observable handlers behind the actions.
type handlerBundle struct {
	clock func() time.Time

	// Command handlers.
	borrowBook      shell.CoreCommandHandler[borrowbook.Command, borrowbook.Result]
	returnBorrowing shell.CoreCommandHandler[returnborrowing.Command, returnborrowing.Result]
	reissueSession  shell.CoreCommandHandler[reissuepaymentsession.Command, reissuepaymentsession.Result]
	confirmPayment  shell.CoreCommandHandler[confirmpayment.Command, confirmpayment.Result]
	expireSessions  shell.CoreCommandHandler[expirepaymentsessions.Command, expirepaymentsessions.Result]
	scanOverdue     shell.CoreCommandHandler[overdueborrowings.Command, overdueborrowings.Result]

	// Query handlers.
	listBooks         shell.CoreQueryHandler[books.ListQuery, books.Books]
	retrieveBook      shell.CoreQueryHandler[books.RetrieveQuery, books.BookView]
	listBorrowings    shell.CoreQueryHandler[borrowings.ListQuery, borrowings.Borrowings]
	retrieveBorrowing shell.CoreQueryHandler[borrowings.RetrieveQuery, borrowings.BorrowingDetail]
	listPayments      shell.CoreQueryHandler[payments.ListQuery, payments.Payments]
	retrievePayment   shell.CoreQueryHandler[payments.RetrieveQuery, payments.PaymentView]
	cancelPayment     shell.CoreQueryHandler[payments.CancelQuery, payments.CallbackResult]
}

func newHandlerBundle(t *Table, store Store, gateway CheckoutGateway, notifier Notifier) (*handlerBundle, error) {
	var err error
	b := &handlerBundle{clock: t.clock}

	if b.borrowBook, err = wrapCommand[borrowbook.Command, borrowbook.Result](
		t,
		borrowbook.NewCommandHandler(store, gateway, notifier),
	); err != nil {
		return nil, fmt.Errorf("failed to create BorrowBook handler: %w", err)
	}

	if b.returnBorrowing, err = wrapCommand[returnborrowing.Command, returnborrowing.Result](
		t,
		returnborrowing.NewCommandHandler(store, gateway),
	); err != nil {
		return nil, fmt.Errorf("failed to create ReturnBorrowing handler: %w", err)
	}

	if b.reissueSession, err = wrapCommand[reissuepaymentsession.Command, reissuepaymentsession.Result](
		t,
		reissuepaymentsession.NewCommandHandler(store, gateway),
	); err != nil {
		return nil, fmt.Errorf("failed to create ReissuePaymentSession handler: %w", err)
	}

	if b.confirmPayment, err = wrapCommand[confirmpayment.Command, confirmpayment.Result](
		t,
		confirmpayment.NewCommandHandler(store, gateway, notifier),
	); err != nil {
		return nil, fmt.Errorf("failed to create ConfirmPayment handler: %w", err)
	}

	if b.expireSessions, err = wrapCommand[expirepaymentsessions.Command, expirepaymentsessions.Result](
		t,
		expirepaymentsessions.NewCommandHandler(store, gateway),
	); err != nil {
		return nil, fmt.Errorf("failed to create ExpirePaymentSessions handler: %w", err)
	}

	if b.scanOverdue, err = wrapCommand[overdueborrowings.Command, overdueborrowings.Result](
		t,
		overdueborrowings.NewCommandHandler(store, notifier),
	); err != nil {
		return nil, fmt.Errorf("failed to create ScanOverdueBorrowings handler: %w", err)
	}

	if b.listBooks, err = wrapQuery[books.ListQuery, books.Books](
		t,
		books.NewListQueryHandler(store),
	); err != nil {
		return nil, fmt.Errorf("failed to create ListBooks handler: %w", err)
	}

	if b.retrieveBook, err = wrapQuery[books.RetrieveQuery, books.BookView](
		t,
		books.NewRetrieveQueryHandler(store),
	); err != nil {
		return nil, fmt.Errorf("failed to create RetrieveBook handler: %w", err)
	}

	if b.listBorrowings, err = wrapQuery[borrowings.ListQuery, borrowings.Borrowings](
		t,
		borrowings.NewListQueryHandler(store),
	); err != nil {
		return nil, fmt.Errorf("failed to create ListBorrowings handler: %w", err)
	}

	if b.retrieveBorrowing, err = wrapQuery[borrowings.RetrieveQuery, borrowings.BorrowingDetail](
		t,
		borrowings.NewRetrieveQueryHandler(store),
	); err != nil {
		return nil, fmt.Errorf("failed to create RetrieveBorrowing handler: %w", err)
	}

	if b.listPayments, err = wrapQuery[payments.ListQuery, payments.Payments](
		t,
		payments.NewListQueryHandler(store),
	); err != nil {
		return nil, fmt.Errorf("failed to create ListPayments handler: %w", err)
	}

	if b.retrievePayment, err = wrapQuery[payments.RetrieveQuery, payments.PaymentView](
		t,
		payments.NewRetrieveQueryHandler(store),
	); err != nil {
		return nil, fmt.Errorf("failed to create RetrievePayment handler: %w", err)
	}

	if b.cancelPayment, err = wrapQuery[payments.CancelQuery, payments.CallbackResult](
		t,
		payments.NewCancelQueryHandler(store),
	); err != nil {
		return nil, fmt.Errorf("failed to create CancelPayment handler: %w", err)
	}

	return b, nil
}

func wrapCommand[C shell.Command, R shell.CommandResult](
	t *Table,
	coreHandler shell.CoreCommandHandler[C, R],
) (shell.CoreCommandHandler[C, R], error) {

	return observable.NewCommandWrapper[C, R](
		coreHandler,
		observable.WithCommandMetrics[C, R](t.metricsCollector),
		observable.WithCommandTracing[C, R](t.tracingCollector),
		observable.WithCommandContextualLogging[C, R](t.contextualLogger),
		observable.WithCommandLogging[C, R](t.logger),
	)
}

func wrapQuery[Q shell.Query, R any](
	t *Table,
	coreHandler shell.CoreQueryHandler[Q, R],
) (shell.CoreQueryHandler[Q, R], error) {

	return observable.NewQueryWrapper[Q, R](
		coreHandler,
		observable.WithQueryMetrics[Q, R](t.metricsCollector),
		observable.WithQueryTracing[Q, R](t.tracingCollector),
		observable.WithQueryContextualLogging[Q, R](t.contextualLogger),
		observable.WithQueryLogging[Q, R](t.logger),
	)
}

func (b *handlerBundle) actions() []Action {
	return []Action{
		{Name: BooksList, Auth: Anonymous, Handle: b.handleBooksList},
		{Name: BooksRetrieve, Auth: Anonymous, Handle: b.handleBooksRetrieve},
		{Name: BorrowingsCreate, Auth: Authenticated, Handle: b.handleBorrowingsCreate},
		{Name: BorrowingsList, Auth: Authenticated, Handle: b.handleBorrowingsList},
		{Name: BorrowingsRetrieve, Auth: Authenticated, Handle: b.handleBorrowingsRetrieve},
		{Name: BorrowingsReturn, Auth: Authenticated, Handle: b.handleBorrowingsReturn},
		{Name: PaymentsList, Auth: Authenticated, Handle: b.handlePaymentsList},
		{Name: PaymentsRetrieve, Auth: Authenticated, Handle: b.handlePaymentsRetrieve},
		{Name: PaymentsRenewSession, Auth: Authenticated, Handle: b.handlePaymentsRenewSession},
		{Name: PaymentsSuccess, Auth: Authenticated, Handle: b.handlePaymentsSuccess},
		{Name: PaymentsCancel, Auth: Authenticated, Handle: b.handlePaymentsCancel},
		{Name: JobsExpireSessions, Auth: Privileged, Handle: b.handleJobsExpireSessions},
		{Name: JobsScanOverdue, Auth: Privileged, Handle: b.handleJobsScanOverdue},
	}
}

/*** books ***/

func (b *handlerBundle) handleBooksList(ctx context.Context, _ core.Caller, _ []byte) (any, error) {
	return b.listBooks.Handle(ctx, books.BuildListQuery())
}

func (b *handlerBundle) handleBooksRetrieve(ctx context.Context, _ core.Caller, input []byte) (any, error) {
	in, err := decode[idInput](input)
	if err != nil {
		return nil, err
	}

	bookID, err := parseID("id", in.ID)
	if err != nil {
		return nil, err
	}

	return b.retrieveBook.Handle(ctx, books.BuildRetrieveQuery(bookID))
}

/*** borrowings ***/

func (b *handlerBundle) handleBorrowingsCreate(ctx context.Context, caller core.Caller, input []byte) (any, error) {
	in, err := decode[createBorrowingInput](input)
	if err != nil {
		return nil, err
	}

	bookID, err := parseID("book", in.Book)
	if err != nil {
		return nil, err
	}

	expectedReturnDate, err := core.ParseDate(in.ExpectedReturnDate)
	if err != nil {
		return nil, fmt.Errorf("%w: expected_return_date must be YYYY-MM-DD: %w", core.ErrMalformedInput, err)
	}

	// a client supplied id makes retries of the same request idempotent
	var borrowingID uuid.UUID
	if in.ID != "" {
		if borrowingID, err = parseID("id", in.ID); err != nil {
			return nil, err
		}
	} else if borrowingID, err = uuid.NewV7(); err != nil {
		return nil, err
	}

	command := borrowbook.BuildCommand(borrowingID, caller.UserID, bookID, expectedReturnDate, b.clock())

	result, err := b.borrowBook.Handle(ctx, command)
	if err != nil {
		return nil, err
	}

	return borrowingCreatedOutput{
		BorrowingView: borrowings.ToBorrowingView(result.Borrowing),
		Payment:       payments.ToPaymentView(result.Payment),
	}, nil
}

func (b *handlerBundle) handleBorrowingsList(ctx context.Context, caller core.Caller, input []byte) (any, error) {
	in, err := decode[listBorrowingsInput](input)
	if err != nil {
		return nil, err
	}

	userIDs, err := parseIDList("user", in.User)
	if err != nil {
		return nil, err
	}

	isActive, err := parseOptionalBool("is_active", in.IsActive)
	if err != nil {
		return nil, err
	}

	return b.listBorrowings.Handle(ctx, borrowings.BuildListQuery(caller, userIDs, isActive))
}

func (b *handlerBundle) handleBorrowingsRetrieve(ctx context.Context, caller core.Caller, input []byte) (any, error) {
	borrowingID, err := decodeID(input)
	if err != nil {
		return nil, err
	}

	return b.retrieveBorrowing.Handle(ctx, borrowings.BuildRetrieveQuery(caller, borrowingID))
}

func (b *handlerBundle) handleBorrowingsReturn(ctx context.Context, caller core.Caller, input []byte) (any, error) {
	borrowingID, err := decodeID(input)
	if err != nil {
		return nil, err
	}

	result, err := b.returnBorrowing.Handle(ctx, returnborrowing.BuildCommand(borrowingID, caller, b.clock()))
	if err != nil {
		return nil, err
	}

	if result.Fine != nil {
		return overdueReturnOutput{Message: result.Message(), PaymentURL: result.Fine.SessionURL}, nil
	}

	return statusOutput{Status: result.Message()}, nil
}

/*** payments ***/

func (b *handlerBundle) handlePaymentsList(ctx context.Context, caller core.Caller, _ []byte) (any, error) {
	return b.listPayments.Handle(ctx, payments.BuildListQuery(caller))
}

func (b *handlerBundle) handlePaymentsRetrieve(ctx context.Context, caller core.Caller, input []byte) (any, error) {
	paymentID, err := decodeID(input)
	if err != nil {
		return nil, err
	}

	return b.retrievePayment.Handle(ctx, payments.BuildRetrieveQuery(caller, paymentID))
}

// handlePaymentsRenewSession takes the id of the borrowing whose PAYMENT-type session is renewed.
func (b *handlerBundle) handlePaymentsRenewSession(ctx context.Context, caller core.Caller, input []byte) (any, error) {
	borrowingID, err := decodeID(input)
	if err != nil {
		return nil, err
	}

	result, err := b.reissueSession.Handle(ctx, reissuepaymentsession.BuildCommand(borrowingID, caller))
	if err != nil {
		return nil, err
	}

	return statusOutput{Status: result.Message()}, nil
}

func (b *handlerBundle) handlePaymentsSuccess(ctx context.Context, _ core.Caller, input []byte) (any, error) {
	in, err := decode[sessionInput](input)
	if err != nil {
		return nil, err
	}

	result, err := b.confirmPayment.Handle(ctx, confirmpayment.BuildCommand(in.SessionID))
	if err != nil {
		return nil, err
	}

	return payments.CallbackResult{
		Payment: payments.ToPaymentView(result.Payment),
		Message: core.MsgPaymentConfirmed,
	}, nil
}

func (b *handlerBundle) handlePaymentsCancel(ctx context.Context, _ core.Caller, input []byte) (any, error) {
	in, err := decode[sessionInput](input)
	if err != nil {
		return nil, err
	}

	return b.cancelPayment.Handle(ctx, payments.BuildCancelQuery(in.SessionID))
}

/*** jobs ***/

func (b *handlerBundle) handleJobsExpireSessions(ctx context.Context, _ core.Caller, _ []byte) (any, error) {
	result, err := b.expireSessions.Handle(ctx, expirepaymentsessions.BuildCommand())
	if err != nil {
		return nil, err
	}

	return expireSessionsOutput{
		Checked: result.Checked,
		Expired: result.Expired,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	}, nil
}

func (b *handlerBundle) handleJobsScanOverdue(ctx context.Context, _ core.Caller, _ []byte) (any, error) {
	result, err := b.scanOverdue.Handle(ctx, overdueborrowings.BuildCommand(b.clock()))
	if err != nil {
		return nil, err
	}

	return scanOverdueOutput{Overdue: result.Overdue}, nil
}

func decodeID(input []byte) (uuid.UUID, error) {
	in, err := decode[idInput](input)
	if err != nil {
		return uuid.Nil, err
	}

	return parseID("id", in.ID)
}
