package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

// Action names.
const (
	BooksList            = "books.list"
	BooksRetrieve        = "books.retrieve"
	BorrowingsCreate     = "borrowings.create"
	BorrowingsList       = "borrowings.list"
	BorrowingsRetrieve   = "borrowings.retrieve"
	BorrowingsReturn     = "borrowings.return"
	PaymentsList         = "payments.list"
	PaymentsRetrieve     = "payments.retrieve"
	PaymentsRenewSession = "payments.renew_session"
	PaymentsSuccess      = "payments.success"
	PaymentsCancel       = "payments.cancel"
	JobsExpireSessions   = "jobs.expire_sessions"
	JobsScanOverdue      = "jobs.scan_overdue"
)

const defaultBusinessRuleStatus = http.StatusForbidden

var (
	ErrUnknownAction             = fmt.Errorf("%w: action", core.ErrNotFound)
	ErrInvalidBusinessRuleStatus = errors.New("business rule status must be 400 or 403")
	ErrNilClock                  = errors.New("clock must not be nil")
)

// Store is everything the actions need from a store engine.
type Store interface {
	RunInTx(ctx context.Context, fn rentalstore.TxFunc) error
	ListBooks(ctx context.Context) ([]rentalstore.Book, error)
	BookByID(ctx context.Context, bookID uuid.UUID) (rentalstore.Book, error)
	ListBorrowings(ctx context.Context, filter rentalstore.BorrowingFilter) ([]rentalstore.Borrowing, error)
	BorrowingByID(ctx context.Context, borrowingID uuid.UUID) (rentalstore.Borrowing, error)
	ListPayments(ctx context.Context, filter rentalstore.PaymentFilter) ([]rentalstore.Payment, error)
	PaymentByID(ctx context.Context, paymentID uuid.UUID) (rentalstore.Payment, error)
	PaymentBySession(ctx context.Context, sessionID string) (rentalstore.Payment, error)
}

// CheckoutGateway opens hosted payment sessions and reports their state.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, charge core.Charge) (core.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (core.CheckoutSession, error)
}

// Notifier delivers side-channel messages, it never fails.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// HandleFunc runs one action for an authorized caller and returns the value to encode.
type HandleFunc func(ctx context.Context, caller core.Caller, input []byte) (any, error)

// Action is one entry of the table.
type Action struct {
	Name   string
	Auth   AuthLevel
	Handle HandleFunc
}

// Table dispatches actions by name.
type Table struct {
	actions            map[string]Action
	businessRuleStatus int
	clock              func() time.Time
	metricsCollector   shell.MetricsCollector
	tracingCollector   shell.TracingCollector
	contextualLogger   shell.ContextualLogger
	logger             shell.Logger
}

// Option defines a functional option for configuring Table.
type Option func(*Table) error

// WithMetrics sets the metrics collector for all handlers of the Table.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(t *Table) error {
		t.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for all handlers of the Table.
func WithTracing(collector shell.TracingCollector) Option {
	return func(t *Table) error {
		t.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for all handlers of the Table.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(t *Table) error {
		t.contextualLogger = logger
		return nil
	}
}

// WithLogger sets the basic logger for all handlers of the Table.
func WithLogger(logger shell.Logger) Option {
	return func(t *Table) error {
		t.logger = logger
		return nil
	}
}

// WithClock replaces time.Now as the source of "today".
func WithClock(clock func() time.Time) Option {
	return func(t *Table) error {
		if clock == nil {
			return ErrNilClock
		}

		t.clock = clock

		return nil
	}
}

// WithBusinessRuleStatus sets the status reported for business rule violations, 400 or 403.
func WithBusinessRuleStatus(status int) Option {
	return func(t *Table) error {
		if status != http.StatusBadRequest && status != http.StatusForbidden {
			return ErrInvalidBusinessRuleStatus
		}

		t.businessRuleStatus = status

		return nil
	}
}

// NewTable builds all handlers, wraps them with observability and registers the actions.
func NewTable(store Store, gateway CheckoutGateway, notifier Notifier, options ...Option) (*Table, error) {
	t := &Table{
		businessRuleStatus: defaultBusinessRuleStatus,
		clock:              time.Now,
	}

	for _, option := range options {
		if err := option(t); err != nil {
			return nil, err
		}
	}

	bundle, err := newHandlerBundle(t, store, gateway, notifier)
	if err != nil {
		return nil, err
	}

	t.actions = make(map[string]Action)
	for _, action := range bundle.actions() {
		t.actions[action.Name] = action
	}

	return t, nil
}

// Dispatch authorizes the caller, runs the action and returns its JSON output.
func (t *Table) Dispatch(ctx context.Context, name string, caller core.Caller, input []byte) ([]byte, error) {
	action, found := t.actions[name]
	if !found {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, name)
	}

	if err := authorize(action.Auth, caller); err != nil {
		return nil, err
	}

	output, err := action.Handle(ctx, caller, input)
	if err != nil {
		return nil, err
	}

	return json.Marshal(output)
}

// StatusFor maps an error of Dispatch to a status code using the configured business rule status.
func (t *Table) StatusFor(err error) int {
	return statusFor(err, t.businessRuleStatus)
}

// Names returns the sorted action names.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.actions))
	for name := range t.actions {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// AuthLevelOf returns the authorization level of an action.
func (t *Table) AuthLevelOf(name string) (AuthLevel, bool) {
	action, found := t.actions[name]
	return action.Auth, found
}
