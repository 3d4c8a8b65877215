package actions_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/actions"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/checkout"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/memengine"
	"github.com/AntonStoeckl/book-rental-go/testutil/fixtures"
	"github.com/AntonStoeckl/book-rental-go/testutil/spies"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type testEnv struct {
	store    *memengine.Store
	gateway  *checkout.MemoryGateway
	notifier *spies.NotifierSpy
	metrics  *spies.MetricsCollectorSpy
	table    *actions.Table
	now      *time.Time
	user     core.Caller
	book     rentalstore.Book
}

func setupTestEnvironment(t *testing.T, options ...actions.Option) testEnv {
	t.Helper()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	env := testEnv{
		store:    fixtures.NewMemStore(t),
		gateway:  checkout.NewMemoryGateway(),
		notifier: spies.NewNotifierSpy(),
		metrics:  spies.NewMetricsCollectorSpy(),
		now:      &now,
		user:     core.Caller{UserID: uuid.New()},
		book:     fixtures.Book("Dune", 1, "25.00"),
	}
	fixtures.SeedBooks(t, env.store, env.book)

	options = append([]actions.Option{
		actions.WithClock(func() time.Time { return *env.now }),
		actions.WithMetrics(env.metrics),
	}, options...)

	table, err := actions.NewTable(env.store, env.gateway, env.notifier, options...)
	require.NoError(t, err)
	env.table = table

	return env
}

func (env testEnv) dispatch(t *testing.T, name string, caller core.Caller, input string) map[string]any {
	t.Helper()

	output, err := env.table.Dispatch(context.Background(), name, caller, []byte(input))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(output, &decoded))

	return decoded
}

func (env testEnv) borrow(t *testing.T, days int) map[string]any {
	t.Helper()

	input := fmt.Sprintf(`{"book":%q,"expected_return_date":%q}`,
		env.book.ID, env.now.AddDate(0, 0, days).Format(core.DateLayout))

	return env.dispatch(t, actions.BorrowingsCreate, env.user, input)
}

func Test_Table_Dispatch_RentalScenario(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)

	// act - borrow for 7 days
	created := env.borrow(t, 7)

	// assert
	assert.Equal(t, "2025-03-10", created["borrow_date"])
	assert.Equal(t, true, created["is_active"])
	payment := created["payment"].(map[string]any)
	assert.Equal(t, "175.00", payment["money_to_pay"])
	assert.Equal(t, "PENDING", payment["status"])

	books := env.dispatch(t, actions.BooksList, core.Caller{}, "")
	assert.Equal(t, float64(0), books["books"].([]any)[0].(map[string]any)["inventory"])

	// act - return two days late
	*env.now = env.now.AddDate(0, 0, 9)
	returned := env.dispatch(t, actions.BorrowingsReturn, env.user, fmt.Sprintf(`{"id":%q}`, created["id"]))

	// assert
	assert.Equal(t, core.MsgReturnOverdue, returned["message"])
	assert.NotEmpty(t, returned["payment_url"])
	require.Len(t, env.gateway.Charges(), 2)
	assert.Equal(t, int64(10000), env.gateway.Charges()[1].MinorUnits())

	detail := env.dispatch(t, actions.BorrowingsRetrieve, env.user, fmt.Sprintf(`{"id":%q}`, created["id"]))
	assert.Equal(t, "2025-03-19", detail["actual_return_date"])
	assert.Len(t, detail["payments"], 2)

	book := env.dispatch(t, actions.BooksRetrieve, core.Caller{}, fmt.Sprintf(`{"id":%q}`, env.book.ID))
	assert.Equal(t, float64(1), book["inventory"])
}

func Test_Table_Dispatch_PaymentCallbacks(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	created := env.borrow(t, 3)
	sessionID := created["payment"].(map[string]any)["session_id"].(string)
	input := fmt.Sprintf(`{"session_id":%q}`, sessionID)

	// act
	canceled := env.dispatch(t, actions.PaymentsCancel, env.user, input)
	_, notConfirmedErr := env.table.Dispatch(context.Background(), actions.PaymentsSuccess, env.user, []byte(input))
	env.gateway.MarkPaid(sessionID)
	confirmed := env.dispatch(t, actions.PaymentsSuccess, env.user, input)

	// assert
	assert.Equal(t, core.MsgPaymentCanceled, canceled["message"])
	assert.ErrorIs(t, notConfirmedErr, core.ErrPaymentNotConfirmed)
	assert.Equal(t, core.MsgPaymentConfirmed, confirmed["message"])
	assert.Equal(t, "PAID", confirmed["payment"].(map[string]any)["status"])
	assert.True(t, env.notifier.HasMessageStartingWith(core.MsgPaymentSucceeded))
}

func Test_Table_Dispatch_RenewSession(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	created := env.borrow(t, 3)
	sessionID := created["payment"].(map[string]any)["session_id"].(string)
	input := fmt.Sprintf(`{"id":%q}`, created["id"])

	// act
	stillActive := env.dispatch(t, actions.PaymentsRenewSession, env.user, input)
	env.gateway.MarkExpired(sessionID)
	expired := env.dispatch(t, actions.JobsExpireSessions, actions.SystemCaller, "")
	renewed := env.dispatch(t, actions.PaymentsRenewSession, env.user, input)

	// assert
	assert.Equal(t, core.MsgSessionStillActive, stillActive["status"])
	assert.Equal(t, float64(1), expired["expired"])
	assert.Equal(t, core.MsgSessionUpdated, renewed["status"])

	payments := env.dispatch(t, actions.PaymentsList, env.user, "")
	require.Equal(t, float64(1), payments["count"])
	assert.Equal(t, "PENDING", payments["payments"].([]any)[0].(map[string]any)["status"])
}

func Test_Table_Dispatch_ScanOverdue(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	env.borrow(t, 1)

	// act
	report := env.dispatch(t, actions.JobsScanOverdue, actions.SystemCaller, "")

	// assert
	assert.Equal(t, float64(1), report["overdue"])
	assert.True(t, env.notifier.HasMessageStartingWith(core.MsgBorrowingOverdue))
}

func Test_Table_Dispatch_ListBorrowingsFilters(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	env.borrow(t, 3)
	admin := core.Caller{UserID: uuid.New(), Privileged: true}

	// act
	own := env.dispatch(t, actions.BorrowingsList, env.user, `{"is_active":"true"}`)
	returned := env.dispatch(t, actions.BorrowingsList, env.user, `{"is_active":"false"}`)
	byUser := env.dispatch(t, actions.BorrowingsList, admin, fmt.Sprintf(`{"user":"%s,%s"}`, env.user.UserID, uuid.New()))
	_, badFlagErr := env.table.Dispatch(context.Background(), actions.BorrowingsList, env.user, []byte(`{"is_active":"maybe"}`))

	// assert
	assert.Equal(t, float64(1), own["count"])
	assert.Equal(t, float64(0), returned["count"])
	assert.Equal(t, float64(1), byUser["count"])
	assert.ErrorIs(t, badFlagErr, core.ErrValidation)
}

func Test_Table_Dispatch_Errors(t *testing.T) {
	env := setupTestEnvironment(t)
	member := core.Caller{UserID: uuid.New()}

	testCases := []struct {
		name           string
		action         string
		caller         core.Caller
		input          string
		expectedErr    error
		expectedStatus int
	}{
		{"unknown action", "books.delete", member, "", actions.ErrUnknownAction, http.StatusNotFound},
		{"anonymous caller", actions.BorrowingsCreate, core.Caller{}, "", core.ErrUnauthenticated, http.StatusUnauthorized},
		{"job without privilege", actions.JobsScanOverdue, member, "", core.ErrForbidden, http.StatusForbidden},
		{"malformed json", actions.BooksRetrieve, member, "{", core.ErrMalformedInput, http.StatusBadRequest},
		{"malformed id", actions.BooksRetrieve, member, `{"id":"42"}`, core.ErrMalformedInput, http.StatusBadRequest},
		{"unknown book", actions.BooksRetrieve, member, fmt.Sprintf(`{"id":%q}`, uuid.New()), core.ErrBookNotFound, http.StatusNotFound},
		{
			"past return date",
			actions.BorrowingsCreate,
			member,
			fmt.Sprintf(`{"book":%q,"expected_return_date":"2025-03-09"}`, env.book.ID),
			core.ErrExpectedReturnDateInPast,
			http.StatusBadRequest,
		},
		{
			"bad date",
			actions.BorrowingsCreate,
			member,
			fmt.Sprintf(`{"book":%q,"expected_return_date":"tomorrow"}`, env.book.ID),
			core.ErrMalformedInput,
			http.StatusBadRequest,
		},
		{"missing session", actions.PaymentsSuccess, member, `{}`, core.ErrValidation, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			output, err := env.table.Dispatch(context.Background(), tc.action, tc.caller, []byte(tc.input))

			// assert
			assert.Nil(t, output)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Equal(t, tc.expectedStatus, env.table.StatusFor(err))
		})
	}
}

func Test_Table_Dispatch_OutOfStock_BusinessRuleStatus(t *testing.T) {
	// arrange
	strict := setupTestEnvironment(t)
	lenient := setupTestEnvironment(t, actions.WithBusinessRuleStatus(http.StatusBadRequest))

	for _, env := range []testEnv{strict, lenient} {
		env.borrow(t, 3)
	}

	input := func(env testEnv) []byte {
		return []byte(fmt.Sprintf(`{"book":%q,"expected_return_date":"2025-03-12"}`, env.book.ID))
	}

	// act
	_, strictErr := strict.table.Dispatch(context.Background(), actions.BorrowingsCreate, core.Caller{UserID: uuid.New()}, input(strict))
	_, lenientErr := lenient.table.Dispatch(context.Background(), actions.BorrowingsCreate, core.Caller{UserID: uuid.New()}, input(lenient))

	// assert
	assert.ErrorIs(t, strictErr, core.ErrOutOfStock)
	assert.Equal(t, http.StatusForbidden, strict.table.StatusFor(strictErr))
	assert.Equal(t, http.StatusBadRequest, lenient.table.StatusFor(lenientErr))
}

func Test_Table_Dispatch_IdempotentBorrowWithClientID(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	input := fmt.Sprintf(`{"id":%q,"book":%q,"expected_return_date":"2025-03-12"}`, uuid.New(), env.book.ID)

	// act
	first := env.dispatch(t, actions.BorrowingsCreate, env.user, input)
	second := env.dispatch(t, actions.BorrowingsCreate, env.user, input)

	// assert
	assert.Equal(t, first["id"], second["id"])
	assert.Len(t, env.gateway.Charges(), 1)
	assert.True(t, env.metrics.HasCounterRecord(shell.CommandHandlerIdempotentMetric,
		shell.BuildCommandLabels("BorrowBook", shell.StatusIdempotent)))
}

func Test_Table_Names_And_AuthLevels(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)

	// act
	names := env.table.Names()
	level, found := env.table.AuthLevelOf(actions.JobsExpireSessions)
	_, unknown := env.table.AuthLevelOf("nope")

	// assert
	assert.Len(t, names, 13)
	assert.Equal(t, actions.BooksList, names[0])
	assert.True(t, found)
	assert.Equal(t, actions.Privileged, level)
	assert.False(t, unknown)
}

func Test_NewTable_InvalidOptions(t *testing.T) {
	store := fixtures.NewMemStore(t)

	_, err := actions.NewTable(store, checkout.NewMemoryGateway(), spies.NewNotifierSpy(), actions.WithBusinessRuleStatus(418))
	assert.ErrorIs(t, err, actions.ErrInvalidBusinessRuleStatus)

	_, err = actions.NewTable(store, checkout.NewMemoryGateway(), spies.NewNotifierSpy(), actions.WithClock(nil))
	assert.ErrorIs(t, err, actions.ErrNilClock)
}

func Test_StatusFor(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{nil, http.StatusOK},
		{core.ErrMalformedInput, http.StatusBadRequest},
		{core.ErrUnpaidBalance, http.StatusForbidden},
		{core.ErrAlreadyReturned, http.StatusForbidden},
		{core.ErrPaymentNotFound, http.StatusNotFound},
		{core.ErrUnauthenticated, http.StatusUnauthorized},
		{core.ErrForbidden, http.StatusForbidden},
		{errors.Join(core.ErrUpstreamGateway, errors.New("boom")), http.StatusBadGateway},
		{rentalstore.ErrQueryingFailed, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, actions.StatusFor(tc.err), "%v", tc.err)
	}
}
