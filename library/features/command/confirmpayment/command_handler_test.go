package confirmpayment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/features/command/confirmpayment"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/checkout"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/memengine"
	"github.com/AntonStoeckl/book-rental-go/testutil/fixtures"
	"github.com/AntonStoeckl/book-rental-go/testutil/spies"
)

type testEnv struct {
	store     *memengine.Store
	gateway   *checkout.MemoryGateway
	notifier  *spies.NotifierSpy
	handler   confirmpayment.CommandHandler
	sessionID string
}

func setupTestEnvironment(t *testing.T, paymentStatus string) testEnv {
	t.Helper()

	env := testEnv{
		store:    fixtures.NewMemStore(t),
		gateway:  checkout.NewMemoryGateway(),
		notifier: spies.NewNotifierSpy(),
	}
	env.handler = confirmpayment.NewCommandHandler(env.store, env.gateway, env.notifier)

	session, err := env.gateway.CreateSession(context.Background(), core.Charge{})
	require.NoError(t, err)
	env.sessionID = session.ID

	book := fixtures.Book("Dune", 0, "25.00")
	fixtures.SeedBooks(t, env.store, book)
	borrowing := fixtures.SeedBorrowing(t, env.store, book, uuid.New(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 7)
	fixtures.SeedPayment(t, env.store, borrowing, rentalstore.PaymentTypePayment, paymentStatus, env.sessionID, "175.00")

	return env
}

func (env testEnv) storedStatus(t *testing.T) string {
	payment, err := env.store.PaymentBySession(context.Background(), env.sessionID)
	require.NoError(t, err)

	return payment.Status
}

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, rentalstore.PaymentStatusPending)
	env.gateway.MarkPaid(env.sessionID)

	// act
	result, err := env.handler.Handle(context.Background(), confirmpayment.BuildCommand(env.sessionID))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, core.PaymentPaid, result.Payment.Status)
	assert.Equal(t, rentalstore.PaymentStatusPaid, env.storedStatus(t))
	assert.Equal(t, []string{core.PaymentSucceededNotification(result.Payment)}, env.notifier.Messages())
}

func Test_CommandHandler_Handle_Idempotent_AlreadyPaid(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, rentalstore.PaymentStatusPaid)

	// act
	result, err := env.handler.Handle(context.Background(), confirmpayment.BuildCommand(env.sessionID))

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Empty(t, env.notifier.Messages())
	assert.Empty(t, env.gateway.Retrieved())
}

func Test_CommandHandler_Handle_Error_SessionNotPaid(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, rentalstore.PaymentStatusPending)

	// act
	_, err := env.handler.Handle(context.Background(), confirmpayment.BuildCommand(env.sessionID))

	// assert
	assert.ErrorIs(t, err, core.ErrPaymentNotConfirmed)
	assert.Equal(t, rentalstore.PaymentStatusPending, env.storedStatus(t))
	assert.Empty(t, env.notifier.Messages())
}

func Test_CommandHandler_Handle_Error_UnknownSession(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, rentalstore.PaymentStatusPending)

	// act
	_, err := env.handler.Handle(context.Background(), confirmpayment.BuildCommand("cs_unknown"))

	// assert
	assert.ErrorIs(t, err, core.ErrPaymentNotFound)
}

func Test_CommandHandler_Handle_Error_MissingSessionID(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, rentalstore.PaymentStatusPending)

	// act
	_, err := env.handler.Handle(context.Background(), confirmpayment.BuildCommand(""))

	// assert
	assert.ErrorIs(t, err, core.ErrValidation)
}

func Test_CommandHandler_Handle_Error_GatewayFailure(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t, rentalstore.PaymentStatusPending)
	env.gateway.FailRetrieveWith(errors.New("stripe unavailable"))

	// act
	_, err := env.handler.Handle(context.Background(), confirmpayment.BuildCommand(env.sessionID))

	// assert
	assert.ErrorIs(t, err, core.ErrUpstreamGateway)
	assert.Equal(t, rentalstore.PaymentStatusPending, env.storedStatus(t))
	assert.Empty(t, env.notifier.Messages())
}
