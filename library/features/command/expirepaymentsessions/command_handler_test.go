package expirepaymentsessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/features/command/expirepaymentsessions"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/checkout"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/memengine"
	"github.com/AntonStoeckl/book-rental-go/testutil/fixtures"
)

type testEnv struct {
	store     *memengine.Store
	gateway   *checkout.MemoryGateway
	handler   expirepaymentsessions.CommandHandler
	borrowing rentalstore.Borrowing
}

func setupTestEnvironment(t *testing.T) testEnv {
	t.Helper()

	env := testEnv{
		store:   fixtures.NewMemStore(t),
		gateway: checkout.NewMemoryGateway(),
	}
	env.handler = expirepaymentsessions.NewCommandHandler(env.store, env.gateway)

	book := fixtures.Book("Dune", 0, "25.00")
	fixtures.SeedBooks(t, env.store, book)
	env.borrowing = fixtures.SeedBorrowing(t, env.store, book, uuid.New(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 7)

	return env
}

// seedPayment opens a gateway session and stores a payment mirroring it.
func (env testEnv) seedPayment(t *testing.T, status string) rentalstore.Payment {
	session, err := env.gateway.CreateSession(context.Background(), core.Charge{})
	require.NoError(t, err)

	return fixtures.SeedPayment(t, env.store, env.borrowing, rentalstore.PaymentTypePayment, status, session.ID, "175.00")
}

func (env testEnv) statusOf(t *testing.T, payment rentalstore.Payment) string {
	stored, err := env.store.PaymentByID(context.Background(), payment.ID)
	require.NoError(t, err)

	return stored.Status
}

func Test_CommandHandler_Handle_ExpiresLapsedSessions(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	lapsed := env.seedPayment(t, rentalstore.PaymentStatusPending)
	open := env.seedPayment(t, rentalstore.PaymentStatusPending)
	paid := env.seedPayment(t, rentalstore.PaymentStatusPaid)
	env.gateway.MarkExpired(lapsed.SessionID)
	env.gateway.MarkExpired(paid.SessionID)

	// act
	result, err := env.handler.Handle(context.Background(), expirepaymentsessions.BuildCommand())

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Expired)

	assert.Equal(t, rentalstore.PaymentStatusExpired, env.statusOf(t, lapsed))
	assert.Equal(t, rentalstore.PaymentStatusPending, env.statusOf(t, open))
	assert.Equal(t, rentalstore.PaymentStatusPaid, env.statusOf(t, paid))
	assert.NotContains(t, env.gateway.Retrieved(), paid.SessionID)
}

func Test_CommandHandler_Handle_Idempotent_NothingLapsed(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	env.seedPayment(t, rentalstore.PaymentStatusPending)

	// act
	result, err := env.handler.Handle(context.Background(), expirepaymentsessions.BuildCommand())

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Equal(t, 0, result.Expired)
}

func Test_CommandHandler_Handle_GatewayFailure_ContinuesWithOthers(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	unknown := fixtures.SeedPayment(t, env.store, env.borrowing,
		rentalstore.PaymentTypeFine, rentalstore.PaymentStatusPending, "cs_unknown", "100.00")
	lapsed := env.seedPayment(t, rentalstore.PaymentStatusPending)
	env.gateway.MarkExpired(lapsed.SessionID)

	// act
	result, err := env.handler.Handle(context.Background(), expirepaymentsessions.BuildCommand())

	// assert
	assert.ErrorIs(t, err, core.ErrUpstreamGateway)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, rentalstore.PaymentStatusPending, env.statusOf(t, unknown))
	assert.Equal(t, rentalstore.PaymentStatusExpired, env.statusOf(t, lapsed))
}

func Test_CommandHandler_Handle_Canceled(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	env.seedPayment(t, rentalstore.PaymentStatusPending)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err := env.handler.Handle(ctx, expirepaymentsessions.BuildCommand())

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}
