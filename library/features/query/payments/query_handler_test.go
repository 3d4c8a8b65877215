package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/features/query/payments"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
	"github.com/AntonStoeckl/book-rental-go/rentalstore/memengine"
	"github.com/AntonStoeckl/book-rental-go/testutil/fixtures"
)

var borrowDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	store        *memengine.Store
	alice, bob   uuid.UUID
	alicePayment rentalstore.Payment
	bobPayment   rentalstore.Payment
}

func setupTestEnvironment(t *testing.T) testEnv {
	t.Helper()

	env := testEnv{store: fixtures.NewMemStore(t), alice: uuid.New(), bob: uuid.New()}

	book := fixtures.Book("Dune", 5, "25.00")
	fixtures.SeedBooks(t, env.store, book)

	aliceBorrowing := fixtures.SeedBorrowing(t, env.store, book, env.alice, borrowDay, 7)
	bobBorrowing := fixtures.SeedBorrowing(t, env.store, book, env.bob, borrowDay, 2)

	env.alicePayment = fixtures.SeedPayment(t, env.store, aliceBorrowing,
		rentalstore.PaymentTypePayment, rentalstore.PaymentStatusPending, "cs_alice", "175.00")
	env.bobPayment = fixtures.SeedPayment(t, env.store, bobBorrowing,
		rentalstore.PaymentTypePayment, rentalstore.PaymentStatusPaid, "cs_bob", "50.00")

	return env
}

func Test_ListQueryHandler_Handle_OwnPaymentsOnly(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)

	// act
	result, err := payments.NewListQueryHandler(env.store).Handle(context.Background(),
		payments.BuildListQuery(core.Caller{UserID: env.alice}))

	// assert
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, env.alicePayment.ID.String(), result.Payments[0].ID)
	assert.Equal(t, "175.00", result.Payments[0].MoneyToPay)
	assert.Equal(t, "Dune", result.Payments[0].BookTitle)
	assert.Equal(t, "PENDING", result.Payments[0].Status)
}

func Test_ListQueryHandler_Handle_PrivilegedSeesAll(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)

	// act
	result, err := payments.NewListQueryHandler(env.store).Handle(context.Background(),
		payments.BuildListQuery(core.Caller{UserID: uuid.New(), Privileged: true}))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
}

func Test_ListQueryHandler_Handle_AnonymousRejected(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)

	// act
	_, err := payments.NewListQueryHandler(env.store).Handle(context.Background(), payments.BuildListQuery(core.Caller{}))

	// assert
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func Test_RetrieveQueryHandler_Handle(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	handler := payments.NewRetrieveQueryHandler(env.store)
	ctx := context.Background()

	// act
	own, ownErr := handler.Handle(ctx, payments.BuildRetrieveQuery(core.Caller{UserID: env.alice}, env.alicePayment.ID))
	_, foreignErr := handler.Handle(ctx, payments.BuildRetrieveQuery(core.Caller{UserID: env.alice}, env.bobPayment.ID))
	_, unknownErr := handler.Handle(ctx, payments.BuildRetrieveQuery(core.Caller{UserID: env.alice}, uuid.New()))

	// assert
	require.NoError(t, ownErr)
	assert.Equal(t, "cs_alice", own.SessionID)
	assert.ErrorIs(t, foreignErr, core.ErrPaymentNotFound)
	assert.ErrorIs(t, unknownErr, core.ErrPaymentNotFound)
}

func Test_CancelQueryHandler_Handle(t *testing.T) {
	// arrange
	env := setupTestEnvironment(t)
	handler := payments.NewCancelQueryHandler(env.store)
	ctx := context.Background()

	// act
	result, err := handler.Handle(ctx, payments.BuildCancelQuery("cs_alice"))
	_, missingErr := handler.Handle(ctx, payments.BuildCancelQuery(""))
	_, unknownErr := handler.Handle(ctx, payments.BuildCancelQuery("cs_unknown"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.MsgPaymentCanceled, result.Message)
	assert.Equal(t, env.alicePayment.ID.String(), result.Payment.ID)
	assert.Equal(t, "PENDING", result.Payment.Status)
	assert.ErrorIs(t, missingErr, core.ErrValidation)
	assert.ErrorIs(t, unknownErr, core.ErrPaymentNotFound)

	stored, storeErr := env.store.PaymentBySession(ctx, "cs_alice")
	require.NoError(t, storeErr)
	assert.Equal(t, rentalstore.PaymentStatusPending, stored.Status)
}
