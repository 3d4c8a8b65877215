package main

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/actions"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/config"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/notify"
	"github.com/AntonStoeckl/book-rental-go/testutil/spies"
)

func Test_BuildBook(t *testing.T) {
	// act
	book, err := buildBook("", "  Dune ", "Frank Herbert", "hard", 3, "2.5")

	// assert
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, string(core.CoverHard), book.Cover)
	assert.Equal(t, 3, book.Inventory)
	assert.True(t, decimal.RequireFromString("2.50").Equal(book.DailyFee))
}

func Test_BuildBook_CollectsAllProblems(t *testing.T) {
	// act
	_, err := buildBook("no-uuid", " ", "", "PAPER", -1, "-0.01")

	// assert
	assert.ErrorIs(t, err, errInvalidBook)
	for _, part := range []string{"id", "title", "cover", "inventory", "daily fee"} {
		assert.Contains(t, err.Error(), part)
	}
}

func Test_BuildBook_AcceptsFreeBook(t *testing.T) {
	// act
	book, err := buildBook("", "Public Domain Tales", "", "SOFT", 1, "0")

	// assert
	require.NoError(t, err)
	assert.True(t, book.DailyFee.IsZero())
}

func Test_ParseCaller(t *testing.T) {
	userID := uuid.New()

	anonymous, err := parseCaller("", false)
	require.NoError(t, err)
	assert.True(t, anonymous.IsAnonymous())

	caller, err := parseCaller(userID.String(), true)
	require.NoError(t, err)
	assert.Equal(t, core.Caller{UserID: userID, Privileged: true}, caller)

	_, err = parseCaller("", true)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = parseCaller("nope", false)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func Test_ReadInput(t *testing.T) {
	fromFlag, err := readInput(`{"id":"x"}`, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"x"}`, string(fromFlag))

	fromStdin, err := readInput(stdinInputArgument, strings.NewReader(`{"id":"y"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"y"}`, string(fromStdin))
}

func Test_NewSinks(t *testing.T) {
	// arrange
	cfg := config.Default()
	cfg.NotifySinks = []string{config.SinkLog, config.SinkKafka}
	cfg.KafkaBroker = "localhost:9092"

	// act
	sinks, err := newSinks(cfg, spies.NewLoggerSpy())

	// assert
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	assert.Equal(t, "log", sinks[0].Name())
	assert.IsType(t, &notify.KafkaSink{}, sinks[1])
	assert.NoError(t, closeSinks(sinks))
}

func Test_NewSinks_UnknownSink(t *testing.T) {
	// arrange
	cfg := config.Default()
	cfg.NotifySinks = []string{config.SinkLog, "pigeon"}

	// act
	_, err := newSinks(cfg, spies.NewLoggerSpy())

	// assert
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func Test_NewApp_InMemory(t *testing.T) {
	// arrange
	ctx := context.Background()

	a, err := newApp(ctx, config.Default())
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	book, err := buildBook("", "Dune", "Frank Herbert", "SOFT", 1, "25.00")
	require.NoError(t, err)
	require.NoError(t, a.store.InsertBook(ctx, book))

	// act
	output, err := a.table.Dispatch(ctx, actions.BooksList, core.Caller{}, nil)

	// assert
	require.NoError(t, err)
	assert.Contains(t, string(output), `"title":"Dune"`)
	assert.Contains(t, string(output), `"count":1`)
	assert.Nil(t, a.pgStore)
}

func Test_NewApp_RejectsInvalidConfig(t *testing.T) {
	// arrange
	cfg := config.Default()
	cfg.DBAdapter = config.AdapterPGX

	// act
	_, err := newApp(context.Background(), cfg)

	// assert
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func Test_Job_DispatchesAsSystem(t *testing.T) {
	// arrange
	ctx := context.Background()

	a, err := newApp(ctx, config.Default())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	// act
	err = a.job(actions.JobsScanOverdue)(ctx)

	// assert
	assert.NoError(t, err)
}

func Test_ActionFailedError(t *testing.T) {
	err := actionFailedError{status: 404, err: core.ErrNotFound}

	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, "status 404: not found", err.Error())
}
