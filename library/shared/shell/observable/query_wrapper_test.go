package observable_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/observable"
	"github.com/AntonStoeckl/book-rental-go/testutil/spies"
)

const testQueryType = "TestQuery"

type mockQuery struct{}

func (q mockQuery) QueryType() string {
	return testQueryType
}

type mockQueryHandler struct {
	result []string
	err    error
}

func (h mockQueryHandler) Handle(context.Context, mockQuery) ([]string, error) {
	return h.result, h.err
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy()
	tracing := spies.NewTracingCollectorSpy()
	logger := spies.NewLoggerSpy()

	wrapper, err := observable.NewQueryWrapper[mockQuery, []string](
		mockQueryHandler{result: []string{"a", "b"}},
		observable.WithQueryMetrics[mockQuery, []string](metrics),
		observable.WithQueryTracing[mockQuery, []string](tracing),
		observable.WithQueryLogging[mockQuery, []string](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result)

	labels := shell.BuildQueryLabels(testQueryType, shell.StatusSuccess)
	assert.True(t, metrics.HasCounterRecord(shell.QueryHandlerCallsMetric, labels))
	assert.True(t, metrics.HasDurationRecord(shell.QueryHandlerDurationMetric, labels))

	span, found := tracing.SpanByName(shell.SpanNameQueryHandle)
	require.True(t, found)
	assert.Equal(t, shell.StatusSuccess, span.Status)

	assert.True(t, logger.HasMessage(slog.LevelInfo, shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_NotFoundIsARejection(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy()
	logger := spies.NewLoggerSpy()

	wrapper, err := observable.NewQueryWrapper[mockQuery, []string](
		mockQueryHandler{err: core.ErrBorrowingNotFound},
		observable.WithQueryMetrics[mockQuery, []string](metrics),
		observable.WithQueryContextualLogging[mockQuery, []string](logger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.True(t, metrics.HasCounterRecord(shell.QueryHandlerCallsMetric,
		shell.BuildQueryLabels(testQueryType, shell.StatusRejected)))
	assert.True(t, logger.HasMessage(slog.LevelWarn, shell.LogMsgQueryFailed))
}

func Test_QueryWrapper_Handle_Canceled(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy()

	wrapper, err := observable.NewQueryWrapper[mockQuery, []string](
		mockQueryHandler{err: context.Canceled},
		observable.WithQueryMetrics[mockQuery, []string](metrics),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, metrics.HasCounterRecord(shell.QueryHandlerCanceledMetric,
		shell.BuildQueryLabels(testQueryType, shell.StatusCanceled)))
}
