package telemetry

import (
	"context"
	"testing"

	"github.com/smallbiznis/rentaldesk/internal/config"
	obslogger "github.com/smallbiznis/rentaldesk/internal/observability/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewTracerProviderDisabledWithoutEndpoint(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	tp, err := NewTracerProvider(lc, config.Config{}, zap.NewNop())

	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestSpansCarryRequestID(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := newProvider(config.Config{AppName: "rentaldesk"}, trace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx := obslogger.WithRequestID(context.Background(), "req-123")
	_, span := tp.Tracer("test").Start(ctx, "quote.submit")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.String("request_id", "req-123"))
}
