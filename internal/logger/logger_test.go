package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"teagate/pkg/logging"
)

func observed() (*SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &SugaredLogger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		log, err := New("debug", format)
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}

func TestInfowCtx_AddsContextFields(t *testing.T) {
	log, logs := observed()
	log.SetServiceName("management-service")

	ctx := logging.WithLotCode(context.Background(), "LOT-2026-003")
	log.InfowCtx(ctx, "Lot simulated", "shippable", false)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "LOT-2026-003", fields["lot_code"])
	assert.Equal(t, "management-service", fields["service_name"])
	assert.Equal(t, false, fields["shippable"])
}

func TestErrorwCtx_ContextServiceNameWins(t *testing.T) {
	log, logs := observed()
	log.SetServiceName("fallback")

	ctx := logging.WithServiceName(context.Background(), "inspection-service")
	log.ErrorwCtx(ctx, "boom")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "inspection-service", entry.ContextMap()["service_name"])
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	assert.NotPanics(t, func() {
		log.InfowCtx(context.Background(), "ignored")
	})
}
