package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorAttachesErrField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := FromZap(zap.New(core)).With(zap.String("component", "profiles"))

	log.Error("save failed", errors.New("boom"), zap.String("op", "upsert_profile"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "profiles", fields["component"])
	assert.Equal(t, "upsert_profile", fields["op"])
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		log, err := New(env)
		require.NoError(t, err, env)
		log.Info("hello")
	}
}
