package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"defaults", Config{Level: "info", Format: "console"}},
		{"debug json", Config{Level: "debug", Format: "json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestWithRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := WithRunID(zap.New(core))

	l.Info("first")
	l.Info("second")

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()["run_id"]
	second := entries[1].ContextMap()["run_id"]
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)

	// A separate cycle gets its own identifier.
	other, otherLogs := observer.New(zap.InfoLevel)
	WithRunID(zap.New(other)).Info("third")
	assert.NotEqual(t, first, otherLogs.All()[0].ContextMap()["run_id"])
}
