package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortn/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLog_LinkAssigned(t *testing.T) {
	t.Run("logs the assignment", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		audit := events.NewAuditLog(zap.New(core))
		assignedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		event := events.NewLinkAssigned("V1StGX", "https://example.com/a", "http://localhost:8888/V1StGX", assignedAt)

		err := audit.LinkAssigned(context.Background(), event)

		require.NoError(t, err)
		require.Equal(t, 1, logs.Len())

		entry := logs.All()[0]
		assert.Equal(t, "link assigned", entry.Message)
		assert.Equal(t, "audit", entry.LoggerName)
		assert.Equal(t, "V1StGX", entry.ContextMap()["id"])
		assert.Equal(t, "https://example.com/a", entry.ContextMap()["url"])
		assert.Equal(t, event.EventID, entry.ContextMap()["event_id"])
	})

	t.Run("new events get distinct event ids", func(t *testing.T) {
		a := events.NewLinkAssigned("V1StGX", "https://example.com/a", "", time.Now())
		b := events.NewLinkAssigned("V1StGX", "https://example.com/a", "", time.Now())

		assert.NotEmpty(t, a.EventID)
		assert.NotEqual(t, a.EventID, b.EventID)
	})

	t.Run("rejects incomplete events", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		audit := events.NewAuditLog(zap.New(core))

		err := audit.LinkAssigned(context.Background(), &events.LinkAssigned{ID: "V1StGX"})

		assert.Error(t, err)
		assert.Zero(t, logs.Len())
	})
}
