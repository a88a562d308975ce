package eventbus_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/eventbus/testbus"
	"github.com/hay-kot/rnclean/internal/core/history"
)

func latestNotificationPayload(tb *testbus.Bus, t *testing.T) eventbus.NotificationPublishedPayload {
	t.Helper()
	tb.AssertPublished(t, eventbus.EventNotificationPublished)

	got := testbus.Of[eventbus.NotificationPublishedPayload](tb, eventbus.EventNotificationPublished)
	require.NotEmpty(t, got)
	return got[len(got)-1]
}

func TestNotificationRouter_ScanFinished(t *testing.T) {
	tests := []struct {
		name      string
		payload   eventbus.ScanFinishedPayload
		wantLevel eventbus.Level
		wantMsg   string
	}{
		{
			name:      "clean scan",
			payload:   eventbus.ScanFinishedPayload{TotalFound: 2048},
			wantLevel: eventbus.LevelInfo,
			wantMsg:   "2.0 KiB",
		},
		{
			name:      "failed probes",
			payload:   eventbus.ScanFinishedPayload{TotalFound: 0, Failed: 2},
			wantLevel: eventbus.LevelWarning,
			wantMsg:   "2 task(s) failed",
		},
		{
			name:      "canceled",
			payload:   eventbus.ScanFinishedPayload{Canceled: true},
			wantLevel: eventbus.LevelWarning,
			wantMsg:   "canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := testbus.New(t)
			eventbus.NewNotificationRouter(tb.EventBus).Register()

			tb.PublishScanFinished(tt.payload)
			p := latestNotificationPayload(tb, t)

			assert.Equal(t, tt.wantLevel, p.Level)
			assert.Contains(t, p.Message, tt.wantMsg)
		})
	}
}

func TestNotificationRouter_CleanFinished(t *testing.T) {
	t.Run("warning status", func(t *testing.T) {
		tb := testbus.New(t)
		eventbus.NewNotificationRouter(tb.EventBus).Register()

		tb.PublishCleanFinished(eventbus.CleanFinishedPayload{
			SpaceCleaned: 1024,
			FilesDeleted: 3,
			Errors:       1,
			Status:       history.StatusWarning,
		})
		p := latestNotificationPayload(tb, t)

		assert.Equal(t, eventbus.LevelWarning, p.Level)
		assert.Contains(t, p.Message, "3 file(s)")
	})

	t.Run("persist failure", func(t *testing.T) {
		tb := testbus.New(t)
		eventbus.NewNotificationRouter(tb.EventBus).Register()

		tb.PublishCleanFinished(eventbus.CleanFinishedPayload{
			Status:     history.StatusSuccess,
			PersistErr: errors.New("disk full"),
		})
		p := latestNotificationPayload(tb, t)

		assert.Equal(t, eventbus.LevelError, p.Level)
		assert.Contains(t, p.Message, "disk full")
	})
}

func TestNotificationRouter_NilSafe(t *testing.T) {
	var r *eventbus.NotificationRouter
	assert.NotPanics(t, r.Register)
	assert.NotPanics(t, eventbus.NewNotificationRouter(nil).Register)
}
