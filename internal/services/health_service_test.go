package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedSessions int

func (f fixedSessions) SessionCount() int { return int(f) }

func TestHealthService_HealthCheck(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	hs := NewHealthService("1.2.3", "https://example.com/cleanviz", fixedSessions(2), logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		sessions   SessionCounter
		wantStatus string
	}{
		{"with store", fixedSessions(3), "ready"},
		{"without store", nil, "not_ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.0.0", "", tt.sessions, nil)
			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)

			sh, ok := status.Services["sessions"].(ServiceHealth)
			assert.True(t, ok)
			assert.Equal(t, tt.wantStatus, sh.Status)
		})
	}

	hs := NewHealthService("1.0.0", "", fixedSessions(3), nil)
	sh := hs.ReadinessCheck(context.Background()).Services["sessions"].(ServiceHealth)
	assert.Equal(t, "3 active sessions", sh.Message)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthServiceWithBuildInfo("1.0.0", "repo", "2026-01-01", "abc123", fixedSessions(0), nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, runtime.Version(), live.Runtime["go_version"])

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Equal(t, "2026-01-01", v["build_time"])
	assert.Equal(t, "abc123", v["build_id"])
	assert.Equal(t, runtime.GOOS, v["os"])

	v = NewHealthService("1.0.0", "repo", nil, nil).Version()
	_, hasBuild := v["build_time"]
	assert.False(t, hasBuild)
}
