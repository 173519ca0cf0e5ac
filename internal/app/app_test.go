package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/johnquangdev/interview-scheduler/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LogLevel: "debug",
		Server:   config.ServerConfig{Environment: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", SqlitePath: filepath.Join(t.TempDir(), "app.db")},
		Redis:    config.RedisConfig{LockTTL: time.Minute},
		CallProvider: config.CallProviderConfig{
			BaseURL: "http://127.0.0.1:0",
			APIKey:  "key",
			Timeout: time.Second,
		},
		LLM: config.LLMConfig{BaseURL: "http://127.0.0.1:0", APIKey: "key", Model: "m", Timeout: time.Second},
		Calendar: config.CalendarConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			RefreshToken: "refresh",
			CalendarID:   "primary",
			TimeZone:     "Asia/Kolkata",
			Endpoint:     "http://127.0.0.1:0/",
		},
		Mail: config.MailConfig{
			Host:        "localhost",
			Port:        2525,
			From:        "recruiting@example.com",
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			Timeout:     time.Second,
		},
		Pipeline: config.PipelineConfig{FallbackTime: "10:00", RunTimeout: time.Minute, BatchConcurrency: 1},
	}
}

func TestNew_WiresSQLiteAndMemoryLocks(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Pipeline)
	assert.NotNil(t, a.Provider)
	assert.NotNil(t, a.Registry)
	assert.True(t, a.DB.Migrator().HasTable("meeting_records"))

	meetings, err := a.Store.FindMeetings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, meetings)

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_RejectsUnknownTimeZone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Calendar.TimeZone = "Mars/Olympus"

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestNewLogger(t *testing.T) {
	cfg := &config.Config{LogLevel: "warn", Server: config.ServerConfig{Environment: "production"}}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	cfg.LogLevel = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
