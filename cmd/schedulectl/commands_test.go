package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-scheduler/pkg/jwt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", filepath.Join(t.TempDir(), "scheduler.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_EXPIRY", "1h")

	out, err := execute(t, "token", "ops")
	require.NoError(t, err)

	claims, err := jwt.NewManager("cli-secret", time.Hour).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Operator)
}

func TestTokenCommand_RequiresOperator(t *testing.T) {
	_, err := execute(t, "token")
	assert.Error(t, err)
}

func TestMeetingsCommand_EmptyStore(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "meetings")
	require.NoError(t, err)

	var body struct {
		Items []interface{} `json:"items"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Items)
}

func TestTranscriptsCommand_EmptyStore(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "transcripts")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 0`)
}

func TestMigrateCommand_SQLite(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up: 0 migration(s) applied")

	_, err = execute(t, "migrate", "down")
	assert.Error(t, err)

	_, err = execute(t, "migrate", "sideways")
	assert.Error(t, err)
}

func TestCompleteCommand_RequiresCallID(t *testing.T) {
	_, err := execute(t, "complete")
	assert.Error(t, err)
}

func TestCallsCommand_RequiresAPIKey(t *testing.T) {
	t.Setenv("CALL_PROVIDER_API_KEY", "")

	_, err := execute(t, "calls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CALL_PROVIDER_API_KEY")
}
