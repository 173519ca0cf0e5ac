package jobcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBegin_SetsMetadataAndDeadline(t *testing.T) {
	ctx, cancel := RunBegin(context.Background(), "call-1", time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	meta := GetRunMetadata(ctx)
	assert.Equal(t, "call-1", meta.CallID)
	assert.NotEqual(t, uuid.Nil, meta.RunID)
	assert.False(t, meta.StartTime.IsZero())
}

func TestRunBegin_NoTimeout(t *testing.T) {
	ctx, cancel := RunBegin(context.Background(), "call-1", 0)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
	assert.NoError(t, ctx.Err())

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestRunBegin_DistinctRunIDs(t *testing.T) {
	a, cancelA := RunBegin(context.Background(), "call-1", time.Second)
	defer cancelA()
	b, cancelB := RunBegin(context.Background(), "call-1", time.Second)
	defer cancelB()

	idA, _ := GetRunID(a)
	idB, _ := GetRunID(b)
	assert.NotEqual(t, idA, idB)
}

func TestGetters_EmptyContext(t *testing.T) {
	_, ok := GetCallID(context.Background())
	assert.False(t, ok)
	_, ok = GetRunID(context.Background())
	assert.False(t, ok)
}
