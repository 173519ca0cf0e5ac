package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
)

type stubCompleter struct {
	answer string
	err    error
	system string
	user   string
	calls  int
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.calls++
	s.system = system
	s.user = user
	return s.answer, s.err
}

func newTestExtractor(t *testing.T, llm Completer, now time.Time) *Extractor {
	clk := clock.NewMock()
	clk.Set(now)
	return NewExtractor(llm, NewParser(now.Location()), clk, zaptest.NewLogger(t))
}

func TestExtract_StaleModelDateScenario(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2024, 6, 1, 18, 0, 0, 0, loc)
	llm := &stubCompleter{answer: "2024/01/01, 15:00"}

	details, err := newTestExtractor(t, llm, now).Extract(context.Background(), "transcript", "Asha Rao", "asha@example.com", "call-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", details.Date())
	assert.Equal(t, "15:00", details.Time())
	assert.Equal(t, "Asha Rao", details.Name)
	assert.Equal(t, "call-1", details.SourceCallID)

	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.system, Sentinel)
	assert.Contains(t, llm.user, "2024/06/01")
	assert.Contains(t, llm.user, "transcript")
}

func TestExtract_Ambiguous(t *testing.T) {
	llm := &stubCompleter{answer: "CANNOT_DETERMINE"}

	_, err := newTestExtractor(t, llm, time.Now()).Extract(context.Background(), "t", "Asha", "asha@example.com", "")
	assert.ErrorIs(t, err, usecaseErrors.ErrExtractionAmbiguous)
}

func TestExtract_ModelUnavailable(t *testing.T) {
	llm := &stubCompleter{err: errors.New("connection refused")}

	_, err := newTestExtractor(t, llm, time.Now()).Extract(context.Background(), "t", "Asha", "asha@example.com", "")
	assert.ErrorIs(t, err, usecaseErrors.ErrUpstreamUnavailable)
}

func TestExtract_InvalidEmail(t *testing.T) {
	loc := kolkata(t)
	llm := &stubCompleter{answer: "2030/01/01, 10:00"}

	_, err := newTestExtractor(t, llm, time.Date(2029, 1, 1, 0, 0, 0, 0, loc)).Extract(context.Background(), "t", "Asha", "not-an-email", "")
	assert.ErrorIs(t, err, usecaseErrors.ErrInvalidContact)
}

func TestFallbackDetails(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2024, 6, 1, 18, 0, 0, 0, loc)

	details, err := newTestExtractor(t, &stubCompleter{}, now).Fallback("Asha", "asha@example.com", "call-1", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", details.Date())
	assert.Equal(t, "10:00", details.Time())
	assert.True(t, details.StartsAt.After(now))

	_, err = newTestExtractor(t, &stubCompleter{}, now).Fallback("", "asha@example.com", "call-1", "10:00")
	assert.ErrorIs(t, err, usecaseErrors.ErrInvalidContact)
}

func TestExtract_NormalizesEmail(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2024, 6, 1, 18, 0, 0, 0, loc)
	e := newTestExtractor(t, &stubCompleter{answer: "2024/06/03, 15:00"}, now)

	upper, err := e.Extract(context.Background(), "t", "Asha", "  Asha@Example.COM ", "call-1")
	require.NoError(t, err)
	lower, err := e.Extract(context.Background(), "t", "Asha", "asha@example.com", "call-2")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", upper.Email)
	assert.Equal(t, lower.Key(), upper.Key())

	fallback, err := e.Fallback("Asha", "ASHA@example.com", "call-3", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", fallback.Email)
}
