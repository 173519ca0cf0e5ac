package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
)

// instantTimer fires immediately and records what it was asked to wait
type instantTimer struct {
	mu        sync.Mutex
	c         chan time.Time
	durations []time.Duration
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.durations = append(t.durations, d)
	t.mu.Unlock()
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

type flakySender struct {
	failures int
	calls    int
	last     *Message
}

func (s *flakySender) Send(_ context.Context, msg *Message) error {
	s.calls++
	s.last = msg
	if s.calls <= s.failures {
		return errors.New("smtp: 421 service not available")
	}
	return nil
}

type countingObserver struct {
	ok, failed int
}

func (o *countingObserver) NotificationAttempt(success bool) {
	if success {
		o.ok++
	} else {
		o.failed++
	}
}

func testNotification() Notification {
	return Notification{
		CallID:      "call-1",
		Name:        "Asha",
		Email:       "asha@example.com",
		MeetingLink: "https://calendar.example/evt?eid=1&x=2",
	}
}

func newTestDispatcher(t *testing.T, sender Sender, maxAttempts int, timer *instantTimer, obs Observer) *Dispatcher {
	return NewDispatcher(sender, Options{
		From:        "recruiting@example.com",
		CC:          []string{"hr@example.com"},
		MaxAttempts: maxAttempts,
		BaseDelay:   2 * time.Second,
		Timer:       timer,
	}, obs, zaptest.NewLogger(t))
}

func TestDispatch_FirstAttempt(t *testing.T) {
	sender := &flakySender{}
	timer := newInstantTimer()

	result := newTestDispatcher(t, sender, 3, timer, nil).Dispatch(context.Background(), testNotification())
	assert.Equal(t, entities.NotificationSent, result.State)
	assert.Equal(t, 1, result.Attempts)
	assert.Empty(t, result.Delays)
	assert.Empty(t, timer.durations)
	assert.NoError(t, result.Err)

	require.NotNil(t, sender.last)
	assert.Equal(t, Subject, sender.last.Subject)
	assert.Equal(t, "recruiting@example.com", sender.last.From)
	assert.Equal(t, []string{"asha@example.com"}, sender.last.To)
	assert.Equal(t, []string{"hr@example.com"}, sender.last.CC)
	assert.Contains(t, sender.last.HTML, `<a href="https://calendar.example/evt?eid=1&amp;x=2">`)
	assert.Contains(t, sender.last.HTML, "Dear Asha")
}

func TestDispatch_SucceedsAfterRetries(t *testing.T) {
	sender := &flakySender{failures: 2}
	timer := newInstantTimer()
	obs := &countingObserver{}

	result := newTestDispatcher(t, sender, 3, timer, obs).Dispatch(context.Background(), testNotification())
	assert.Equal(t, entities.NotificationSent, result.State)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, result.Delays)
	assert.Equal(t, result.Delays, timer.durations)
	assert.Equal(t, 1, obs.ok)
	assert.Equal(t, 2, obs.failed)
}

func TestDispatch_Exhausted(t *testing.T) {
	sender := &flakySender{failures: 100}
	timer := newInstantTimer()

	result := newTestDispatcher(t, sender, 3, timer, nil).Dispatch(context.Background(), testNotification())
	assert.Equal(t, entities.NotificationExhausted, result.State)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, timer.durations)
	assert.ErrorIs(t, result.Err, usecaseErrors.ErrNotificationExhausted)
	assert.Contains(t, result.Err.Error(), "421")
}

func TestDispatch_BackoffBound(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 3, 5} {
		sender := &flakySender{failures: 100}
		timer := newInstantTimer()

		result := newTestDispatcher(t, sender, maxAttempts, timer, nil).Dispatch(context.Background(), testNotification())
		assert.Equal(t, maxAttempts, result.Attempts)

		var total time.Duration
		for k, d := range timer.durations {
			assert.Equal(t, 2*time.Second<<uint(k), d)
			total += d
		}
		assert.Len(t, timer.durations, maxAttempts-1)
		assert.Equal(t, TotalDelay(2*time.Second, maxAttempts), total)
	}
}

func TestDispatch_CancelledContext(t *testing.T) {
	sender := &flakySender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestDispatcher(t, sender, 3, newInstantTimer(), nil).Dispatch(ctx, testNotification())
	assert.Equal(t, entities.NotificationExhausted, result.State)
	assert.Equal(t, 0, sender.calls)
	assert.ErrorIs(t, result.Err, usecaseErrors.ErrNotificationExhausted)
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func TestTotalDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), TotalDelay(time.Second, 1))
	assert.Equal(t, time.Second, TotalDelay(time.Second, 2))
	assert.Equal(t, 3*time.Second, TotalDelay(time.Second, 3))
	assert.Equal(t, 15*time.Second, TotalDelay(time.Second, 5))
}
