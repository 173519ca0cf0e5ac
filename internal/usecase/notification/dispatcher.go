package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
)

// Subject of every invitation email
const Subject = "Interview Scheduled"

// Message is one outgoing HTML email
type Message struct {
	From    string
	To      []string
	CC      []string
	Subject string
	HTML    string
}

// Sender delivers a message over some transport
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Observer is told about every delivery attempt
type Observer interface {
	NotificationAttempt(success bool)
}

// Notification is the invitation to deliver for one meeting
type Notification struct {
	CallID      string
	Name        string
	Email       string
	MeetingLink string
	StartsAt    time.Time
}

// Options configures the retry machine
type Options struct {
	From        string
	CC          []string
	MaxAttempts int
	BaseDelay   time.Duration
	// Timer drives the sleeps between attempts; nil uses a real timer
	Timer backoff.Timer
}

// Dispatcher delivers invitations with bounded exponential retry.
// After failed attempt k it waits BaseDelay*2^(k-1); there is no wait after the last attempt.
type Dispatcher struct {
	sender   Sender
	opts     Options
	observer Observer
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher; observer may be nil
func NewDispatcher(sender Sender, opts Options, observer Observer, logger *zap.Logger) *Dispatcher {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Dispatcher{sender: sender, opts: opts, observer: observer, logger: logger}
}

var bodyTemplate = template.Must(template.New("invitation").Parse(`<html>
<body>
<p>Dear {{.Name}},</p>
<p>Your interview has been scheduled{{if .When}} for {{.When}}{{end}}.</p>
<p>Meeting link: <a href="{{.Link}}">{{.Link}}</a></p>
<p>Best regards,<br>Recruiting Team</p>
</body>
</html>`))

// Render builds the email for the notification
func (d *Dispatcher) Render(n Notification) (*Message, error) {
	var when string
	if !n.StartsAt.IsZero() {
		when = n.StartsAt.Format("Monday, 02 Jan 2006 at 15:04 MST")
	}

	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Name string
		When string
		Link template.URL
	}{Name: n.Name, When: when, Link: template.URL(n.MeetingLink)})
	if err != nil {
		return nil, fmt.Errorf("render invitation: %w", err)
	}

	return &Message{
		From:    d.opts.From,
		To:      []string{n.Email},
		CC:      d.opts.CC,
		Subject: Subject,
		HTML:    buf.String(),
	}, nil
}

// Dispatch delivers the notification. It never returns an error; the result
// says whether the message was sent and how many attempts it took.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) entities.NotificationResult {
	result := entities.NotificationResult{State: entities.NotificationPending}

	msg, err := d.Render(n)
	if err != nil {
		result.State = entities.NotificationExhausted
		result.Err = fmt.Errorf("%w: %w", usecaseErrors.ErrNotificationExhausted, err)
		return result
	}
	if err := ctx.Err(); err != nil {
		result.State = entities.NotificationExhausted
		result.Err = fmt.Errorf("%w: %w", usecaseErrors.ErrNotificationExhausted, err)
		return result
	}

	var lastErr error
	operation := func() error {
		result.State = entities.NotificationAttempting
		result.Attempts++
		err := d.sender.Send(ctx, msg)
		if d.observer != nil {
			d.observer.NotificationAttempt(err == nil)
		}
		if err != nil {
			lastErr = err
			d.logger.Warn("notification attempt failed",
				zap.String("call_id", n.CallID),
				zap.Int("attempt", result.Attempts),
				zap.Int("max_attempts", d.opts.MaxAttempts),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
		}
		return err
	}
	notify := func(_ error, delay time.Duration) {
		result.Delays = append(result.Delays, delay)
	}

	err = backoff.RetryNotifyWithTimer(operation, d.policy(ctx), notify, d.opts.Timer)
	if err == nil {
		result.State = entities.NotificationSent
		d.logger.Info("notification sent", zap.String("call_id", n.CallID), zap.Int("attempts", result.Attempts))
		return result
	}

	if lastErr == nil {
		lastErr = err
	}
	result.State = entities.NotificationExhausted
	result.Err = fmt.Errorf("%w after %d attempts: %w", usecaseErrors.ErrNotificationExhausted, result.Attempts, lastErr)
	d.logger.Error("notification exhausted", zap.String("call_id", n.CallID), zap.Int("attempts", result.Attempts), zap.Error(lastErr))
	return result
}

// policy is a jitter-free doubling schedule starting at BaseDelay,
// capped at MaxAttempts-1 waits and bound to ctx
func (d *Dispatcher) policy(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.opts.BaseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = d.opts.BaseDelay << uint(d.opts.MaxAttempts)
	bo.MaxElapsedTime = 0
	bo.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(d.opts.MaxAttempts-1)), ctx)
}

// TotalDelay is the wall clock spent waiting when every attempt fails
func TotalDelay(base time.Duration, maxAttempts int) time.Duration {
	if maxAttempts < 2 {
		return 0
	}
	return base * time.Duration((1<<uint(maxAttempts-1))-1)
}
