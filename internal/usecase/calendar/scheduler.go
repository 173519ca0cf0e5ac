package calendar

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
)

// MeetingDuration is the length of every interview event
const MeetingDuration = time.Hour

// Event is a calendar event in a fixed IANA zone
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
}

// EventInserter creates an event and returns its shareable link
type EventInserter interface {
	Insert(ctx context.Context, ev Event) (string, error)
}

// Scheduler creates interview events in the configured zone
type Scheduler struct {
	inserter EventInserter
	loc      *time.Location
	clock    clock.Clock
	logger   *zap.Logger
}

// NewScheduler creates a scheduler for events in loc
func NewScheduler(inserter EventInserter, loc *time.Location, clk clock.Clock, logger *zap.Logger) *Scheduler {
	return &Scheduler{inserter: inserter, loc: loc, clock: clk, logger: logger}
}

// Location returns the zone events are created in
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Schedule creates a one-hour event for the invitee. date is YYYY-MM-DD, hhmm is 24-hour HH:MM.
func (s *Scheduler) Schedule(ctx context.Context, name, date, hhmm, email string) (string, error) {
	start, err := s.Start(date, hhmm)
	if err != nil {
		return "", fmt.Errorf("%w: %w", usecaseErrors.ErrSchedulingFailed, err)
	}

	ev := Event{
		Summary:     "Interview with " + name,
		Description: fmt.Sprintf("Interview with %s <%s>", name, email),
		Start:       start,
		End:         start.Add(MeetingDuration),
		TimeZone:    s.loc.String(),
		Attendees:   []string{email},
	}

	link, err := s.inserter.Insert(ctx, ev)
	if err != nil {
		s.logger.Warn("calendar insert failed", zap.String("email", email), zap.Time("start", start), zap.Error(err))
		return "", fmt.Errorf("%w: %w", usecaseErrors.ErrSchedulingFailed, err)
	}
	if link == "" {
		return "", fmt.Errorf("%w: empty event link", usecaseErrors.ErrSchedulingFailed)
	}
	return link, nil
}

// ScheduleDetails schedules the slot carried by extracted details
func (s *Scheduler) ScheduleDetails(ctx context.Context, d *entities.ExtractedDetails) (string, error) {
	return s.Schedule(ctx, d.Name, d.StartsAt.In(s.loc).Format(entities.DateLayout), d.StartsAt.In(s.loc).Format(entities.TimeLayout), d.Email)
}

// Start resolves date and time into an instant in the scheduler's zone.
// A year earlier than the current one is replaced by the current year,
// or the next one when that date has already passed.
func (s *Scheduler) Start(date, hhmm string) (time.Time, error) {
	day, err := time.ParseInLocation(entities.DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	slot, err := time.Parse(entities.TimeLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}

	now := s.clock.Now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	year := day.Year()
	if year < now.Year() {
		year = now.Year()
		if time.Date(year, day.Month(), day.Day(), 0, 0, 0, 0, s.loc).Before(today) {
			year++
		}
	}
	return time.Date(year, day.Month(), day.Day(), slot.Hour(), slot.Minute(), 0, 0, s.loc), nil
}
