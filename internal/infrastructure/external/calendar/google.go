package calendar

import (
	"context"
	"errors"
	"fmt"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	calendaruc "github.com/johnquangdev/interview-scheduler/internal/usecase/calendar"
)

const wallClockLayout = "2006-01-02T15:04:05"

// GoogleCalendar inserts events through the Google Calendar v3 API
type GoogleCalendar struct {
	svc        *gcal.Service
	calendarID string
}

var _ calendaruc.EventInserter = (*GoogleCalendar)(nil)

// NewGoogleCalendar creates the adapter. Credentials come in through opts,
// typically option.WithTokenSource.
func NewGoogleCalendar(ctx context.Context, calendarID string, opts ...option.ClientOption) (*GoogleCalendar, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleCalendar{svc: svc, calendarID: calendarID}, nil
}

// Insert creates the event and returns its HTML link
func (g *GoogleCalendar) Insert(ctx context.Context, ev calendaruc.Event) (string, error) {
	attendees := make([]*gcal.EventAttendee, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}

	event := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format(wallClockLayout),
			TimeZone: ev.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format(wallClockLayout),
			TimeZone: ev.TimeZone,
		},
		Attendees: attendees,
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	if created.HtmlLink == "" {
		return "", errors.New("insert event: response has no html link")
	}
	return created.HtmlLink, nil
}
