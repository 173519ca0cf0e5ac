package entities

import (
	"strings"
	"time"
)

const (
	// DateLayout is the storage layout of a meeting date
	DateLayout = "2006-01-02"
	// TimeLayout is the 24-hour, minute-precision layout of a meeting time
	TimeLayout = "15:04"
)

// ExtractedDetails is the validated result of date/time extraction for one call,
// combined with the invitee contact data supplied by the caller.
type ExtractedDetails struct {
	Name         string    `json:"name" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	SourceCallID string    `json:"source_call_id,omitempty"`
}

// NormalizeEmail returns the canonical form of an address as stored in meeting keys
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Date returns the civil date of the meeting in its own location
func (d ExtractedDetails) Date() string {
	return d.StartsAt.Format(DateLayout)
}

// Time returns the 24-hour wall-clock time of the meeting in its own location
func (d ExtractedDetails) Time() string {
	return d.StartsAt.Format(TimeLayout)
}

// Key returns the natural key used to detect duplicate meetings
func (d ExtractedDetails) Key() MeetingKey {
	return MeetingKey{
		Name:  d.Name,
		Email: d.Email,
		Date:  d.Date(),
		Time:  d.Time(),
	}
}
