package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MeetingKey is the natural key of a meeting record
type MeetingKey struct {
	Name  string
	Email string
	Date  string
	Time  string
}

// String renders the key for logs and lock names. The email is expected in its
// NormalizeEmail form, the same value the unique index compares.
func (k MeetingKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.Name, k.Email, k.Date, k.Time)
}

// MeetingRecord is a scheduled interview. At most one record exists per natural key
// (name, email, date, time) and per source call.
type MeetingRecord struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:ux_meeting_natural_key,priority:1"`
	Email        string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:ux_meeting_natural_key,priority:2"`
	Date         string     `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:ux_meeting_natural_key,priority:3"`
	Time         string     `json:"time" gorm:"type:varchar(5);not null;uniqueIndex:ux_meeting_natural_key,priority:4"`
	CallID       *string    `json:"call_id,omitempty" gorm:"type:varchar(255);uniqueIndex:ux_meeting_call_id"`
	MeetingLink  string     `json:"meeting_link" gorm:"type:text;not null"`
	TimeZone     string     `json:"time_zone" gorm:"type:varchar(64)"`
	StartsAt     time.Time  `json:"starts_at"`
	FallbackUsed bool       `json:"fallback_used" gorm:"default:false"`
	NotifiedAt   *time.Time `json:"notified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for GORM
func (MeetingRecord) TableName() string {
	return "meeting_records"
}

// NewMeetingRecord promotes extracted details into a meeting record
func NewMeetingRecord(details ExtractedDetails, link string) *MeetingRecord {
	m := &MeetingRecord{
		ID:          uuid.New(),
		Name:        details.Name,
		Email:       details.Email,
		Date:        details.Date(),
		Time:        details.Time(),
		MeetingLink: link,
		TimeZone:    details.StartsAt.Location().String(),
		StartsAt:    details.StartsAt,
		CreatedAt:   time.Now(),
	}
	if details.SourceCallID != "" {
		callID := details.SourceCallID
		m.CallID = &callID
	}
	return m
}

// Key returns the natural key of the record
func (m *MeetingRecord) Key() MeetingKey {
	return MeetingKey{Name: m.Name, Email: m.Email, Date: m.Date, Time: m.Time}
}

// LocalStartsAt returns the start time in the zone the meeting was booked in.
// Stores that drop the zone hand StartsAt back in UTC.
func (m *MeetingRecord) LocalStartsAt() time.Time {
	if m.TimeZone != "" {
		if loc, err := time.LoadLocation(m.TimeZone); err == nil {
			return m.StartsAt.In(loc)
		}
	}
	return m.StartsAt
}

// IsNotified reports whether the invitee has already been informed
func (m *MeetingRecord) IsNotified() bool {
	return m.NotifiedAt != nil
}
