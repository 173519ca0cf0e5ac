package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
)

// MeetingStore defines persistence operations for call transcripts and meeting records.
// Failures to reach the store are wrapped in usecase errors.ErrPersistenceUnavailable.
type MeetingStore interface {
	// Transcripts
	SaveTranscript(ctx context.Context, t *entities.CallTranscript) (bool, error)
	FindTranscripts(ctx context.Context) ([]*entities.CallTranscript, error)

	// Meetings
	SaveMeeting(ctx context.Context, details entities.ExtractedDetails, link string, fallbackUsed bool) (*entities.MeetingRecord, bool, error)
	FindMeetings(ctx context.Context) ([]*entities.MeetingRecord, error)
	FindMeetingByCallID(ctx context.Context, callID string) (*entities.MeetingRecord, error)
	FindMeetingByKey(ctx context.Context, key entities.MeetingKey) (*entities.MeetingRecord, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}
