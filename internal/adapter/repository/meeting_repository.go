package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	"github.com/johnquangdev/interview-scheduler/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
)

// MeetingRepository handles transcript and meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

var _ repositories.MeetingStore = (*MeetingRepository)(nil)

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", usecaseErrors.ErrPersistenceUnavailable, op, err)
}

// SaveTranscript inserts the transcript unless one already exists for the call.
// It reports whether a new row was written.
func (r *MeetingRepository) SaveTranscript(ctx context.Context, t *entities.CallTranscript) (bool, error) {
	if t == nil {
		return false, errors.New("transcript cannot be nil")
	}
	if t.CallID == "" {
		return false, entities.ErrEmptyCallID
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "call_id"}}, DoNothing: true}).
		Create(t)
	if res.Error != nil {
		return false, unavailable("save transcript", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// FindTranscripts returns all transcripts, newest first
func (r *MeetingRepository) FindTranscripts(ctx context.Context) ([]*entities.CallTranscript, error) {
	var transcripts []*entities.CallTranscript
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&transcripts).Error; err != nil {
		return nil, unavailable("find transcripts", err)
	}
	return transcripts, nil
}

// SaveMeeting inserts a meeting for the details unless the natural key or the call id
// is already taken, in which case the existing record is returned with created=false.
func (r *MeetingRepository) SaveMeeting(ctx context.Context, details entities.ExtractedDetails, link string, fallbackUsed bool) (*entities.MeetingRecord, bool, error) {
	if details.Name == "" || details.Email == "" {
		return nil, false, entities.ErrInvalidMeetingKey
	}

	record := entities.NewMeetingRecord(details, link)
	record.FallbackUsed = fallbackUsed

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if res.Error != nil {
		return nil, false, unavailable("save meeting", res.Error)
	}
	if res.RowsAffected > 0 {
		return record, true, nil
	}

	existing, err := r.FindMeetingByKey(ctx, details.Key())
	if err != nil {
		return nil, false, err
	}
	if existing == nil && details.SourceCallID != "" {
		existing, err = r.FindMeetingByCallID(ctx, details.SourceCallID)
		if err != nil {
			return nil, false, err
		}
	}
	if existing == nil {
		return nil, false, unavailable("save meeting", errors.New("conflicting row vanished"))
	}
	return existing, false, nil
}

// FindMeetings returns all meetings, newest first
func (r *MeetingRepository) FindMeetings(ctx context.Context) ([]*entities.MeetingRecord, error) {
	var meetings []*entities.MeetingRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&meetings).Error; err != nil {
		return nil, unavailable("find meetings", err)
	}
	return meetings, nil
}

// FindMeetingByCallID returns the meeting created from the call, or nil when there is none
func (r *MeetingRepository) FindMeetingByCallID(ctx context.Context, callID string) (*entities.MeetingRecord, error) {
	var meeting entities.MeetingRecord
	if err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, unavailable("find meeting by call id", err)
	}
	return &meeting, nil
}

// FindMeetingByKey returns the meeting with the natural key, or nil when there is none
func (r *MeetingRepository) FindMeetingByKey(ctx context.Context, key entities.MeetingKey) (*entities.MeetingRecord, error) {
	var meeting entities.MeetingRecord
	err := r.db.WithContext(ctx).
		Where("name = ? AND email = ? AND date = ? AND time = ?", key.Name, key.Email, key.Date, key.Time).
		First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, unavailable("find meeting by key", err)
	}
	return &meeting, nil
}

// MarkNotified stamps the notification time once; later calls leave the first stamp intact
func (r *MeetingRepository) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&entities.MeetingRecord{}).
		Where("id = ? AND notified_at IS NULL", id).
		Update("notified_at", at)
	if res.Error != nil {
		return unavailable("mark notified", res.Error)
	}
	return nil
}
