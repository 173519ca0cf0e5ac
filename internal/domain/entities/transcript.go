package entities

import (
	"time"

	"gorm.io/datatypes"
)

// CallTranscript is the stored transcript of one completed call.
// It is written once per call identifier and never updated.
type CallTranscript struct {
	CallID     string            `json:"call_id" gorm:"type:varchar(255);primaryKey"`
	Transcript string            `json:"transcript" gorm:"type:text"`
	Summary    string            `json:"summary" gorm:"type:text"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for GORM
func (CallTranscript) TableName() string {
	return "call_transcripts"
}

// NewCallTranscript creates a new transcript record
func NewCallTranscript(callID, transcript, summary string) *CallTranscript {
	return &CallTranscript{
		CallID:     callID,
		Transcript: transcript,
		Summary:    summary,
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  time.Now(),
	}
}
