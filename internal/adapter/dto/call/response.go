package call

import (
	"time"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
)

// MeetingResponse represents a stored meeting
type MeetingResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Date         string     `json:"date"`
	Time         string     `json:"time"`
	TimeZone     string     `json:"time_zone"`
	CallID       string     `json:"call_id,omitempty"`
	MeetingLink  string     `json:"meeting_link"`
	FallbackUsed bool       `json:"fallback_used"`
	NotifiedAt   *time.Time `json:"notified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TranscriptResponse represents a stored transcript
type TranscriptResponse struct {
	CallID     string                 `json:"call_id"`
	Transcript string                 `json:"transcript"`
	Summary    string                 `json:"summary,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NotificationResponse summarises the notification retry machine
type NotificationResponse struct {
	State    string   `json:"state"`
	Attempts int      `json:"attempts"`
	Delays   []string `json:"delays,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// OutcomeResponse represents the result of one pipeline run
type OutcomeResponse struct {
	CallID            string                `json:"call_id"`
	Status            string                `json:"status"`
	Stage             string                `json:"stage"`
	FallbackUsed      bool                  `json:"fallback_used"`
	FallbackReason    string                `json:"fallback_reason,omitempty"`
	MeetingLink       string                `json:"meeting_link,omitempty"`
	MeetingCreated    bool                  `json:"meeting_created"`
	TranscriptCreated bool                  `json:"transcript_created"`
	Meeting           *MeetingResponse      `json:"meeting,omitempty"`
	Notification      *NotificationResponse `json:"notification,omitempty"`
	PersistenceErrors []string              `json:"persistence_errors,omitempty"`
	Error             string                `json:"error,omitempty"`
	DurationMs        int64                 `json:"duration_ms"`
}

// BatchResponse lists outcomes in submission order
type BatchResponse struct {
	Outcomes  []OutcomeResponse `json:"outcomes"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// PlaceCallResponse acknowledges a placed call
type PlaceCallResponse struct {
	CallID  string `json:"call_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ToMeetingResponse converts a meeting record
func ToMeetingResponse(m *entities.MeetingRecord) *MeetingResponse {
	if m == nil {
		return nil
	}
	resp := &MeetingResponse{
		ID:           m.ID.String(),
		Name:         m.Name,
		Email:        m.Email,
		Date:         m.Date,
		Time:         m.Time,
		TimeZone:     m.TimeZone,
		MeetingLink:  m.MeetingLink,
		FallbackUsed: m.FallbackUsed,
		NotifiedAt:   m.NotifiedAt,
		CreatedAt:    m.CreatedAt,
	}
	if m.CallID != nil {
		resp.CallID = *m.CallID
	}
	return resp
}

// ToMeetingResponses converts a list of meeting records
func ToMeetingResponses(records []*entities.MeetingRecord) []MeetingResponse {
	out := make([]MeetingResponse, 0, len(records))
	for _, m := range records {
		out = append(out, *ToMeetingResponse(m))
	}
	return out
}

// ToTranscriptResponses converts a list of stored transcripts
func ToTranscriptResponses(transcripts []*entities.CallTranscript) []TranscriptResponse {
	out := make([]TranscriptResponse, 0, len(transcripts))
	for _, t := range transcripts {
		out = append(out, TranscriptResponse{
			CallID:     t.CallID,
			Transcript: t.Transcript,
			Summary:    t.Summary,
			Metadata:   t.Metadata,
			CreatedAt:  t.CreatedAt,
		})
	}
	return out
}

// ToOutcomeResponse converts a pipeline outcome
func ToOutcomeResponse(o *entities.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		CallID:            o.CallID,
		Status:            string(o.Status),
		Stage:             string(o.Stage),
		FallbackUsed:      o.FallbackUsed,
		FallbackReason:    o.FallbackReason,
		MeetingLink:       o.MeetingLink,
		MeetingCreated:    o.MeetingCreated,
		TranscriptCreated: o.TranscriptCreated,
		Meeting:           ToMeetingResponse(o.Meeting),
		PersistenceErrors: o.PersistenceErrors,
		Error:             o.ErrorMessage(),
	}
	if !o.FinishedAt.IsZero() {
		resp.DurationMs = o.FinishedAt.Sub(o.StartedAt).Milliseconds()
	}
	if n := o.Notification; n != nil {
		resp.Notification = &NotificationResponse{
			State:    string(n.State),
			Attempts: n.Attempts,
		}
		for _, d := range n.Delays {
			resp.Notification.Delays = append(resp.Notification.Delays, d.String())
		}
		if n.Err != nil {
			resp.Notification.Error = n.Err.Error()
		}
	}
	return resp
}

// ToBatchResponse converts batch outcomes, preserving order
func ToBatchResponse(outcomes []*entities.Outcome) BatchResponse {
	resp := BatchResponse{Outcomes: make([]OutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		resp.Outcomes = append(resp.Outcomes, ToOutcomeResponse(o))
		if o.Status.Succeeded() {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return resp
}
