package entities

import "time"

// Stage is one step of the post-call pipeline
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageExtracting Stage = "extracting"
	StagePersisting Stage = "persisting"
	StageScheduling Stage = "scheduling"
	StageNotifying  Stage = "notifying"
	StageDone       Stage = "done"
)

// OutcomeStatus is the terminal state of one pipeline run
type OutcomeStatus string

const (
	OutcomeCompleted             OutcomeStatus = "completed"
	OutcomeCompletedFallback     OutcomeStatus = "completed_fallback"
	OutcomeAlreadyCompleted      OutcomeStatus = "already_completed"
	OutcomeFetchFailed           OutcomeStatus = "fetch_failed"
	OutcomeInvalidContact        OutcomeStatus = "invalid_contact"
	OutcomePersistenceFailed     OutcomeStatus = "persistence_failed"
	OutcomeSchedulingFailed      OutcomeStatus = "scheduling_failed"
	OutcomeNotificationExhausted OutcomeStatus = "notification_exhausted"
	OutcomeInProgress            OutcomeStatus = "in_progress"
)

// Succeeded reports whether the invitee has (or already had) a meeting and a notification
func (s OutcomeStatus) Succeeded() bool {
	switch s {
	case OutcomeCompleted, OutcomeCompletedFallback, OutcomeAlreadyCompleted:
		return true
	}
	return false
}

// NotificationState is the state of the notification retry machine
type NotificationState string

const (
	NotificationPending    NotificationState = "pending"
	NotificationAttempting NotificationState = "attempting"
	NotificationSent       NotificationState = "sent"
	NotificationExhausted  NotificationState = "exhausted"
)

// NotificationResult reports how delivery of one notification ended
type NotificationResult struct {
	State    NotificationState `json:"state"`
	Attempts int               `json:"attempts"`
	Delays   []time.Duration   `json:"delays,omitempty"`
	Err      error             `json:"-"`
}

// Outcome is the explicit result of one pipeline run
type Outcome struct {
	CallID            string              `json:"call_id"`
	Status            OutcomeStatus       `json:"status"`
	Stage             Stage               `json:"stage"`
	FallbackUsed      bool                `json:"fallback_used"`
	FallbackReason    string              `json:"fallback_reason,omitempty"`
	Meeting           *MeetingRecord      `json:"meeting,omitempty"`
	MeetingLink       string              `json:"meeting_link,omitempty"`
	MeetingCreated    bool                `json:"meeting_created"`
	TranscriptCreated bool                `json:"transcript_created"`
	PersistenceErrors []string            `json:"persistence_errors,omitempty"`
	Notification      *NotificationResult `json:"notification,omitempty"`
	Err               error               `json:"-"`
	StartedAt         time.Time           `json:"started_at"`
	FinishedAt        time.Time           `json:"finished_at"`
}

// ErrorMessage returns the terminal error message, if any
func (o *Outcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
