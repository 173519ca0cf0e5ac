package errors

import "errors"

// Upstream errors
var (
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrCallNotFound        = errors.New("call not found")
)

// Extraction errors
var (
	ErrExtractionAmbiguous = errors.New("date/time could not be determined from transcript")
	ErrExtractionMalformed = errors.New("extraction output is malformed")
	ErrNotFuture           = errors.New("extracted date/time is not in the future")
)

// Scheduling errors
var (
	ErrSchedulingFailed = errors.New("calendar event could not be created")
)

// Persistence errors
var (
	ErrPersistenceUnavailable = errors.New("persistence store unavailable")
)

// Notification errors
var (
	ErrNotificationExhausted = errors.New("notification retries exhausted")
)

// Run errors
var (
	ErrInvalidContact = errors.New("invalid or missing contact details")
	ErrRunInProgress  = errors.New("call is already being processed")
)
