package entities

import "errors"

// Domain errors
var (
	// Contact errors
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("invalid name")

	// Meeting errors
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrInvalidMeetingKey = errors.New("invalid meeting key")

	// Transcript errors
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrEmptyCallID        = errors.New("call id is empty")
)
