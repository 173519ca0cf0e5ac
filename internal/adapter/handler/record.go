package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scheduler/errors"
	"github.com/johnquangdev/interview-scheduler/internal/adapter/dto/call"
	"github.com/johnquangdev/interview-scheduler/internal/adapter/dto/common"
	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
)

// RecordReader lists stored transcripts and meetings
type RecordReader interface {
	FindTranscripts(ctx context.Context) ([]*entities.CallTranscript, error)
	FindMeetings(ctx context.Context) ([]*entities.MeetingRecord, error)
}

// Record serves read-only views of the store
type Record struct {
	store  RecordReader
	logger *zap.Logger
}

// NewRecord creates a new record handler
func NewRecord(store RecordReader, logger *zap.Logger) *Record {
	return &Record{store: store, logger: logger}
}

// ListMeetings returns every stored meeting, newest first
func (h *Record) ListMeetings(c echo.Context) error {
	meetings, err := h.store.FindMeetings(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrPersistenceUnavailable("find meetings", err))
	}
	items := call.ToMeetingResponses(meetings)
	return HandleSuccess(h.logger, c, common.NewListResponse(items, len(items)))
}

// ListTranscripts returns every stored transcript, newest first
func (h *Record) ListTranscripts(c echo.Context) error {
	transcripts, err := h.store.FindTranscripts(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrPersistenceUnavailable("find transcripts", err))
	}
	items := call.ToTranscriptResponses(transcripts)
	return HandleSuccess(h.logger, c, common.NewListResponse(items, len(items)))
}
