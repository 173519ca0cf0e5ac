package handler

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scheduler/errors"
	"github.com/johnquangdev/interview-scheduler/internal/adapter/dto/call"
	"github.com/johnquangdev/interview-scheduler/internal/adapter/dto/common"
	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/pipeline"
	"github.com/johnquangdev/interview-scheduler/pkg/callprovider"
)

// Pipeline completes calls
type Pipeline interface {
	Complete(ctx context.Context, req pipeline.CallRequest) *entities.Outcome
	CompleteBatch(ctx context.Context, reqs []pipeline.CallRequest) []*entities.Outcome
}

// CallProvider places and lists provider calls
type CallProvider interface {
	PlaceCall(ctx context.Context, req callprovider.PlaceCallRequest) (*callprovider.PlaceCallResponse, error)
	ListCalls(ctx context.Context) ([]callprovider.CallLog, error)
}

// Call handles call placement and post-call completion
type Call struct {
	pipeline Pipeline
	provider CallProvider
	logger   *zap.Logger
}

// NewCall creates a new call handler
func NewCall(p Pipeline, provider CallProvider, logger *zap.Logger) *Call {
	return &Call{pipeline: p, provider: provider, logger: logger}
}

// PlaceCall starts an outbound screening call
func (h *Call) PlaceCall(c echo.Context) error {
	var req call.PlaceCallRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	metadata := make(map[string]string, len(req.Metadata)+2)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if req.Name != "" {
		metadata["name"] = req.Name
	}
	if req.Email != "" {
		metadata["email"] = req.Email
	}

	resp, err := h.provider.PlaceCall(c.Request().Context(), callprovider.PlaceCallRequest{
		PhoneNumber:         req.PhoneNumber,
		Task:                req.Task,
		Language:            req.Language,
		Voice:               req.Voice,
		TransferPhoneNumber: req.TransferPhoneNumber,
		Metadata:            metadata,
	})
	if err != nil {
		return HandleError(h.logger, c, errors.ErrUpstreamUnavailable("call_provider", err))
	}

	h.logger.Info("call placed", zap.String("call_id", resp.CallID), zap.String("status", resp.Status))
	return HandleSuccess(h.logger, c, call.PlaceCallResponse{
		CallID:  resp.CallID,
		Status:  resp.Status,
		Message: resp.Message,
	})
}

// ListCalls returns the provider's call log
func (h *Call) ListCalls(c echo.Context) error {
	logs, err := h.provider.ListCalls(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrUpstreamUnavailable("call_provider", err))
	}
	if logs == nil {
		logs = []callprovider.CallLog{}
	}
	return HandleSuccess(h.logger, c, common.NewListResponse(logs, len(logs)))
}

// CompleteCall runs the post-call pipeline for one call and reports its outcome
func (h *Call) CompleteCall(c echo.Context) error {
	callID := strings.TrimSpace(c.Param("id"))
	if callID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("call id is required"))
	}

	var req call.CompleteCallRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	outcome := h.pipeline.Complete(c.Request().Context(), pipeline.CallRequest{
		CallID: callID,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err := outcomeError(outcome); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, call.ToOutcomeResponse(outcome))
}

// CompleteBatch runs the pipeline for several calls. Per-call failures are reported in the body.
func (h *Call) CompleteBatch(c echo.Context) error {
	var req call.BatchCompleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	reqs := make([]pipeline.CallRequest, 0, len(req.Calls))
	for _, item := range req.Calls {
		reqs = append(reqs, pipeline.CallRequest{CallID: item.CallID, Name: item.Name, Email: item.Email})
	}

	outcomes := h.pipeline.CompleteBatch(c.Request().Context(), reqs)
	return HandleSuccess(h.logger, c, call.ToBatchResponse(outcomes))
}

func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return errors.ErrInvalidPayload()
	}
	if err := c.Validate(v); err != nil {
		return errors.ErrInvalidArgument(err.Error())
	}
	return nil
}
