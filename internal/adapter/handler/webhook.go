package handler

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scheduler/errors"
	"github.com/johnquangdev/interview-scheduler/internal/adapter/dto/call"
	"github.com/johnquangdev/interview-scheduler/internal/adapter/dto/common"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/pipeline"
	"github.com/johnquangdev/interview-scheduler/pkg/callprovider"
)

// SignatureHeader carries the hex HMAC-SHA256 of the webhook body
const SignatureHeader = "X-Webhook-Signature"

// WebhookHandler handles call-completed webhooks from the call provider
type WebhookHandler struct {
	pipeline Pipeline
	secret   string
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(p Pipeline, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{pipeline: p, secret: secret, logger: logger}
}

// HandleCallWebhook verifies the payload and completes the call in the background
func (h *WebhookHandler) HandleCallWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	signature := strings.TrimPrefix(c.Request().Header.Get(SignatureHeader), "sha256=")
	if !callprovider.VerifyHMAC(h.secret, body, signature) {
		return HandleError(h.logger, c, errors.ErrInvalidSignature())
	}

	var event call.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil || strings.TrimSpace(event.CallID) == "" {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	if !event.Completed && event.Status != "completed" {
		h.logger.Debug("ignoring webhook for unfinished call",
			zap.String("call_id", event.CallID),
			zap.String("status", event.Status),
		)
		return HandleSuccess(h.logger, c, common.StatusResponse{Status: "ignored", CallID: event.CallID})
	}

	ctx := context.WithoutCancel(c.Request().Context())
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		outcome := h.pipeline.Complete(ctx, pipeline.CallRequest{CallID: event.CallID})
		h.logger.Info("webhook call completed",
			zap.String("call_id", outcome.CallID),
			zap.String("status", string(outcome.Status)),
			zap.String("error", outcome.ErrorMessage()),
		)
	}()

	return HandleAccepted(h.logger, c, common.StatusResponse{Status: "accepted", CallID: event.CallID})
}

// Wait blocks until every background run started by the handler has finished
func (h *WebhookHandler) Wait() {
	h.wg.Wait()
}
