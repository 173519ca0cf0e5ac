package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
	pkgvalidator "github.com/johnquangdev/interview-scheduler/pkg/validator"
)

const systemPrompt = `You read transcripts of phone calls in which a recruiter and a candidate agree on an interview slot.
Reply with the agreed interview date and time in exactly this format: YYYY/MM/DD, HH:MM
Use the 24-hour clock. Resolve relative expressions such as "tomorrow" or "next Monday" against the reference date.
Reply with nothing else. If no single date and time was agreed, reply with exactly: ` + Sentinel

// Completer is the language-model operation the extractor depends on
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Extractor derives the agreed interview slot from a transcript
type Extractor struct {
	llm       Completer
	parser    *Parser
	clock     clock.Clock
	validator *pkgvalidator.CustomValidator
	logger    *zap.Logger
}

// NewExtractor creates an extractor; clk supplies "now" for the future-date checks
func NewExtractor(llm Completer, parser *Parser, clk clock.Clock, logger *zap.Logger) *Extractor {
	return &Extractor{
		llm:       llm,
		parser:    parser,
		clock:     clk,
		validator: pkgvalidator.New(),
		logger:    logger,
	}
}

// Extract asks the model for the agreed slot and validates the answer.
// Name and email are taken from the caller, never from the transcript.
func (e *Extractor) Extract(ctx context.Context, transcript, name, email, callID string) (*entities.ExtractedDetails, error) {
	now := e.clock.Now()
	user := fmt.Sprintf("Reference date: %s (%s)\n\nTranscript:\n%s",
		now.In(e.parser.loc).Format("2006/01/02 Monday"), e.parser.loc.String(), strings.TrimSpace(transcript))

	answer, err := e.llm.Complete(ctx, systemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("%w: language model: %w", usecaseErrors.ErrUpstreamUnavailable, err)
	}

	startsAt, err := e.parser.Parse(answer, now)
	if err != nil {
		e.logger.Info("extraction rejected",
			zap.String("call_id", callID),
			zap.String("answer", truncate(answer, 64)),
			zap.Error(err),
		)
		return nil, err
	}

	details := &entities.ExtractedDetails{
		Name:         strings.TrimSpace(name),
		Email:        entities.NormalizeEmail(email),
		StartsAt:     startsAt,
		SourceCallID: callID,
	}
	if err := e.validator.Validate(details); err != nil {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrInvalidContact, err)
	}
	return details, nil
}

// Fallback builds the default details used when extraction fails
func (e *Extractor) Fallback(name, email, callID, hhmm string) (*entities.ExtractedDetails, error) {
	startsAt, err := e.parser.Fallback(e.clock.Now(), hhmm)
	if err != nil {
		return nil, err
	}
	details := &entities.ExtractedDetails{
		Name:         strings.TrimSpace(name),
		Email:        entities.NormalizeEmail(email),
		StartsAt:     startsAt,
		SourceCallID: callID,
	}
	if err := e.validator.Validate(details); err != nil {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrInvalidContact, err)
	}
	return details, nil
}
