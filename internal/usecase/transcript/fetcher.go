package transcript

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
	"github.com/johnquangdev/interview-scheduler/pkg/callprovider"
)

// CallSource is the provider operation the fetcher depends on
type CallSource interface {
	GetCall(ctx context.Context, callID string) (*callprovider.CallDetails, error)
}

// CallDetails is the fetched content of one completed call
type CallDetails struct {
	CallID     string
	Transcript string
	Summary    string
	Name       string
	Email      string
	Status     string
	Raw        []byte
}

// Fetcher retrieves transcripts from the call provider. It never retries;
// retry policy belongs to the caller.
type Fetcher struct {
	source CallSource
	logger *zap.Logger
}

// NewFetcher creates a transcript fetcher
func NewFetcher(source CallSource, logger *zap.Logger) *Fetcher {
	return &Fetcher{source: source, logger: logger}
}

// Fetch returns transcript, summary and provider-captured contact data for the call
func (f *Fetcher) Fetch(ctx context.Context, callID string) (*CallDetails, error) {
	if callID == "" {
		return nil, fmt.Errorf("%w: empty call id", usecaseErrors.ErrCallNotFound)
	}

	call, err := f.source.GetCall(ctx, callID)
	if err != nil {
		if errors.Is(err, callprovider.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", usecaseErrors.ErrCallNotFound, callID)
		}
		f.logger.Warn("call provider request failed", zap.String("call_id", callID), zap.Error(err))
		return nil, fmt.Errorf("%w: call provider: %w", usecaseErrors.ErrUpstreamUnavailable, err)
	}

	name, email := call.Contact()
	return &CallDetails{
		CallID:     callID,
		Transcript: call.ConcatenatedTranscript,
		Summary:    call.Summary,
		Name:       name,
		Email:      email,
		Status:     call.Status,
		Raw:        call.Raw,
	}, nil
}
