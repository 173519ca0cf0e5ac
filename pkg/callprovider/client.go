package callprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/johnquangdev/interview-scheduler/pkg/config"
)

// ErrNotFound is returned when the provider does not know the call
var ErrNotFound = errors.New("call not found")

// Client is a minimal voice-call provider client (Bland-style REST API)
type Client struct {
	apiKey   string
	baseURL  string
	voice    string
	language string
	client   *http.Client
}

// NewClient creates a provider client using the provided config
func NewClient(cfg *config.CallProviderConfig) *Client {
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		voice:    cfg.Voice,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// CallDetails is the provider view of one call
type CallDetails struct {
	CallID                 string                 `json:"call_id"`
	Status                 string                 `json:"status"`
	Completed              bool                   `json:"completed"`
	ConcatenatedTranscript string                 `json:"concatenated_transcript"`
	Summary                string                 `json:"summary"`
	Name                   string                 `json:"name,omitempty"`
	Email                  string                 `json:"email,omitempty"`
	To                     string                 `json:"to"`
	From                   string                 `json:"from"`
	Variables              map[string]interface{} `json:"variables,omitempty"`
	Metadata               map[string]interface{} `json:"metadata,omitempty"`
	Message                string                 `json:"message,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Contact returns the invitee name and email the provider captured, if any.
// Top-level fields win over request metadata, which wins over variables collected
// during the call. Each field is resolved on its own.
func (d *CallDetails) Contact() (name, email string) {
	name, email = strings.TrimSpace(d.Name), strings.TrimSpace(d.Email)
	for _, m := range []map[string]interface{}{d.Metadata, d.Variables} {
		if name == "" {
			name = stringValue(m, "name")
		}
		if email == "" {
			email = stringValue(m, "email")
		}
	}
	return name, email
}

func stringValue(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// CallLog is one entry of the call listing
type CallLog struct {
	CallID     string  `json:"call_id"`
	CreatedAt  string  `json:"created_at"`
	To         string  `json:"to"`
	From       string  `json:"from"`
	CallLength float64 `json:"call_length"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
	Completed  bool    `json:"completed"`
}

// PlaceCallRequest is the payload for POST /v1/calls
type PlaceCallRequest struct {
	PhoneNumber         string            `json:"phone_number"`
	Task                string            `json:"task"`
	Language            string            `json:"language,omitempty"`
	Voice               string            `json:"voice,omitempty"`
	TransferPhoneNumber string            `json:"transfer_phone_number,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// PlaceCallResponse is the provider acknowledgement of a placed call
type PlaceCallResponse struct {
	Status  string `json:"status"`
	CallID  string `json:"call_id"`
	Message string `json:"message,omitempty"`
}

// StatusError is returned when the provider answers with an unexpected status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("call provider returned status %d: %s", e.StatusCode, e.Body)
}

// GetCall fetches transcript, summary and metadata for one call
func (c *Client) GetCall(ctx context.Context, callID string) (*CallDetails, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/calls/"+url.PathEscape(callID), nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrNotFound
	}

	var details CallDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("decode call %s: %w", callID, err)
	}
	if details.Status == "error" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, details.Message)
	}
	if details.CallID == "" {
		details.CallID = callID
	}
	details.Raw = json.RawMessage(body)
	return &details, nil
}

// ListCalls returns the call logs of the account
func (c *Client) ListCalls(ctx context.Context) ([]CallLog, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/calls", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Calls []CallLog `json:"calls"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode call logs: %w", err)
	}
	return out.Calls, nil
}

// PlaceCall asks the provider to dial the number with the given task prompt
func (c *Client) PlaceCall(ctx context.Context, req PlaceCallRequest) (*PlaceCallResponse, error) {
	if req.Language == "" {
		req.Language = c.language
	}
	if req.Voice == "" {
		req.Voice = c.voice
	}

	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, "/v1/calls", b)
	if err != nil {
		return nil, err
	}

	var out PlaceCallResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode place call: %w", err)
	}
	if out.Status == "error" {
		return nil, fmt.Errorf("place call rejected: %s", out.Message)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 300:
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
