package call

// PlaceCallRequest represents the request to start an outbound screening call
type PlaceCallRequest struct {
	PhoneNumber         string            `json:"phone_number" validate:"required,e164"`
	Task                string            `json:"task" validate:"required,max=8000"`
	Language            string            `json:"language,omitempty" validate:"omitempty,max=16"`
	Voice               string            `json:"voice,omitempty"`
	TransferPhoneNumber string            `json:"transfer_phone_number,omitempty" validate:"omitempty,e164"`
	Name                string            `json:"name,omitempty" validate:"omitempty,max=255"`
	Email               string            `json:"email,omitempty" validate:"omitempty,email"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// CompleteCallRequest optionally overrides the invitee captured by the provider
type CompleteCallRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// BatchItem is one call of a batch completion
type BatchItem struct {
	CallID string `json:"call_id" validate:"required"`
	Name   string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
}

// BatchCompleteRequest completes several calls in submission order
type BatchCompleteRequest struct {
	Calls []BatchItem `json:"calls" validate:"required,min=1,max=100,dive"`
}

// WebhookEvent is the subset of the provider's call-completed payload the service reads
type WebhookEvent struct {
	CallID    string `json:"call_id"`
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
}
