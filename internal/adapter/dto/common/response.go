package common

// ListResponse wraps a collection with its size
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// NewListResponse builds a ListResponse; a nil slice is reported as zero items
func NewListResponse(items interface{}, count int) ListResponse {
	return ListResponse{Items: items, Count: count}
}

// StatusResponse is a bare acknowledgement
type StatusResponse struct {
	Status string `json:"status"`
	CallID string `json:"call_id,omitempty"`
}
