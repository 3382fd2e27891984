package domain

import "time"

// RequestStatus is the state of a tracked completion request.
// Legal transitions: pending -> processing -> completed|failed.
// cancelled is set externally. Terminal states never transition further.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestProcessing RequestStatus = "processing"
	RequestCompleted  RequestStatus = "completed"
	RequestFailed     RequestStatus = "failed"
	RequestCancelled  RequestStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestFailed || s == RequestCancelled
}

// RequestTypeIntegrationCompletion tags requests that finish an integration
// setup conversationally through the assistant backend.
const RequestTypeIntegrationCompletion = "integration_completion"

// RequestMetadata carries the human-readable context of a completion request
// and, once known, the assistant's response.
type RequestMetadata struct {
	Service    string `json:"service_name" bson:"service_name"`
	Message    string `json:"message" bson:"message"`
	Response   string `json:"response,omitempty" bson:"response,omitempty"`
	Error      string `json:"error,omitempty" bson:"error,omitempty"`
	TotalTurns int    `json:"total_turns,omitempty" bson:"total_turns,omitempty"`
}

// CompletionRequest is a trackable unit of asynchronous work observed by a
// polling client until it reaches a terminal status.
type CompletionRequest struct {
	ID             string          `json:"id"`
	RequestID      string          `json:"request_id"`
	UserID         string          `json:"user_id"`
	Type           string          `json:"request_type"`
	Status         RequestStatus   `json:"status"`
	Metadata       RequestMetadata `json:"metadata"`
	ConversationID string          `json:"conversation_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
