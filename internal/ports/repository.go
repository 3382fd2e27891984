package ports

import (
	"context"

	"jarvis-integrations-layer/internal/domain"
)

// IntegrationRepository defines the interface for integration persistence.
// Rows are unique per (user, service); Upsert is keyed on that pair.
type IntegrationRepository interface {
	// Upsert creates or replaces the credential record for (userID, service)
	// and returns the stored row.
	Upsert(ctx context.Context, integration *domain.Integration) (*domain.Integration, error)

	// Get retrieves the integration for a user and service, or nil if absent.
	Get(ctx context.Context, userID, service string) (*domain.Integration, error)

	// ListByUser returns all integrations for a user, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Integration, error)

	// UpdateStatus sets the status of an existing row.
	UpdateStatus(ctx context.Context, userID, service string, status domain.IntegrationStatus) error

	// DeleteByID hard-deletes a row by id; reports whether a row existed.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DeleteByUserAndService hard-deletes the (user, service) row; reports
	// whether a row existed.
	DeleteByUserAndService(ctx context.Context, userID, service string) (bool, error)
}

// RequestRepository defines the interface for completion request persistence.
type RequestRepository interface {
	// Create inserts a new request record.
	Create(ctx context.Context, req *domain.CompletionRequest) error

	// GetByRequestID retrieves a request by its tracking id, or nil if absent.
	GetByRequestID(ctx context.Context, requestID string) (*domain.CompletionRequest, error)

	// UpdateStatus sets the status and merges metadata updates of an existing
	// request record.
	UpdateStatus(ctx context.Context, requestID string, status domain.RequestStatus, meta *domain.RequestMetadata) error

	// SetConversationID attaches the assistant conversation to a request.
	SetConversationID(ctx context.Context, requestID, conversationID string) error
}
