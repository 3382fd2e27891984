package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/metrics"
	"jarvis-integrations-layer/internal/infrastructure/pubsub"
	"jarvis-integrations-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CompletionService tracks integration completion requests: asynchronous
// assistant conversations that finish a newly connected service's setup.
// Requests move pending -> processing -> completed|failed; cancelled is set
// externally. Terminal states are immutable.
type CompletionService struct {
	requests  ports.RequestRepository
	assistant ports.AssistantClient
	events    *pubsub.EventPubSub
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewCompletionService creates the completion tracking service. events may be
// nil when no in-process observers exist.
func NewCompletionService(
	requests ports.RequestRepository,
	assistant ports.AssistantClient,
	events *pubsub.EventPubSub,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *CompletionService {
	return &CompletionService{
		requests:  requests,
		assistant: assistant,
		events:    events,
		metrics:   m,
		logger:    logger.With().Str("component", "completion_service").Logger(),
	}
}

// newRequestID builds a tracking id unique across restarts without needing a
// round trip to the database.
func newRequestID() string {
	fragment := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("integration-completion-%d-%s", time.Now().UnixMilli(), fragment)
}

// Create registers a new pending completion request and returns it.
func (s *CompletionService) Create(ctx context.Context, userID, service, message string) (*domain.CompletionRequest, error) {
	now := time.Now()
	req := &domain.CompletionRequest{
		RequestID: newRequestID(),
		UserID:    userID,
		Type:      domain.RequestTypeIntegrationCompletion,
		Status:    domain.RequestPending,
		Metadata: domain.RequestMetadata{
			Service: service,
			Message: message,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("requestId", req.RequestID).
		Str("userId", userID).
		Str("service", service).
		Msg("Completion request created")

	return req, nil
}

// Get returns the request for a tracking id, or ErrRequestNotFound.
func (s *CompletionService) Get(ctx context.Context, requestID string) (*domain.CompletionRequest, error) {
	req, err := s.requests.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrRequestNotFound
	}
	return req, nil
}

// transition enforces the request state machine. Re-asserting the current
// terminal status is a no-op; any other transition out of a terminal status
// is rejected.
func (s *CompletionService) transition(ctx context.Context, requestID string, status domain.RequestStatus, meta *domain.RequestMetadata) error {
	current, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}

	if current.Status.Terminal() {
		if current.Status == status {
			return nil
		}
		return domain.ErrTerminalState
	}

	if err := s.requests.UpdateStatus(ctx, requestID, status, meta); err != nil {
		return err
	}

	if status.Terminal() {
		if s.metrics != nil {
			s.metrics.CompletionRuns.WithLabelValues(string(status)).Inc()
		}
		// In-process observers (SSE bridges, tests) learn about terminal
		// requests without polling the store.
		if s.events != nil {
			s.events.Publish(&domain.WebhookEvent{
				Provider: "completion",
				Topic:    string(status),
				OwnerID:  current.UserID,
				Payload:  []byte(requestID),
				Verified: true,
			})
		}
	}
	return nil
}

// MarkProcessing moves a pending request into processing.
func (s *CompletionService) MarkProcessing(ctx context.Context, requestID string) error {
	return s.transition(ctx, requestID, domain.RequestProcessing, nil)
}

// MarkCompleted finalizes a request with the assistant's answer.
func (s *CompletionService) MarkCompleted(ctx context.Context, requestID string, meta *domain.RequestMetadata) error {
	return s.transition(ctx, requestID, domain.RequestCompleted, meta)
}

// MarkFailed finalizes a request with an error message. Idempotent on an
// already-failed request.
func (s *CompletionService) MarkFailed(ctx context.Context, requestID, errMsg string) error {
	current, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}
	meta := current.Metadata
	meta.Error = errMsg
	return s.transition(ctx, requestID, domain.RequestFailed, &meta)
}

// Cancel marks a non-terminal request cancelled.
func (s *CompletionService) Cancel(ctx context.Context, requestID string) error {
	return s.transition(ctx, requestID, domain.RequestCancelled, nil)
}

// Run drives a request to a terminal state: marks it processing, calls the
// assistant backend and finalizes with the answer. Deferred finalization
// guarantees a terminal status even when the run panics or errors early.
func (s *CompletionService) Run(ctx context.Context, requestID string) (err error) {
	finalized := false
	defer func() {
		if finalized {
			return
		}
		msg := "completion run aborted before finishing"
		if err != nil {
			msg = err.Error()
		}
		if markErr := s.MarkFailed(context.WithoutCancel(ctx), requestID, msg); markErr != nil {
			s.logger.Error().Err(markErr).
				Str("requestId", requestID).
				Msg("Failed to finalize aborted completion request")
		}
	}()

	req, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}

	if err = s.MarkProcessing(ctx, requestID); err != nil {
		return err
	}

	reply, err := s.assistant.CompleteIntegration(ctx, req.UserID, req.Metadata.Service, req.RequestID, req.Metadata.Message)
	if err != nil {
		return fmt.Errorf("assistant completion: %w", err)
	}

	if reply.ConversationID != "" {
		if convErr := s.requests.SetConversationID(ctx, requestID, reply.ConversationID); convErr != nil {
			s.logger.Warn().Err(convErr).
				Str("requestId", requestID).
				Msg("Failed to attach conversation id")
		}
	}

	meta := req.Metadata
	meta.Response = reply.Response
	meta.TotalTurns = reply.TotalTurns

	if err = s.MarkCompleted(ctx, requestID, &meta); err != nil {
		return err
	}
	finalized = true

	s.logger.Info().
		Str("requestId", requestID).
		Int("totalTurns", reply.TotalTurns).
		Msg("Completion request finished")

	return nil
}
