package application

import (
	"context"
	"errors"
	"time"

	"jarvis-integrations-layer/internal/domain"

	"github.com/rs/zerolog"
)

// StatusTimedOut is reported by the poller when a request never reaches a
// terminal status within its attempt budget. It is an observer-side verdict;
// the stored request keeps whatever status it had.
const StatusTimedOut = "timed_out"

// PollResult is the poller's final observation of a request.
type PollResult struct {
	Request *domain.CompletionRequest
	// Status is the observed status, or StatusTimedOut when the attempt
	// budget ran out.
	Status string
}

// Poller watches a completion request until it reaches a terminal status or
// the attempt budget runs out. A short grace period before the first check
// lets the request record land before polling starts.
type Poller struct {
	service     *CompletionService
	grace       time.Duration
	interval    time.Duration
	maxAttempts int
	logger      zerolog.Logger
}

// NewPoller creates a poller with the default cadence: 2s grace, 5s interval,
// 60 attempts.
func NewPoller(service *CompletionService, logger zerolog.Logger) *Poller {
	return &Poller{
		service:     service,
		grace:       2 * time.Second,
		interval:    5 * time.Second,
		maxAttempts: 60,
		logger:      logger.With().Str("component", "request_poller").Logger(),
	}
}

// NewPollerWithCadence creates a poller with explicit timing, for tests.
func NewPollerWithCadence(service *CompletionService, grace, interval time.Duration, maxAttempts int, logger zerolog.Logger) *Poller {
	return &Poller{
		service:     service,
		grace:       grace,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("component", "request_poller").Logger(),
	}
}

// Observe blocks until the request reaches a terminal status, the attempt
// budget runs out, or ctx is cancelled. A request that does not exist yet is
// treated as still pending; it may simply not have landed.
func (p *Poller) Observe(ctx context.Context, requestID string) (*PollResult, error) {
	select {
	case <-time.After(p.grace):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var last *domain.CompletionRequest
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		req, err := p.service.Get(ctx, requestID)
		switch {
		case errors.Is(err, domain.ErrRequestNotFound):
			// Not landed yet; keep polling.
		case err != nil:
			return nil, err
		default:
			last = req
			if req.Status.Terminal() {
				return &PollResult{Request: req, Status: string(req.Status)}, nil
			}
		}

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-time.After(p.interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.logger.Warn().
		Str("requestId", requestID).
		Int("attempts", p.maxAttempts).
		Msg("Request never reached a terminal status")

	return &PollResult{Request: last, Status: StatusTimedOut}, nil
}
