// Package pubsub fans verified webhook events out to in-process subscribers
// such as the dispatcher and debugging taps.
package pubsub

import (
	"context"
	"sync"

	"jarvis-integrations-layer/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventChannel represents one subscription.
type EventChannel struct {
	ID     string
	Filter *EventFilter
	Events chan *domain.WebhookEvent
	Done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// EventFilter narrows which webhook events a subscriber receives.
type EventFilter struct {
	Provider string   // "fitbit", "oura", or empty for all
	Topics   []string // collection types / event kinds, empty for all
}

// EventPubSub manages webhook event subscriptions.
type EventPubSub struct {
	mu       sync.RWMutex
	channels map[string]*EventChannel
	logger   zerolog.Logger
}

// NewEventPubSub creates a new in-process pub/sub.
func NewEventPubSub(logger zerolog.Logger) *EventPubSub {
	return &EventPubSub{
		channels: make(map[string]*EventChannel),
		logger:   logger,
	}
}

// Subscribe creates a new subscription channel. The subscription is removed
// when ctx is cancelled.
func (ps *EventPubSub) Subscribe(ctx context.Context, filter *EventFilter) *EventChannel {
	subCtx, cancel := context.WithCancel(ctx)

	channel := &EventChannel{
		ID:     uuid.NewString(),
		Filter: filter,
		Events: make(chan *domain.WebhookEvent, 10),
		Done:   make(chan struct{}),
		ctx:    subCtx,
		cancel: cancel,
	}

	ps.mu.Lock()
	ps.channels[channel.ID] = channel
	ps.mu.Unlock()

	ps.logger.Info().
		Str("channelId", channel.ID).
		Interface("filter", filter).
		Msg("Webhook subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(channel.ID)
	}()

	return channel
}

// Unsubscribe removes a subscription channel.
func (ps *EventPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Events)
	close(channel.Done)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Info().
		Str("channelId", channelID).
		Msg("Webhook subscription removed")
}

// Publish broadcasts a webhook event to all matching subscribers. Delivery is
// non-blocking; slow subscribers with a full buffer miss the event.
func (ps *EventPubSub) Publish(event *domain.WebhookEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	publishedCount := 0
	for _, channel := range ps.channels {
		if !matchesFilter(event, channel.Filter) {
			continue
		}
		select {
		case channel.Events <- event:
			publishedCount++
		case <-channel.ctx.Done():
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Msg("Channel buffer full, dropping event")
		}
	}

	if publishedCount > 0 {
		ps.logger.Debug().
			Str("provider", event.Provider).
			Str("topic", event.Topic).
			Int("subscribers", publishedCount).
			Msg("Published webhook event to subscribers")
	}
}

func matchesFilter(event *domain.WebhookEvent, filter *EventFilter) bool {
	if filter == nil {
		return true
	}

	if filter.Provider != "" && event.Provider != filter.Provider {
		return false
	}

	if len(filter.Topics) > 0 {
		topicMatch := false
		for _, topic := range filter.Topics {
			if event.Topic == topic {
				topicMatch = true
				break
			}
		}
		if !topicMatch {
			return false
		}
	}

	return true
}

// GetStats returns pub/sub statistics for the health endpoint.
func (ps *EventPubSub) GetStats() map[string]interface{} {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return map[string]interface{}{
		"active_subscriptions": len(ps.channels),
	}
}
