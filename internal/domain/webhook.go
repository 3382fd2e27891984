package domain

// FitbitEvent is one entry of the JSON array Fitbit pushes on data changes.
type FitbitEvent struct {
	CollectionType string `json:"collectionType"`
	Date           string `json:"date"`
	OwnerID        string `json:"ownerId"`
	OwnerType      string `json:"ownerType"`
	SubscriptionID string `json:"subscriptionId"`
}

// OuraEvent is the single JSON object Oura pushes per delivery.
type OuraEvent struct {
	EventType string `json:"event_type"`
	Object    string `json:"object"`
	Aspect    string `json:"aspect"`
	UserID    string `json:"user_id"`
	DataID    string `json:"data_id"`
	Timestamp string `json:"timestamp"`
}

// WebhookEvent is the provider-neutral form routed through the dispatcher and
// published to subscribers. Payload is the raw, unparsed request body; events
// are transient and forwarded to downstream processing, never persisted here.
type WebhookEvent struct {
	Provider string // "fitbit" or "oura"
	Topic    string // collectionType, or Oura "event_type/object"
	OwnerID  string
	Payload  []byte
	Verified bool
}
