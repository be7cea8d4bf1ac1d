package events

import (
	"time"
)

// EventType identifies the type of event
type EventType string

const (
	// Session events
	SessionCreated  EventType = "session.created"
	SessionSwitched EventType = "session.switched"
	SessionDeleted  EventType = "session.deleted"
	SessionRenamed  EventType = "session.renamed"

	// Chat events
	ChatMessageSent     EventType = "chat.message.sent"
	ChatMessageReceived EventType = "chat.message.received"
	ChatFailed          EventType = "chat.failed"
	ChatDiscarded       EventType = "chat.discarded"

	// Result set events
	ProductsUpdated EventType = "products.updated"
	FiltersChanged  EventType = "filters.changed"

	// Collection events
	CartChanged      EventType = "cart.changed"
	FavoritesChanged EventType = "favorites.changed"

	// Quick view events
	QuickViewOpened       EventType = "quickview.opened"
	QuickViewClosed       EventType = "quickview.closed"
	RecommendationsLoaded EventType = "recommendations.loaded"
	RecommendationsFailed EventType = "recommendations.failed"

	// Another process changed persisted state
	StorageExternalChange EventType = "storage.external_change"
)

// Event is one published occurrence
type Event[T any] struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
}

// Payload is the data carried by app events. Only the fields relevant to
// the event type are set.
type Payload struct {
	ProductID string   `json:"product_id,omitempty"`
	State     string   `json:"state,omitempty"`
	Count     int      `json:"count,omitempty"`
	Filters   []string `json:"filters,omitempty"`
	Message   string   `json:"message,omitempty"`
	Key       string   `json:"key,omitempty"`
}

// EventFilter decides whether a subscriber receives an event
type EventFilter[T any] func(Event[T]) bool

// PublishOption customizes a published event
type PublishOption func(*PublishOptions)

// PublishOptions contains options for publishing events
type PublishOptions struct {
	SessionID string
}

// WithSessionID tags the event with the session it concerns
func WithSessionID(sessionID string) PublishOption {
	return func(opts *PublishOptions) {
		opts.SessionID = sessionID
	}
}

// FilterByType accepts only the given event types
func FilterByType[T any](eventTypes ...EventType) EventFilter[T] {
	typeMap := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		typeMap[t] = true
	}
	return func(event Event[T]) bool {
		return typeMap[event.Type]
	}
}

// FilterBySessionID accepts only events for one session
func FilterBySessionID[T any](sessionID string) EventFilter[T] {
	return func(event Event[T]) bool {
		return event.SessionID == sessionID
	}
}
