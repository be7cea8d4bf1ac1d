package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	defaultBufferSize = 64
	defaultMaxEvents  = 256
)

// Broker is a typed publish-subscribe hub. Slow subscribers drop events
// rather than block publishers.
type Broker[T any] struct {
	subs         map[chan Event[T]]subscriber[T]
	mu           sync.RWMutex
	done         chan struct{}
	maxEvents    int
	bufferSize   int
	eventHistory []Event[T]
	historyMu    sync.RWMutex
}

type subscriber[T any] struct {
	id      string
	filters []EventFilter[T]
}

// Bus is the broker type the app publishes on
type Bus = Broker[Payload]

// NewBus creates the app event bus with default settings
func NewBus() *Bus {
	return NewBroker[Payload]()
}

// NewBroker creates a new broker with default settings
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithOptions[T](defaultBufferSize, defaultMaxEvents)
}

// NewBrokerWithOptions creates a new broker with custom settings
func NewBrokerWithOptions[T any](channelBufferSize, maxEvents int) *Broker[T] {
	return &Broker[T]{
		subs:         make(map[chan Event[T]]subscriber[T]),
		done:         make(chan struct{}),
		maxEvents:    maxEvents,
		bufferSize:   channelBufferSize,
		eventHistory: make([]Event[T], 0, maxEvents),
	}
}

// Publish sends an event to all matching subscribers. Safe on a nil broker.
func (b *Broker[T]) Publish(eventType EventType, payload T, opts ...PublishOption) {
	if b == nil || b.isShutdown() {
		return
	}

	options := &PublishOptions{}
	for _, opt := range opts {
		opt(options)
	}

	event := Event[T]{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
		SessionID: options.SessionID,
	}
	b.addToHistory(event)
	log.Debug("event", "type", eventType, "session", options.SessionID)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, sub := range b.subs {
		if !matches(event, sub.filters) {
			continue
		}
		select {
		case ch <- event:
		default:
			log.Warn("event channel full, dropping event", "subscriber", sub.id, "type", event.Type)
		}
	}
}

// Subscribe returns a channel of matching events, closed when ctx ends or
// the broker shuts down
func (b *Broker[T]) Subscribe(ctx context.Context, filters ...EventFilter[T]) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], b.bufferSize)
	if b.isShutdown() {
		close(ch)
		return ch
	}
	b.subs[ch] = subscriber[T]{id: uuid.New().String(), filters: filters}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.unsubscribe(ch)
	}()

	return ch
}

func (b *Broker[T]) unsubscribe(ch chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subs[ch]; exists {
		delete(b.subs, ch)
		close(ch)
	}
}

func matches[T any](event Event[T], filters []EventFilter[T]) bool {
	for _, filter := range filters {
		if !filter(event) {
			return false
		}
	}
	return true
}

func (b *Broker[T]) addToHistory(event Event[T]) {
	b.historyMu.Lock()
	defer b.historyMu.Unlock()

	b.eventHistory = append(b.eventHistory, event)
	if len(b.eventHistory) > b.maxEvents {
		copy(b.eventHistory, b.eventHistory[len(b.eventHistory)-b.maxEvents:])
		b.eventHistory = b.eventHistory[:b.maxEvents]
	}
}

// History returns recent events matching the given filters, oldest first
func (b *Broker[T]) History(filters ...EventFilter[T]) []Event[T] {
	if b == nil {
		return nil
	}
	b.historyMu.RLock()
	defer b.historyMu.RUnlock()

	var result []Event[T]
	for _, event := range b.eventHistory {
		if matches(event, filters) {
			result = append(result, event)
		}
	}
	return result
}

// SubscriberCount returns the number of live subscriptions
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker[T]) isShutdown() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Shutdown closes every subscriber channel; later publishes are dropped
func (b *Broker[T]) Shutdown() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isShutdown() {
		return
	}
	close(b.done)
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *Broker[T]) String() string {
	return fmt.Sprintf("Broker[subscribers=%d, history=%d, shutdown=%v]",
		b.SubscriberCount(), len(b.History()), b.isShutdown())
}
