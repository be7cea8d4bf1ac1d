package session

import (
	"time"

	"github.com/entrepeneur4lyf/shopforge/internal/product"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTitle is the title of a session before its first message
const DefaultTitle = "New Search"

// DefaultHistoryLimit caps the transcript kept per session
const DefaultHistoryLimit = 20

// Message is one transcript entry
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PriceFilters are the numeric constraints found in a user's message
type PriceFilters struct {
	MaxPrice *float64 `json:"max_price,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
}

// Empty reports whether no bound is set
func (f PriceFilters) Empty() bool {
	return f.MaxPrice == nil && f.MinPrice == nil
}

// SearchContext is passed to the recommendation endpoint
type SearchContext struct {
	UserMessage    string       `json:"userMessage"`
	FiltersApplied PriceFilters `json:"filtersApplied"`
}

// Session is one search thread with its own transcript, results and filters
type Session struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Timestamp           time.Time         `json:"timestamp"`
	ConversationHistory []Message         `json:"conversationHistory"`
	Products            []product.Product `json:"products"`
	SearchContext       *SearchContext    `json:"searchContext"`
	ActiveFilters       []string          `json:"activeFilters,omitempty"`
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.ConversationHistory = append([]Message(nil), s.ConversationHistory...)
	if s.Products != nil {
		c.Products = append([]product.Product{}, s.Products...)
	}
	if s.SearchContext != nil {
		sc := *s.SearchContext
		c.SearchContext = &sc
	}
	c.ActiveFilters = append([]string(nil), s.ActiveFilters...)
	return &c
}

// MessageCount returns the transcript length
func (s *Session) MessageCount() int {
	return len(s.ConversationHistory)
}

// LastUserMessage returns the most recent user message, if any
func (s *Session) LastUserMessage() string {
	for i := len(s.ConversationHistory) - 1; i >= 0; i-- {
		if s.ConversationHistory[i].Role == RoleUser {
			return s.ConversationHistory[i].Content
		}
	}
	return ""
}
