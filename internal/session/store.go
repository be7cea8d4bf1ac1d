package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/storage"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrNoSession is returned when an operation needs a current session
var ErrNoSession = errors.New("no current session")

// ErrNotFound is returned for unknown session ids
var ErrNotFound = errors.New("session not found")

const maxTitleLength = 40

// Store is the ordered collection of search sessions. Exactly one session is
// current whenever the collection is non-empty.
type Store struct {
	store        storage.Store
	sessions     []*Session
	currentID    string
	historyLimit int

	now   func() time.Time
	newID func() string
}

// Option configures a Store
type Option func(*Store)

// WithHistoryLimit overrides the per-session transcript cap
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides session id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore loads sessions from the persistence adapter
func NewStore(ctx context.Context, st storage.Store, opts ...Option) *Store {
	s := &Store{
		store:        st,
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reload(ctx)
	return s
}

// Reload replaces in-memory state with what is persisted, repairing the
// current id if it no longer points at a session
func (s *Store) Reload(ctx context.Context) {
	loaded := storage.Load(ctx, s.store, storage.KeySessions, []*Session{})
	s.sessions = s.sessions[:0]
	for _, sess := range loaded {
		if sess == nil || sess.ID == "" {
			continue
		}
		s.sessions = append(s.sessions, sess)
	}
	s.currentID = storage.Load(ctx, s.store, storage.KeyCurrentSession, "")
	if s.find(s.currentID) == nil {
		s.currentID = s.mostRecentID()
	}
}

// Create appends a new session and makes it current
func (s *Store) Create(ctx context.Context, initialTitle string) *Session {
	title := strings.TrimSpace(initialTitle)
	if title == "" {
		title = DefaultTitle
	}
	sess := &Session{
		ID:                  s.newID(),
		Title:               title,
		Timestamp:           s.now(),
		ConversationHistory: []Message{},
	}
	s.sessions = append(s.sessions, sess)
	s.currentID = sess.ID
	log.Debug("session created", "id", sess.ID, "title", title)
	s.persist(ctx)
	return sess.Clone()
}

// Current returns a copy of the current session, or nil
func (s *Store) Current() *Session {
	return s.find(s.currentID).Clone()
}

// CurrentID returns the current session id, empty when there are none
func (s *Store) CurrentID() string {
	return s.currentID
}

// Get returns a copy of a session by id
func (s *Store) Get(id string) (*Session, bool) {
	sess := s.find(id)
	if sess == nil {
		return nil, false
	}
	return sess.Clone(), true
}

// List returns copies of all sessions in creation order
func (s *Store) List() []*Session {
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	return out
}

// Len returns the number of sessions
func (s *Store) Len() int {
	return len(s.sessions)
}

// AppendMessage appends to the current transcript, dropping the oldest
// entries beyond the history limit
func (s *Store) AppendMessage(ctx context.Context, role, content string) error {
	sess := s.find(s.currentID)
	if sess == nil {
		return ErrNoSession
	}
	sess.ConversationHistory = append(sess.ConversationHistory, Message{Role: role, Content: content})
	if over := len(sess.ConversationHistory) - s.historyLimit; over > 0 {
		sess.ConversationHistory = append([]Message(nil), sess.ConversationHistory[over:]...)
	}
	s.persist(ctx)
	return nil
}

// SetProducts replaces the current session's product list. A nil slice
// clears it back to "never searched".
func (s *Store) SetProducts(ctx context.Context, products []product.Product) error {
	sess := s.find(s.currentID)
	if sess == nil {
		return ErrNoSession
	}
	if products == nil {
		sess.Products = nil
	} else {
		sess.Products = append([]product.Product{}, products...)
	}
	s.persist(ctx)
	return nil
}

// SetSearchContext replaces the current session's search context
func (s *Store) SetSearchContext(ctx context.Context, sc *SearchContext) error {
	sess := s.find(s.currentID)
	if sess == nil {
		return ErrNoSession
	}
	if sc == nil {
		sess.SearchContext = nil
	} else {
		c := *sc
		sess.SearchContext = &c
	}
	s.persist(ctx)
	return nil
}

// SetActiveFilters records the filter tags active for the current session
func (s *Store) SetActiveFilters(ctx context.Context, tags []string) error {
	sess := s.find(s.currentID)
	if sess == nil {
		return ErrNoSession
	}
	sess.ActiveFilters = append([]string(nil), tags...)
	s.persist(ctx)
	return nil
}

// SetTitleFromMessage titles the current session after its first message,
// only while it still has the default title
func (s *Store) SetTitleFromMessage(ctx context.Context, message string) error {
	sess := s.find(s.currentID)
	if sess == nil {
		return ErrNoSession
	}
	if sess.Title != DefaultTitle {
		return nil
	}
	title := strings.Join(strings.Fields(message), " ")
	if title == "" {
		return nil
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		title = string([]rune(title)[:maxTitleLength]) + "..."
	}
	sess.Title = title
	s.persist(ctx)
	return nil
}

// Rename sets a session's title
func (s *Store) Rename(ctx context.Context, id, title string) error {
	sess := s.find(id)
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	sess.Title = title
	s.persist(ctx)
	return nil
}

// SwitchTo makes a session current and returns a copy of it
func (s *Store) SwitchTo(ctx context.Context, id string) (*Session, error) {
	sess := s.find(id)
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.currentID = sess.ID
	s.persist(ctx)
	return sess.Clone(), nil
}

// Delete removes a session. Deleting the current session promotes the most
// recently created remaining one, or leaves no current session.
func (s *Store) Delete(ctx context.Context, id string) error {
	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.currentID == id {
		s.currentID = s.mostRecentID()
	}
	log.Debug("session deleted", "id", id, "current", s.currentID)
	s.persist(ctx)
	return nil
}

// Clear deletes every session
func (s *Store) Clear(ctx context.Context) {
	s.sessions = nil
	s.currentID = ""
	s.persist(ctx)
}

// Match is a session found by Find
type Match struct {
	Session *Session
	Rank    int
}

// Find fuzzy matches query against titles and transcripts, best first
func (s *Store) Find(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var matches []Match
	for _, sess := range s.sessions {
		best := -1
		candidates := []string{sess.Title}
		for _, m := range sess.ConversationHistory {
			if m.Role == RoleUser {
				candidates = append(candidates, m.Content)
			}
		}
		for _, c := range candidates {
			rank := fuzzy.RankMatchFold(query, c)
			if rank >= 0 && (best < 0 || rank < best) {
				best = rank
			}
		}
		if best >= 0 {
			matches = append(matches, Match{Session: sess.Clone(), Rank: best})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rank < matches[j].Rank
	})
	return matches
}

func (s *Store) find(id string) *Session {
	if id == "" {
		return nil
	}
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func (s *Store) mostRecentID() string {
	var latest *Session
	for _, sess := range s.sessions {
		if latest == nil || !sess.Timestamp.Before(latest.Timestamp) {
			latest = sess
		}
	}
	if latest == nil {
		return ""
	}
	return latest.ID
}

func (s *Store) persist(ctx context.Context) {
	sessions := s.sessions
	if sessions == nil {
		sessions = []*Session{}
	}
	storage.Save(ctx, s.store, storage.KeySessions, sessions)
	storage.Save(ctx, s.store, storage.KeyCurrentSession, s.currentID)
}
