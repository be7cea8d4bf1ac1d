package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/backend"
	"github.com/entrepeneur4lyf/shopforge/internal/events"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
)

var (
	// ErrBusy is returned when a message is sent while another is outstanding
	ErrBusy = errors.New("a message is already being sent")
	// ErrEmptyMessage is returned for blank input; nothing is sent
	ErrEmptyMessage = errors.New("message is empty")
)

// Transcript texts used when the backend gives nothing better
const (
	errorReplyFormat    = "Sorry, there was an error: %s"
	failureReply        = "Sorry, I encountered an error. Please try again."
	fallbackReplyFormat = "I found results for '%s'!"
)

// Token ties a response to the exchange that requested it
type Token struct {
	SessionID string
	Seq       uint64
}

// Exchange is one outstanding chat request
type Exchange struct {
	Token   Token
	Message string
	Request backend.ChatRequest
}

// Begin validates text and records the user's side of an exchange: the
// message is in the transcript before the request exists. The caller sends
// Request and passes the result to Complete.
func (a *App) Begin(ctx context.Context, text string) (*Exchange, error) {
	message := strings.TrimSpace(text)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy {
		return nil, ErrBusy
	}

	cur := a.Sessions.Current()
	if cur == nil {
		cur = a.Sessions.Create(ctx, session.DefaultTitle)
		a.Events.Publish(events.SessionCreated, events.Payload{}, events.WithSessionID(cur.ID))
	}

	if err := a.Sessions.AppendMessage(ctx, session.RoleUser, message); err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	// The history sent includes this message.
	history := a.Sessions.Current().ConversationHistory
	if limit := a.Config.Chat.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	req := backend.ChatRequest{
		Message:             message,
		ConversationHistory: append([]session.Message{}, history...),
	}

	// A new search starts from a clean filter set.
	a.Filters.BeginSearch()
	_ = a.Sessions.SetActiveFilters(ctx, nil)
	if a.visible != nil {
		a.visible = a.Filters.Recompute().Products
	}
	a.History.Add(ctx, message)

	sc := session.ExtractSearchContext(message)
	_ = a.Sessions.SetSearchContext(ctx, &sc)

	a.seq++
	a.busy = true
	ex := &Exchange{
		Token:   Token{SessionID: cur.ID, Seq: a.seq},
		Message: message,
		Request: req,
	}
	a.Events.Publish(events.ChatMessageSent, events.Payload{Message: message}, events.WithSessionID(cur.ID))
	log.Debug("chat exchange started", "session", cur.ID, "seq", a.seq, "history", len(req.ConversationHistory))
	return ex, nil
}

// Result describes how an exchange ended
type Result struct {
	// Reply is the assistant text appended to the transcript
	Reply string
	// Products is the visible list after the exchange
	Products        []product.Product
	ProductsChanged bool
	// Failed is set when the request itself failed
	Failed bool
	// Discarded is set when the response arrived for a stale exchange
	Discarded bool
}

// Complete applies a backend response (or failure) to the exchange's
// session. Responses for stale exchanges are dropped without touching
// state. The busy flag is always cleared for the current exchange.
func (a *App) Complete(ctx context.Context, ex *Exchange, resp backend.ChatResponse, sendErr error) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ex.Token.Seq != a.seq || a.Sessions.CurrentID() != ex.Token.SessionID {
		if ex.Token.Seq == a.seq {
			a.busy = false
		}
		log.Debug("discarding stale chat response", "session", ex.Token.SessionID, "seq", ex.Token.Seq, "current", a.seq)
		a.Events.Publish(events.ChatDiscarded, events.Payload{Message: ex.Message}, events.WithSessionID(ex.Token.SessionID))
		return Result{Discarded: true, Products: append([]product.Product(nil), a.visible...)}
	}
	defer func() { a.busy = false }()

	sid := events.WithSessionID(ex.Token.SessionID)
	if sendErr != nil {
		log.Warn("chat request failed", "err", sendErr)
		_ = a.Sessions.AppendMessage(ctx, session.RoleAssistant, failureReply)
		a.Events.Publish(events.ChatFailed, events.Payload{Message: sendErr.Error()}, sid)
		return Result{Reply: failureReply, Failed: true, Products: append([]product.Product(nil), a.visible...)}
	}

	res := Result{}
	if resp.Error != "" {
		res.Reply = fmt.Sprintf(errorReplyFormat, resp.Error)
	} else {
		res.Reply = resp.Message
		if strings.TrimSpace(res.Reply) == "" {
			res.Reply = fmt.Sprintf(fallbackReplyFormat, ex.Message)
		}
	}
	_ = a.Sessions.AppendMessage(ctx, session.RoleAssistant, res.Reply)

	if resp.Error == "" && resp.HasProducts() {
		res.ProductsChanged = true
		if len(resp.Products) > 0 {
			_ = a.Sessions.SetProducts(ctx, resp.Products)
			a.Filters.SetBase(resp.Products)
			a.visible = a.Filters.Recompute().Products

			cur := a.Sessions.Current()
			if cur != nil && cur.SearchContext != nil {
				merged := session.MergeBackendFilters(*cur.SearchContext, resp.FiltersApplied)
				_ = a.Sessions.SetSearchContext(ctx, &merged)
			}
		} else {
			// An explicit empty list means no results: clear them.
			_ = a.Sessions.SetProducts(ctx, []product.Product{})
			_ = a.Sessions.SetSearchContext(ctx, nil)
			a.Filters.Reset(nil, nil)
			a.visible = []product.Product{}
		}
		a.Events.Publish(events.ProductsUpdated, events.Payload{Count: len(a.visible)}, sid)
	}

	_ = a.Sessions.SetTitleFromMessage(ctx, ex.Message)
	a.Events.Publish(events.ChatMessageReceived, events.Payload{Message: res.Reply, Count: len(resp.Products)}, sid)
	res.Products = append([]product.Product(nil), a.visible...)
	return res
}

// Send runs a full exchange synchronously
func (a *App) Send(ctx context.Context, text string) (Result, error) {
	ex, err := a.Begin(ctx, text)
	if err != nil {
		return Result{}, err
	}
	resp, sendErr := a.backend.Chat(ctx, ex.Request)
	return a.Complete(ctx, ex, resp, sendErr), nil
}

// Deliver performs the network half of an exchange. It is safe to call
// without holding any app state and is what asynchronous callers run.
func (a *App) Deliver(ctx context.Context, ex *Exchange) (backend.ChatResponse, error) {
	return a.backend.Chat(ctx, ex.Request)
}
