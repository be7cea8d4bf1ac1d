package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/cart"
	"github.com/entrepeneur4lyf/shopforge/internal/events"
	"github.com/entrepeneur4lyf/shopforge/internal/filter"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/quickview"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
)

var (
	// ErrProductNotFound is returned when an id is not in the current results
	ErrProductNotFound = quickview.ErrNotFound
	// ErrNoLink is returned when a product has no vendor URL
	ErrNoLink = errors.New("product has no link")
	// ErrUnknownIntent is returned for intents the dispatcher does not handle
	ErrUnknownIntent = errors.New("unknown intent")
)

// Intent is a user action. Every view and CLI command expresses what the
// user did as one of these.
type Intent interface {
	intent()
}

type (
	SendMessage     struct{ Text string }
	NewSearch       struct{}
	SwitchSession   struct{ ID string }
	DeleteSession   struct{ ID string }
	RenameSession   struct{ ID, Title string }
	AddFilter       struct{ Tag filter.Tag }
	RemoveFilter    struct{ Tag filter.Tag }
	ClearFilters    struct{}
	ToggleCart      struct{ ProductID string }
	ToggleFavorite  struct{ ProductID string }
	OpenQuickView   struct{ ProductID string }
	CloseQuickView  struct{}
	OpenProductPage struct{ ProductID string }
)

func (SendMessage) intent()     {}
func (NewSearch) intent()       {}
func (SwitchSession) intent()   {}
func (DeleteSession) intent()   {}
func (RenameSession) intent()   {}
func (AddFilter) intent()       {}
func (RemoveFilter) intent()    {}
func (ClearFilters) intent()    {}
func (ToggleCart) intent()      {}
func (ToggleFavorite) intent()  {}
func (OpenQuickView) intent()   {}
func (CloseQuickView) intent()  {}
func (OpenProductPage) intent() {}

// Outcome tells views what changed
type Outcome struct {
	Chat            Result
	Products        []product.Product
	ProductsChanged bool
	NoMatches       bool
	SessionChanged  bool
	Session         *session.Session
	Membership      cart.State
	Count           int
	// Ticket is set when a quick view opened; pass it to LoadRecommendations
	Ticket  quickview.Ticket
	Product product.Product
	URL     string
}

// Dispatch applies one intent
func (a *App) Dispatch(ctx context.Context, in Intent) (Outcome, error) {
	log.Debug("dispatch", "intent", fmt.Sprintf("%T", in))
	switch in := in.(type) {
	case SendMessage:
		res, err := a.Send(ctx, in.Text)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Chat: res, Products: res.Products, ProductsChanged: res.ProductsChanged}, nil
	case NewSearch:
		return a.newSearch(ctx), nil
	case SwitchSession:
		return a.switchSession(ctx, in.ID)
	case DeleteSession:
		return a.deleteSession(ctx, in.ID)
	case RenameSession:
		return a.renameSession(ctx, in.ID, in.Title)
	case AddFilter:
		return a.applyFilter(ctx, func() filter.Result { return a.Filters.AddFilter(in.Tag) }), nil
	case RemoveFilter:
		return a.applyFilter(ctx, func() filter.Result { return a.Filters.RemoveFilter(in.Tag) }), nil
	case ClearFilters:
		return a.applyFilter(ctx, a.Filters.Clear), nil
	case ToggleCart:
		return a.toggleCart(ctx, in.ProductID)
	case ToggleFavorite:
		return a.toggleFavorite(ctx, in.ProductID)
	case OpenQuickView:
		return a.openQuickView(in.ProductID)
	case CloseQuickView:
		a.QuickView.Close()
		a.Events.Publish(events.QuickViewClosed, events.Payload{})
		return Outcome{}, nil
	case OpenProductPage:
		return a.openProductPage(in.ProductID)
	default:
		return Outcome{}, fmt.Errorf("%w: %T", ErrUnknownIntent, in)
	}
}

func (a *App) newSearch(ctx context.Context) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.invalidateLocked()
	a.QuickView.Close()
	sess := a.Sessions.Create(ctx, session.DefaultTitle)
	a.restoreCurrentLocked()
	a.Events.Publish(events.SessionCreated, events.Payload{}, events.WithSessionID(sess.ID))
	return Outcome{SessionChanged: true, Session: sess, ProductsChanged: true}
}

func (a *App) switchSession(ctx context.Context, id string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sess, err := a.Sessions.SwitchTo(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	a.invalidateLocked()
	a.QuickView.Close()
	a.restoreCurrentLocked()
	a.Events.Publish(events.SessionSwitched, events.Payload{}, events.WithSessionID(sess.ID))
	return Outcome{
		SessionChanged:  true,
		Session:         sess,
		Products:        append([]product.Product(nil), a.visible...),
		ProductsChanged: true,
	}, nil
}

func (a *App) deleteSession(ctx context.Context, id string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	wasCurrent := a.Sessions.CurrentID() == id
	if err := a.Sessions.Delete(ctx, id); err != nil {
		return Outcome{}, err
	}
	a.Events.Publish(events.SessionDeleted, events.Payload{}, events.WithSessionID(id))
	if !wasCurrent {
		return Outcome{}, nil
	}
	a.invalidateLocked()
	a.QuickView.Close()
	a.restoreCurrentLocked()
	return Outcome{
		SessionChanged:  true,
		Session:         a.Sessions.Current(),
		Products:        append([]product.Product(nil), a.visible...),
		ProductsChanged: true,
	}, nil
}

func (a *App) renameSession(ctx context.Context, id, title string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id == "" {
		id = a.Sessions.CurrentID()
	}
	if err := a.Sessions.Rename(ctx, id, title); err != nil {
		return Outcome{}, err
	}
	sess, _ := a.Sessions.Get(id)
	a.Events.Publish(events.SessionRenamed, events.Payload{Message: sess.Title}, events.WithSessionID(id))
	return Outcome{Session: sess}, nil
}

func (a *App) applyFilter(ctx context.Context, op func() filter.Result) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := op()
	a.visible = res.Products
	_ = a.Sessions.SetActiveFilters(ctx, a.Filters.ActiveStrings())
	a.Events.Publish(events.FiltersChanged, events.Payload{Filters: a.Filters.ActiveStrings(), Count: len(res.Products)},
		events.WithSessionID(a.Sessions.CurrentID()))
	return Outcome{
		Products:        append([]product.Product(nil), res.Products...),
		ProductsChanged: true,
		NoMatches:       res.NoMatches,
	}
}

func (a *App) toggleCart(ctx context.Context, id string) (Outcome, error) {
	a.mu.Lock()
	p, found := a.findProductLocked(id)
	a.mu.Unlock()

	var state cart.State
	switch {
	case a.Cart.Contains(id):
		if !found {
			p = product.Product{ID: id}
		}
		state = a.Cart.Toggle(ctx, p)
	case found:
		state = a.Cart.Toggle(ctx, p)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrProductNotFound, product.NormalizeID(id))
	}
	count := a.Cart.Count()
	a.Events.Publish(events.CartChanged, events.Payload{ProductID: id, State: string(state), Count: count})
	return Outcome{Membership: state, Count: count, Product: p}, nil
}

func (a *App) toggleFavorite(ctx context.Context, id string) (Outcome, error) {
	a.mu.Lock()
	p, found := a.findProductLocked(id)
	a.mu.Unlock()

	var state cart.State
	switch {
	case found:
		state = a.Favorites.Toggle(ctx, p.ID, &p)
	case a.Favorites.Contains(id):
		state = a.Favorites.Toggle(ctx, id, nil)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrProductNotFound, product.NormalizeID(id))
	}
	count := a.Favorites.Count()
	a.Events.Publish(events.FavoritesChanged, events.Payload{ProductID: id, State: string(state), Count: count})
	return Outcome{Membership: state, Count: count, Product: p}, nil
}

func (a *App) openQuickView(id string) (Outcome, error) {
	a.mu.Lock()
	products := a.Filters.Original()
	sid := a.Sessions.CurrentID()
	a.mu.Unlock()

	ticket, p, err := a.QuickView.Open(products, id)
	if err != nil {
		return Outcome{}, err
	}
	a.Events.Publish(events.QuickViewOpened, events.Payload{ProductID: p.ID}, events.WithSessionID(sid))
	return Outcome{Ticket: ticket, Product: p}, nil
}

// LoadRecommendations fetches recommendations for the quick view opened
// under ticket. A result for a replaced or closed view is dropped.
func (a *App) LoadRecommendations(ctx context.Context, ticket quickview.Ticket) (bool, error) {
	a.mu.Lock()
	var sc *session.SearchContext
	if cur := a.Sessions.Current(); cur != nil {
		sc = cur.SearchContext
	}
	a.mu.Unlock()

	applied, err := a.QuickView.Load(ctx, a.backend, ticket, sc)
	if err != nil {
		a.Events.Publish(events.RecommendationsFailed, events.Payload{Message: err.Error()})
		return applied, err
	}
	if applied {
		a.Events.Publish(events.RecommendationsLoaded, events.Payload{Count: len(a.QuickView.View().Recommendations)})
	}
	return applied, nil
}

func (a *App) openProductPage(id string) (Outcome, error) {
	a.mu.Lock()
	p, found := a.findProductLocked(id)
	a.mu.Unlock()
	if !found {
		for _, item := range a.Cart.Items() {
			if product.NormalizeID(item.ID) == product.NormalizeID(id) {
				p, found = item.Product, true
				break
			}
		}
	}
	if !found {
		return Outcome{}, fmt.Errorf("%w: %q", ErrProductNotFound, product.NormalizeID(id))
	}
	if p.ProductURL == "" {
		return Outcome{}, fmt.Errorf("%w: %q", ErrNoLink, p.ID)
	}
	if err := a.opener.Open(p.ProductURL); err != nil {
		return Outcome{}, err
	}
	return Outcome{Product: p, URL: p.ProductURL}, nil
}

// OpenCart opens every cart link at the configured pace
func (a *App) OpenCart(ctx context.Context) (int, error) {
	return a.Cart.OpenAll(ctx, a.opener, a.Config.Cart.OpenPace)
}
