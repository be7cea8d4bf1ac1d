package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/backend"
	"github.com/entrepeneur4lyf/shopforge/internal/cart"
	"github.com/entrepeneur4lyf/shopforge/internal/config"
	"github.com/entrepeneur4lyf/shopforge/internal/events"
	"github.com/entrepeneur4lyf/shopforge/internal/filter"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/quickview"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
	"github.com/entrepeneur4lyf/shopforge/internal/storage"
)

// Backend is the part of the assistant backend the app talks to
type Backend interface {
	Chat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error)
	Recommendations(ctx context.Context, p product.Product, sc *session.SearchContext) ([]product.Product, error)
}

// watcher is implemented by stores that can report changes made elsewhere
type watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// App owns all client state. Every mutation goes through it so that views
// and the CLI see one consistent picture.
type App struct {
	Config    *config.Config
	Store     storage.Store
	Sessions  *session.Store
	History   *session.History
	Filters   *filter.Engine
	Cart      *cart.Cart
	Favorites *cart.Favorites
	QuickView *quickview.Controller
	Events    *events.Bus

	backend Backend
	opener  cart.Opener

	mu sync.Mutex
	// visible is the filtered product list currently shown
	visible []product.Product
	busy    bool
	// seq is bumped for every exchange and every navigation away from it
	seq uint64
}

// Option customizes NewApp
type Option func(*App)

// WithStore uses st instead of opening the configured store
func WithStore(st storage.Store) Option {
	return func(a *App) { a.Store = st }
}

// WithBackend replaces the HTTP backend client
func WithBackend(b Backend) Option {
	return func(a *App) { a.backend = b }
}

// WithOpener replaces the system URL opener
func WithOpener(o cart.Opener) Option {
	return func(a *App) { a.opener = o }
}

// WithEvents publishes on bus instead of a private one
func WithEvents(bus *events.Bus) Option {
	return func(a *App) { a.Events = bus }
}

// NewApp wires the application from cfg
func NewApp(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initializeStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if app.Events == nil {
		app.Events = events.NewBus()
	}
	if app.backend == nil {
		app.backend = backend.NewClient(cfg.BackendClientConfig())
	}
	if app.opener == nil {
		app.opener = cart.SystemOpener{}
	}

	app.Sessions = session.NewStore(ctx, app.Store, session.WithHistoryLimit(cfg.Chat.HistoryLimit))
	app.History = session.NewHistory(ctx, app.Store)
	app.Cart = cart.NewCart(ctx, app.Store)
	app.Favorites = cart.NewFavorites(ctx, app.Store)
	app.QuickView = quickview.NewController()
	app.Filters = filter.NewEngine()
	app.restoreCurrentLocked()

	log.Debug("app initialized",
		"storage", cfg.Storage.Driver,
		"backend", cfg.Backend.BaseURL,
		"sessions", app.Sessions.Len(),
		"cart", app.Cart.Count(),
		"favorites", app.Favorites.Count())
	return app, nil
}

func (a *App) initializeStorage() error {
	if a.Store != nil {
		return nil
	}
	st, err := storage.Open(a.Config.Storage.Driver, a.Config.Paths())
	if err != nil {
		return err
	}
	a.Store = st
	return nil
}

// Close releases the store and shuts the event bus down
func (a *App) Close() error {
	a.Events.Shutdown()
	return a.Store.Close()
}

// InCart implements render.Membership
func (a *App) InCart(id string) bool { return a.Cart.Contains(id) }

// IsFavorite implements render.Membership
func (a *App) IsFavorite(id string) bool { return a.Favorites.Contains(id) }

// Visible returns the filtered product list for the current session
func (a *App) Visible() []product.Product {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]product.Product(nil), a.visible...)
}

// Busy reports whether an exchange is in flight
func (a *App) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Current returns a copy of the current session, or nil
func (a *App) Current() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Sessions.Current()
}

// Snapshot is a consistent read of the state views need
type Snapshot struct {
	Session        *session.Session
	Sessions       []*session.Session
	Visible        []product.Product
	ActiveFilters  []filter.Tag
	NoMatches      bool
	Busy           bool
	CartCount      int
	FavoritesCount int
}

// Snapshot returns the current state for rendering
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	active := a.Filters.Active()
	return Snapshot{
		Session:        a.Sessions.Current(),
		Sessions:       a.Sessions.List(),
		Visible:        append([]product.Product(nil), a.visible...),
		ActiveFilters:  active,
		NoMatches:      len(active) > 0 && len(a.visible) == 0 && len(a.Filters.Original()) > 0,
		Busy:           a.busy,
		CartCount:      a.Cart.Count(),
		FavoritesCount: a.Favorites.Count(),
	}
}

// restoreCurrentLocked loads the current session's products and filters
// into the filter engine. Caller holds mu or has exclusive access.
func (a *App) restoreCurrentLocked() {
	cur := a.Sessions.Current()
	if cur == nil {
		a.Filters.Reset(nil, nil)
		a.visible = nil
		return
	}
	a.Filters.Reset(cur.Products, filter.ParseTags(cur.ActiveFilters))
	if cur.Products == nil {
		a.visible = nil
		return
	}
	a.visible = a.Filters.Recompute().Products
}

// invalidateLocked abandons any in-flight exchange
func (a *App) invalidateLocked() {
	a.seq++
	a.busy = false
}

// findProductLocked looks an id up in the current results, then in the
// quick view recommendations
func (a *App) findProductLocked(id string) (product.Product, bool) {
	if p, ok := product.FindByID(a.Filters.Original(), id); ok {
		return p, true
	}
	view := a.QuickView.View()
	if view.State == quickview.Open {
		if p, ok := product.FindByID(view.Recommendations, id); ok {
			return p, true
		}
		if product.NormalizeID(view.Product.ID) == product.NormalizeID(id) {
			return view.Product, true
		}
	}
	return product.Product{}, false
}

// Watch reloads state when another process changes the persisted data.
// It returns immediately when the store cannot be watched.
func (a *App) Watch(ctx context.Context) error {
	w, ok := a.Store.(watcher)
	if !ok {
		return nil
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch storage: %w", err)
	}
	go func() {
		for key := range changes {
			a.ApplyExternalChange(ctx, key)
		}
	}()
	return nil
}

// ApplyExternalChange reloads whatever key refers to
func (a *App) ApplyExternalChange(ctx context.Context, key string) {
	switch key {
	case storage.KeyCart:
		a.Cart.Reload(ctx)
	case storage.KeyFavorites:
		a.Favorites.Reload(ctx)
	case storage.KeySessions, storage.KeyCurrentSession:
		a.mu.Lock()
		if a.busy {
			a.mu.Unlock()
			log.Debug("deferring session reload while an exchange is in flight", "key", key)
			return
		}
		a.Sessions.Reload(ctx)
		a.restoreCurrentLocked()
		a.mu.Unlock()
	case storage.KeySearchHistory:
		a.mu.Lock()
		a.History.Reload(ctx)
		a.mu.Unlock()
	default:
		return
	}
	log.Debug("reloaded after external change", "key", key)
	a.Events.Publish(events.StorageExternalChange, events.Payload{Key: key})
}
