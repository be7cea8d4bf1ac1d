// Package quickview tracks the single-product detail overlay and the
// recommendations fetched for it.
package quickview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
)

// ErrNotFound is returned when the requested product is not in the result set
var ErrNotFound = errors.New("product not found")

// State of the overlay
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Ticket identifies one opening. Recommendations for an older ticket are dropped.
type Ticket uint64

// Fetcher loads recommendations for a product
type Fetcher interface {
	Recommendations(ctx context.Context, p product.Product, sc *session.SearchContext) ([]product.Product, error)
}

// View is a snapshot of the overlay
type View struct {
	State           State
	Ticket          Ticket
	Product         product.Product
	Recommendations []product.Product
	Loading         bool
	Err             error
}

// Controller owns the overlay state
type Controller struct {
	mu      sync.Mutex
	state   State
	ticket  Ticket
	current product.Product
	recs    []product.Product
	loading bool
	err     error
}

// NewController returns a closed overlay
func NewController() *Controller {
	return &Controller{}
}

// Open shows the product with id from products. An unknown id leaves the
// overlay untouched and returns ErrNotFound.
func (c *Controller) Open(products []product.Product, id string) (Ticket, product.Product, error) {
	p, ok := product.FindByID(products, id)
	if !ok {
		log.Debug("quick view lookup failed", "id", id, "candidates", len(products))
		return 0, product.Product{}, fmt.Errorf("%w: %q", ErrNotFound, product.NormalizeID(id))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticket++
	c.state = Open
	c.current = p
	c.recs = nil
	c.loading = true
	c.err = nil
	return c.ticket, p, nil
}

// Close hides the overlay and invalidates pending recommendations
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticket++
	c.state = Closed
	c.current = product.Product{}
	c.recs = nil
	c.loading = false
	c.err = nil
}

// ApplyRecommendations stores recs when ticket is still current
func (c *Controller) ApplyRecommendations(ticket Ticket, recs []product.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(ticket) {
		log.Debug("dropping stale recommendations", "ticket", ticket, "current", c.ticket)
		return false
	}
	c.recs = recs
	c.loading = false
	return true
}

// FailRecommendations records a fetch failure when ticket is still current
func (c *Controller) FailRecommendations(ticket Ticket, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(ticket) {
		return false
	}
	c.err = err
	c.loading = false
	return true
}

// Load fetches recommendations for the product opened under ticket and
// applies them. It reports whether the result was applied.
func (c *Controller) Load(ctx context.Context, f Fetcher, ticket Ticket, sc *session.SearchContext) (bool, error) {
	c.mu.Lock()
	if !c.currentLocked(ticket) {
		c.mu.Unlock()
		return false, nil
	}
	p := c.current
	c.mu.Unlock()

	recs, err := f.Recommendations(ctx, p, sc)
	if err != nil {
		log.Warn("failed to load recommendations", "product", p.ID, "err", err)
		return c.FailRecommendations(ticket, err), err
	}
	return c.ApplyRecommendations(ticket, recs), nil
}

func (c *Controller) currentLocked(ticket Ticket) bool {
	return c.state == Open && ticket == c.ticket
}

// View returns the current overlay state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:           c.state,
		Ticket:          c.ticket,
		Product:         c.current,
		Recommendations: append([]product.Product(nil), c.recs...),
		Loading:         c.loading,
		Err:             c.err,
	}
}

// IsOpen reports whether the overlay is showing
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Open
}
