package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/entrepeneur4lyf/shopforge/internal/backend"
	"github.com/entrepeneur4lyf/shopforge/internal/cart"
	"github.com/entrepeneur4lyf/shopforge/internal/config"
	"github.com/entrepeneur4lyf/shopforge/internal/filter"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/quickview"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
	"github.com/entrepeneur4lyf/shopforge/internal/storage"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{BaseURL: "http://unused.test"},
		Storage: config.StorageConfig{Driver: storage.DriverMemory},
		Chat:    config.ChatConfig{HistoryLimit: session.DefaultHistoryLimit},
	}
}

// scriptedBackend answers chat requests from a queue
type scriptedBackend struct {
	mu       sync.Mutex
	replies  []backend.ChatResponse
	err      error
	requests []backend.ChatRequest
	recs     []product.Product
}

func (s *scriptedBackend) Chat(_ context.Context, req backend.ChatRequest) (backend.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return backend.ChatResponse{}, s.err
	}
	if len(s.replies) == 0 {
		return backend.ChatResponse{}, nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func (s *scriptedBackend) Recommendations(context.Context, product.Product, *session.SearchContext) ([]product.Product, error) {
	return s.recs, nil
}

type recordingOpener struct{ urls []string }

func (r *recordingOpener) Open(url string) error {
	r.urls = append(r.urls, url)
	return nil
}

func newTestApp(t *testing.T, b Backend, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithStore(storage.NewMemoryStore()), WithBackend(b), WithOpener(&recordingOpener{})}, opts...)
	a, err := NewApp(context.Background(), testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

var polos = []product.Product{
	{ID: "p1", Name: "Blue Polo", Price: 45, ProductURL: "https://shop.test/p1"},
	{ID: "p2", Name: "Navy Polo", Price: 75, ListPrice: 100},
	{ID: "p3", Name: "Silk Polo", Price: 120},
}

func TestBlueShirtsUnderFiftyEndToEnd(t *testing.T) {
	var recBody map[string]json.RawMessage
	r := mux.NewRouter()
	r.HandleFunc(backend.ChatPath, func(w http.ResponseWriter, req *http.Request) {
		var body backend.ChatRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message":"Here are some polos","products":[
			{"product_id":"p1","name":"Blue Polo","current_price":"$45.00"},
			{"product_id":"p2","name":"Navy Polo","current_price":"75","original_price":"$100"},
			{"product_id":"p3","name":"Silk Polo","price":120}]}`)
	}).Methods(http.MethodPost)
	r.HandleFunc(backend.RecommendationsPath, func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&recBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"recommendations":[{"id":"r1","name":"Green Polo","price":39}]}`)
	}).Methods(http.MethodPost)
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL, Timeout: time.Second, Retry: backend.RetryConfig{}})
	a := newTestApp(t, client)
	ctx := context.Background()

	out, err := a.Dispatch(ctx, SendMessage{Text: "blue polo shirts under $50"})
	require.NoError(t, err)
	assert.Equal(t, "Here are some polos", out.Chat.Reply)
	assert.Len(t, out.Products, 3)

	cur := a.Current()
	require.NotNil(t, cur)
	require.NotNil(t, cur.SearchContext)
	require.NotNil(t, cur.SearchContext.FiltersApplied.MaxPrice)
	assert.Equal(t, 50.0, *cur.SearchContext.FiltersApplied.MaxPrice)
	assert.Nil(t, cur.SearchContext.FiltersApplied.MinPrice)
	assert.Equal(t, "blue polo shirts under $50", cur.Title)
	assert.Len(t, cur.ConversationHistory, 2)

	out, err = a.Dispatch(ctx, AddFilter{Tag: filter.Under50})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, product.IDs(out.Products))

	_, err = a.Dispatch(ctx, OpenQuickView{ProductID: "nope"})
	require.ErrorIs(t, err, quickview.ErrNotFound)
	assert.Equal(t, quickview.Closed, a.QuickView.View().State)
	assert.Empty(t, a.QuickView.View().Product.ID)

	out, err = a.Dispatch(ctx, OpenQuickView{ProductID: "p2"})
	require.NoError(t, err)
	applied, err := a.LoadRecommendations(ctx, out.Ticket)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, []string{"r1"}, product.IDs(a.QuickView.View().Recommendations))

	var sc session.SearchContext
	require.NoError(t, json.Unmarshal(recBody["searchContext"], &sc))
	assert.Equal(t, "blue polo shirts under $50", sc.UserMessage)
	assert.Contains(t, string(recBody["product"]), `"product_id":"p2"`)
}

func TestSendFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input sends nothing", func(t *testing.T) {
		b := &scriptedBackend{}
		a := newTestApp(t, b)
		_, err := a.Send(ctx, "   ")
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Empty(t, b.requests)
		assert.Nil(t, a.Current())
	})

	t.Run("network failure leaves products intact", func(t *testing.T) {
		b := &scriptedBackend{replies: []backend.ChatResponse{{Message: "ok", Products: polos}}}
		a := newTestApp(t, b)
		_, err := a.Send(ctx, "polos")
		require.NoError(t, err)

		b.err = errors.New("connection refused")
		res, err := a.Send(ctx, "more polos")
		require.NoError(t, err)
		assert.True(t, res.Failed)
		assert.Equal(t, failureReply, res.Reply)
		assert.Len(t, a.Visible(), 3)
		assert.False(t, a.Busy())

		cur := a.Current()
		assert.Equal(t, failureReply, cur.ConversationHistory[len(cur.ConversationHistory)-1].Content)
		assert.Len(t, cur.Products, 3)
	})

	t.Run("backend error is shown", func(t *testing.T) {
		b := &scriptedBackend{replies: []backend.ChatResponse{{Error: "No message provided"}}}
		a := newTestApp(t, b)
		res, err := a.Send(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, "Sorry, there was an error: No message provided", res.Reply)
	})

	t.Run("missing message falls back", func(t *testing.T) {
		a := newTestApp(t, &scriptedBackend{})
		res, err := a.Send(ctx, "red shoes")
		require.NoError(t, err)
		assert.Equal(t, "I found results for 'red shoes'!", res.Reply)
	})
}

func TestEmptyVersusAbsentProducts(t *testing.T) {
	ctx := context.Background()
	b := &scriptedBackend{replies: []backend.ChatResponse{
		{Message: "found", Products: polos},
		{Message: "just chatting"},
		{Message: "nothing", Products: []product.Product{}},
	}}
	a := newTestApp(t, b)

	_, err := a.Send(ctx, "polos")
	require.NoError(t, err)
	require.Len(t, a.Visible(), 3)

	res, err := a.Send(ctx, "thanks")
	require.NoError(t, err)
	assert.False(t, res.ProductsChanged)
	assert.Len(t, a.Current().Products, 3)

	res, err = a.Send(ctx, "unicorn saddles")
	require.NoError(t, err)
	assert.True(t, res.ProductsChanged)
	assert.Empty(t, a.Visible())
	cur := a.Current()
	assert.NotNil(t, cur.Products)
	assert.Empty(t, cur.Products)
	assert.Nil(t, cur.SearchContext)
}

func TestHistorySentToBackendIncludesCurrentMessage(t *testing.T) {
	ctx := context.Background()
	b := &scriptedBackend{replies: []backend.ChatResponse{{Message: "a"}, {Message: "b"}}}
	a := newTestApp(t, b)

	_, _ = a.Send(ctx, "first")
	_, _ = a.Send(ctx, "second")
	require.Len(t, b.requests, 2)
	assert.Equal(t, []session.Message{
		{Role: session.RoleUser, Content: "first"},
	}, b.requests[0].ConversationHistory)
	assert.Equal(t, []session.Message{
		{Role: session.RoleUser, Content: "first"},
		{Role: session.RoleAssistant, Content: "a"},
		{Role: session.RoleUser, Content: "second"},
	}, b.requests[1].ConversationHistory)
}

func TestBusyAndStaleResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("second send while busy is rejected", func(t *testing.T) {
		a := newTestApp(t, &scriptedBackend{})
		ex, err := a.Begin(ctx, "first")
		require.NoError(t, err)
		_, err = a.Begin(ctx, "second")
		assert.ErrorIs(t, err, ErrBusy)

		a.Complete(ctx, ex, backend.ChatResponse{Message: "done"}, nil)
		assert.False(t, a.Busy())
		_, err = a.Begin(ctx, "third")
		assert.NoError(t, err)
	})

	t.Run("response after new search is discarded", func(t *testing.T) {
		a := newTestApp(t, &scriptedBackend{})
		ex, err := a.Begin(ctx, "polos")
		require.NoError(t, err)
		oldID := ex.Token.SessionID

		_, err = a.Dispatch(ctx, NewSearch{})
		require.NoError(t, err)
		assert.False(t, a.Busy())

		res := a.Complete(ctx, ex, backend.ChatResponse{Message: "late", Products: polos}, nil)
		assert.True(t, res.Discarded)
		assert.Empty(t, a.Visible())

		old, ok := a.Sessions.Get(oldID)
		require.True(t, ok)
		assert.Len(t, old.ConversationHistory, 1, "only the user message")
		assert.Nil(t, old.Products)
	})

	t.Run("response after switching away is discarded", func(t *testing.T) {
		a := newTestApp(t, &scriptedBackend{replies: []backend.ChatResponse{{Message: "ok", Products: polos}}})
		_, err := a.Send(ctx, "polos")
		require.NoError(t, err)
		first := a.Current().ID

		_, _ = a.Dispatch(ctx, NewSearch{})
		ex, err := a.Begin(ctx, "shoes")
		require.NoError(t, err)
		_, err = a.Dispatch(ctx, SwitchSession{ID: first})
		require.NoError(t, err)

		res := a.Complete(ctx, ex, backend.ChatResponse{Message: "late"}, nil)
		assert.True(t, res.Discarded)
		assert.Len(t, a.Visible(), 3)
	})
}

func TestSessionIsolationAndRestore(t *testing.T) {
	ctx := context.Background()
	b := &scriptedBackend{replies: []backend.ChatResponse{
		{Message: "polos", Products: polos},
		{Message: "shoes", Products: []product.Product{{ID: "s1", Price: 60}}},
	}}
	a := newTestApp(t, b)

	_, _ = a.Send(ctx, "polos")
	_, _ = a.Dispatch(ctx, AddFilter{Tag: filter.Sale})
	first := a.Current()

	out, err := a.Dispatch(ctx, NewSearch{})
	require.NoError(t, err)
	assert.Empty(t, out.Session.ConversationHistory)
	assert.Nil(t, out.Session.Products)
	assert.Empty(t, a.Snapshot().ActiveFilters)

	_, _ = a.Send(ctx, "shoes")
	assert.Equal(t, []string{"s1"}, product.IDs(a.Visible()))

	out, err = a.Dispatch(ctx, SwitchSession{ID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationHistory, out.Session.ConversationHistory)
	assert.Equal(t, product.IDs(first.Products), product.IDs(out.Session.Products))
	assert.Equal(t, []string{"p2"}, product.IDs(a.Visible()), "sale filter restored")

	_, err = a.Dispatch(ctx, SwitchSession{ID: "missing"})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestDeleteCurrentSessionPromotesMostRecent(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, &scriptedBackend{})
	first := a.Sessions.Create(ctx, "first")
	second := a.Sessions.Create(ctx, "second")

	out, err := a.Dispatch(ctx, DeleteSession{ID: second.ID})
	require.NoError(t, err)
	assert.True(t, out.SessionChanged)
	assert.Equal(t, first.ID, a.Current().ID)

	_, err = a.Dispatch(ctx, DeleteSession{ID: first.ID})
	require.NoError(t, err)
	assert.Nil(t, a.Current())
	assert.Empty(t, a.Visible())

	_, err = a.Dispatch(ctx, RenameSession{ID: "gone", Title: "x"})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestCartAndFavoritesIntents(t *testing.T) {
	ctx := context.Background()
	opener := &recordingOpener{}
	a := newTestApp(t, &scriptedBackend{replies: []backend.ChatResponse{{Message: "ok", Products: polos}}}, WithOpener(opener))
	_, _ = a.Send(ctx, "polos")

	out, err := a.Dispatch(ctx, ToggleCart{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, cart.Added, out.Membership)
	assert.Equal(t, 1, out.Count)
	assert.True(t, a.InCart("p1"))

	out, err = a.Dispatch(ctx, ToggleCart{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, cart.Removed, out.Membership)
	assert.Zero(t, out.Count)

	_, err = a.Dispatch(ctx, ToggleCart{ProductID: "ghost"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	out, err = a.Dispatch(ctx, ToggleFavorite{ProductID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, cart.Added, out.Membership)
	assert.True(t, a.IsFavorite("p2"))

	out, err = a.Dispatch(ctx, OpenProductPage{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://shop.test/p1"}, opener.urls)
	_, err = a.Dispatch(ctx, OpenProductPage{ProductID: "p3"})
	assert.ErrorIs(t, err, ErrNoLink)

	_, _ = a.Dispatch(ctx, ToggleCart{ProductID: "p1"})
	n, err := a.OpenCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCartItemRemovableAfterResultsChange(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, &scriptedBackend{replies: []backend.ChatResponse{{Message: "ok", Products: polos}}})
	_, _ = a.Send(ctx, "polos")
	_, err := a.Dispatch(ctx, ToggleCart{ProductID: "p3"})
	require.NoError(t, err)

	_, _ = a.Dispatch(ctx, NewSearch{})
	out, err := a.Dispatch(ctx, ToggleCart{ProductID: "p3"})
	require.NoError(t, err)
	assert.Equal(t, cart.Removed, out.Membership)
}

func TestFilterIntentsPersistOnSession(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	a := newTestApp(t, &scriptedBackend{replies: []backend.ChatResponse{{Message: "ok", Products: polos}}}, WithStore(st))
	_, _ = a.Send(ctx, "polos")

	out, _ := a.Dispatch(ctx, AddFilter{Tag: filter.Premium})
	assert.Equal(t, []string{"p3"}, product.IDs(out.Products))
	out, _ = a.Dispatch(ctx, AddFilter{Tag: filter.Under50})
	assert.True(t, out.NoMatches)
	assert.Equal(t, []string{"premium", "under-50"}, a.Current().ActiveFilters)

	reopened, err := NewApp(ctx, testConfig(), WithStore(st), WithBackend(&scriptedBackend{}))
	require.NoError(t, err)
	assert.Equal(t, []filter.Tag{filter.Premium, filter.Under50}, reopened.Snapshot().ActiveFilters)
	assert.True(t, reopened.Snapshot().NoMatches)

	out, _ = a.Dispatch(ctx, ClearFilters{})
	assert.Len(t, out.Products, 3)
}

func TestExternalChangeReloadsCart(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	a := newTestApp(t, &scriptedBackend{}, WithStore(st))
	other := cart.NewCart(ctx, st)
	other.Add(ctx, product.Product{ID: "x"})

	assert.False(t, a.InCart("x"))
	a.ApplyExternalChange(ctx, storage.KeyCart)
	assert.True(t, a.InCart("x"))
}

type unknownIntent struct{}

func (unknownIntent) intent() {}

func TestUnknownIntent(t *testing.T) {
	a := newTestApp(t, &scriptedBackend{})
	_, err := a.Dispatch(context.Background(), unknownIntent{})
	assert.ErrorIs(t, err, ErrUnknownIntent)
}
