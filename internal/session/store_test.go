package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store with deterministic ids and a clock that
// advances one second per call
func newTestStore(t *testing.T, st storage.Store) *Store {
	t.Helper()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	n := 0
	return NewStore(context.Background(), st,
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("s%d", n)
		}),
	)
}

func TestCreateMakesCurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStore())

	assert.Nil(t, s.Current())
	assert.Empty(t, s.CurrentID())

	sess := s.Create(ctx, "")
	assert.Equal(t, DefaultTitle, sess.Title)
	assert.Equal(t, sess.ID, s.CurrentID())
	assert.Empty(t, sess.ConversationHistory)
	assert.Nil(t, sess.Products)
}

func TestHistoryCap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStore())
	s.Create(ctx, "")

	for i := 0; i < 25; i++ {
		require.NoError(t, s.AppendMessage(ctx, RoleUser, fmt.Sprintf("m%d", i)))
	}

	history := s.Current().ConversationHistory
	require.Len(t, history, 20)
	assert.Equal(t, "m5", history[0].Content)
	assert.Equal(t, "m24", history[19].Content)
	for i := 1; i < len(history); i++ {
		assert.Equal(t, fmt.Sprintf("m%d", i+5), history[i].Content)
	}
}

func TestSessionIsolationAndRestore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStore())

	first := s.Create(ctx, "")
	require.NoError(t, s.AppendMessage(ctx, RoleUser, "red sneakers"))
	require.NoError(t, s.AppendMessage(ctx, RoleAssistant, "Here you go"))
	require.NoError(t, s.SetProducts(ctx, []product.Product{{ID: "p1"}, {ID: "p2"}}))
	before := s.Current()

	second := s.Create(ctx, "")
	cur := s.Current()
	assert.Equal(t, second.ID, cur.ID)
	assert.Empty(t, cur.ConversationHistory)
	assert.Nil(t, cur.Products)

	require.NoError(t, s.AppendMessage(ctx, RoleUser, "wool scarves"))

	restored, err := s.SwitchTo(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ConversationHistory, restored.ConversationHistory)
	assert.Equal(t, before.Products, restored.Products)
}

func TestCopiesDoNotLeak(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStore())
	s.Create(ctx, "")
	require.NoError(t, s.AppendMessage(ctx, RoleUser, "hello"))

	cur := s.Current()
	cur.ConversationHistory[0].Content = "mutated"
	cur.Title = "mutated"

	assert.Equal(t, "hello", s.Current().ConversationHistory[0].Content)
	assert.Equal(t, DefaultTitle, s.Current().Title)
}

func TestDeletePromotesMostRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStore())
	a := s.Create(ctx, "a")
	b := s.Create(ctx, "b")
	c := s.Create(ctx, "c")

	_, err := s.SwitchTo(ctx, a.ID)
	require.NoError(t, err)

	// deleting a non-current session leaves current alone
	require.NoError(t, s.Delete(ctx, b.ID))
	assert.Equal(t, a.ID, s.CurrentID())

	// deleting the current one promotes the newest remaining
	require.NoError(t, s.Delete(ctx, a.ID))
	assert.Equal(t, c.ID, s.CurrentID())

	require.NoError(t, s.Delete(ctx, c.ID))
	assert.Empty(t, s.CurrentID())
	assert.Nil(t, s.Current())

	assert.ErrorIs(t, s.Delete(ctx, "nope"), ErrNotFound)
}

func TestMutationsWithoutSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStore())
	assert.ErrorIs(t, s.AppendMessage(ctx, RoleUser, "x"), ErrNoSession)
	assert.ErrorIs(t, s.SetProducts(ctx, nil), ErrNoSession)
	assert.ErrorIs(t, s.SetSearchContext(ctx, nil), ErrNoSession)
	_, err := s.SwitchTo(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := newTestStore(t, st)
	s.Create(ctx, "")
	require.NoError(t, s.AppendMessage(ctx, RoleUser, "linen shirts"))
	require.NoError(t, s.SetProducts(ctx, []product.Product{}))
	sc := ExtractSearchContext("linen shirts under $40")
	require.NoError(t, s.SetSearchContext(ctx, &sc))
	require.NoError(t, s.SetActiveFilters(ctx, []string{"sale"}))

	reloaded := NewStore(ctx, st)
	cur := reloaded.Current()
	require.NotNil(t, cur)
	assert.Equal(t, s.CurrentID(), cur.ID)
	assert.Equal(t, "linen shirts", cur.ConversationHistory[0].Content)
	assert.NotNil(t, cur.Products, "an explicit empty result set survives a reload")
	assert.Empty(t, cur.Products)
	require.NotNil(t, cur.SearchContext)
	require.NotNil(t, cur.SearchContext.FiltersApplied.MaxPrice)
	assert.Equal(t, 40.0, *cur.SearchContext.FiltersApplied.MaxPrice)
	assert.Equal(t, []string{"sale"}, cur.ActiveFilters)
}

func TestReloadRepairsDanglingCurrent(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := newTestStore(t, st)
	s.Create(ctx, "")
	latest := s.Create(ctx, "")

	require.NoError(t, storage.Save(ctx, st, storage.KeyCurrentSession, "ghost"))
	reloaded := NewStore(ctx, st)
	assert.Equal(t, latest.ID, reloaded.CurrentID())

	require.NoError(t, st.Set(ctx, storage.KeySessions, []byte("{{{")))
	broken := NewStore(ctx, st)
	assert.Zero(t, broken.Len())
	assert.Empty(t, broken.CurrentID())
}

func TestTitleFromFirstMessage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStore())
	s.Create(ctx, "")

	require.NoError(t, s.SetTitleFromMessage(ctx, "  blue   polo shirts  "))
	assert.Equal(t, "blue polo shirts", s.Current().Title)

	require.NoError(t, s.SetTitleFromMessage(ctx, "something else"))
	assert.Equal(t, "blue polo shirts", s.Current().Title, "title only set while default")

	s.Create(ctx, "")
	long := "an extremely long request for waterproof hiking boots with ankle support"
	require.NoError(t, s.SetTitleFromMessage(ctx, long))
	title := s.Current().Title
	assert.Len(t, []rune(title), maxTitleLength+3)
	assert.Contains(t, title, "...")
}

func TestRenameAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemoryStore())
	a := s.Create(ctx, "")
	require.NoError(t, s.AppendMessage(ctx, RoleUser, "waterproof hiking boots"))
	b := s.Create(ctx, "")
	require.NoError(t, s.Rename(ctx, b.ID, "Gifts for dad"))
	assert.ErrorIs(t, s.Rename(ctx, "missing", "x"), ErrNotFound)

	matches := s.Find("boots")
	require.Len(t, matches, 1)
	assert.Equal(t, a.ID, matches[0].Session.ID)

	matches = s.Find("dad")
	require.Len(t, matches, 1)
	assert.Equal(t, b.ID, matches[0].Session.ID)

	assert.Nil(t, s.Find("   "))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := newTestStore(t, st)
	s.Create(ctx, "")
	s.Clear(ctx)
	assert.Zero(t, s.Len())
	assert.Zero(t, NewStore(ctx, st).Len())
}
