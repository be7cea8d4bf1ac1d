package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/backend"
	"github.com/entrepeneur4lyf/shopforge/internal/cart"
	"github.com/entrepeneur4lyf/shopforge/internal/config"
	"github.com/entrepeneur4lyf/shopforge/internal/events"
	"github.com/entrepeneur4lyf/shopforge/internal/quickview"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/components/products"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/components/sessions"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/components/status"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/components/toast"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/components/transcript"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/layout"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/themes"
)

const (
	sidebarWidth  = 28
	inputHeight   = 3
	inputPrompt   = "› "
	placeholder   = "What are you shopping for? e.g. blue polo shirts under $50"
	busyHint      = "Searching…"
	detailWidth   = 76
	minMainWidth  = 60
	inputMaxChars = 500
)

type focus int

const (
	focusInput focus = iota
	focusProducts
	focusSessions
)

type exchangeDoneMsg struct {
	ex   *app.Exchange
	resp backend.ChatResponse
	err  error
}

type recommendationsMsg struct {
	ticket quickview.Ticket
	err    error
}

type eventMsg struct {
	event events.Event[events.Payload]
}

type eventsClosedMsg struct{}

type cartOpenedMsg struct {
	opened int
	err    error
}

// Options configures the TUI
type Options struct {
	// State is the remembered UI state; nil uses defaults
	State *config.State
	// StatePath is where State is saved on exit; empty skips saving
	StatePath string
}

// Model is the root bubbletea model
type Model struct {
	ctx       context.Context
	app       *app.App
	state     *config.State
	statePath string
	theme     themes.Theme
	events    <-chan events.Event[events.Payload]

	sessions   *sessions.Model
	transcript *transcript.Model
	products   *products.Model
	status     *status.Model
	toasts     *toast.ToastManager
	input      textinput.Model
	help       help.Model
	detailMD   *render.Markdown

	focus     focus
	pending   *app.Exchange
	renaming  string
	sessionID string
	showHelp  bool
	width     int
	height    int
}

// New builds the root model
func New(ctx context.Context, a *app.App, opts Options) *Model {
	state := opts.State
	if state == nil {
		state = config.NewState()
	}
	th := themes.Get(state.Theme)

	input := textinput.New()
	input.Prompt = inputPrompt
	input.Placeholder = placeholder
	input.CharLimit = inputMaxChars
	input.Focus()

	m := &Model{
		ctx:        ctx,
		app:        a,
		state:      state,
		statePath:  opts.StatePath,
		theme:      th,
		sessions:   sessions.New(th),
		transcript: transcript.New(th, a.Config.Chat.TypingDelay),
		products:   products.New(th),
		status:     status.NewStatusBar(th),
		toasts:     toast.NewToastManager(th),
		input:      input,
		help:       help.New(),
	}
	m.sync()
	return m
}

func (m *Model) Init() tea.Cmd {
	m.events = m.app.Events.Subscribe(m.ctx)
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

func waitForEvent(ch <-chan events.Event[events.Payload]) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case exchangeDoneMsg:
		return m, m.finishExchange(msg)

	case recommendationsMsg:
		if msg.err != nil && m.app.QuickView.View().Ticket == msg.ticket {
			return m, toast.NewWarningToast("Recommendations unavailable", m.theme)
		}
		return m, nil

	case eventMsg:
		log.Debug("tui event", "type", msg.event.Type)
		return m, tea.Batch(m.sync(), waitForEvent(m.events))

	case eventsClosedMsg:
		return m, nil

	case cartOpenedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			return m, toast.NewErrorToast(msg.err.Error(), m.theme)
		}
		return m, toast.NewInfoToast(fmt.Sprintf("Opened %d cart links", msg.opened), m.theme)

	case sessions.SelectedMsg:
		return m, m.dispatch(app.SwitchSession{ID: msg.ID})
	case sessions.NewMsg:
		return m, m.dispatch(app.NewSearch{})
	case sessions.DeleteMsg:
		return m, m.dispatch(app.DeleteSession{ID: msg.ID})
	case sessions.RenameMsg:
		m.renaming = msg.ID
		m.input.SetValue(commandPrefix + "rename " + msg.Title)
		m.input.CursorEnd()
		m.setFocus(focusInput)
		return m, nil

	case products.QuickViewMsg:
		return m, m.openQuickView(msg.ID)
	case products.ToggleCartMsg:
		return m, m.toggle(app.ToggleCart{ProductID: msg.ID}, "cart")
	case products.ToggleFavMsg:
		return m, m.toggle(app.ToggleFavorite{ProductID: msg.ID}, "favorites")
	case products.OpenPageMsg:
		return m, m.dispatch(app.OpenProductPage{ProductID: msg.ID})
	case products.ToggleFilterMsg:
		if slices.Contains(m.app.Snapshot().ActiveFilters, msg.Tag) {
			return m, m.dispatch(app.RemoveFilter{Tag: msg.Tag})
		}
		return m, m.dispatch(app.AddFilter{Tag: msg.Tag})
	case products.ClearFiltersMsg:
		return m, m.dispatch(app.ClearFilters{})

	case toast.ShowToastMsg, toast.DismissToastMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(msg)
		return m, cmd

	case transcript.RevealTickMsg:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Quit) {
		m.saveState()
		return tea.Quit
	}
	if m.app.QuickView.IsOpen() {
		return m.handleQuickViewKey(msg)
	}
	if m.focus == focusSessions && m.sessions.Filtering() {
		var cmd tea.Cmd
		m.sessions, cmd = m.sessions.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keys.NextFocus):
		m.cycleFocus(1)
		return nil
	case key.Matches(msg, keys.PrevFocus):
		m.cycleFocus(-1)
		return nil
	case key.Matches(msg, keys.NewSearch):
		return m.dispatch(app.NewSearch{})
	case key.Matches(msg, keys.ToggleSidebar):
		m.state.ShowSidebar = !m.state.ShowSidebar
		if !m.state.ShowSidebar && m.focus == focusSessions {
			m.setFocus(focusInput)
		}
		m.layout()
		return nil
	case key.Matches(msg, keys.Theme):
		m.cycleTheme()
		return nil
	case key.Matches(msg, keys.OpenCart):
		return m.openCart()
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return nil
	case key.Matches(msg, keys.Scroll):
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return cmd
	case key.Matches(msg, keys.Cancel):
		m.renaming = ""
		m.transcript.SkipReveal()
		m.setFocus(focusInput)
		return nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusProducts:
		m.products, cmd = m.products.Update(msg)
	case focusSessions:
		m.sessions, cmd = m.sessions.Update(msg)
	default:
		if key.Matches(msg, keys.Submit) {
			return m.submit()
		}
		if m.app.Busy() {
			return nil
		}
		m.input, cmd = m.input.Update(msg)
	}
	return cmd
}

func (m *Model) handleQuickViewKey(msg tea.KeyMsg) tea.Cmd {
	id := m.app.QuickView.View().Product.ID
	switch {
	case key.Matches(msg, keys.Cancel):
		return m.dispatch(app.CloseQuickView{})
	case key.Matches(msg, keys.Cart):
		return m.toggle(app.ToggleCart{ProductID: id}, "cart")
	case key.Matches(msg, keys.Favorite):
		return m.toggle(app.ToggleFavorite{ProductID: id}, "favorites")
	case key.Matches(msg, keys.Open):
		return m.dispatch(app.OpenProductPage{ProductID: id})
	case key.Matches(msg, keys.CopyLink):
		return m.copyLink(m.app.QuickView.View().Product.ProductURL)
	}
	return nil
}

func (m *Model) copyLink(url string) tea.Cmd {
	if url == "" {
		return toast.NewWarningToast("This product has no link", m.theme)
	}
	if err := clipboard.WriteAll(url); err != nil {
		log.Debug("clipboard unavailable", "err", err)
		return toast.NewErrorToast("Could not copy link", m.theme)
	}
	return toast.NewSuccessToast("Link copied", m.theme)
}

// submit sends the input as a message, or runs it when it is a command
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if c, ok := parseCommand(text); ok {
		m.input.Reset()
		return m.runCommand(c)
	}

	ex, err := m.app.Begin(m.ctx, text)
	switch {
	case errors.Is(err, app.ErrBusy):
		return toast.NewWarningToast("Still waiting for the last answer", m.theme)
	case err != nil:
		return toast.NewErrorToast(err.Error(), m.theme)
	}
	m.pending = ex
	m.input.Reset()
	cmd := m.sync()
	return tea.Batch(cmd, m.status.Tick, m.deliver(ex))
}

func (m *Model) deliver(ex *app.Exchange) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.app.Deliver(m.ctx, ex)
		return exchangeDoneMsg{ex: ex, resp: resp, err: err}
	}
}

func (m *Model) finishExchange(msg exchangeDoneMsg) tea.Cmd {
	res := m.app.Complete(m.ctx, msg.ex, msg.resp, msg.err)
	if m.pending == msg.ex {
		m.pending = nil
	}
	cmds := []tea.Cmd{m.sync()}
	if res.Discarded {
		return tea.Batch(cmds...)
	}
	if res.Failed {
		cmds = append(cmds, toast.NewErrorToast("Could not reach the shopping assistant", m.theme))
	}
	if res.ProductsChanged && len(res.Products) > 0 {
		cmds = append(cmds, toast.NewSuccessToast(fmt.Sprintf("Found %d products", len(res.Products)), m.theme))
	}
	cmds = append(cmds, m.transcript.Reveal())
	if m.focus == focusInput {
		m.input.Focus()
	}
	return tea.Batch(cmds...)
}

func (m *Model) runCommand(c command) tea.Cmd {
	switch c.name {
	case "cart":
		return m.openCart()
	case "theme":
		if c.arg == "" {
			m.cycleTheme()
		} else {
			m.applyTheme(c.arg)
		}
		return nil
	case "help":
		m.showHelp = !m.showHelp
		m.layout()
		return nil
	}
	in, err := c.intent(m.renaming)
	m.renaming = ""
	if err != nil {
		return toast.NewErrorToast(err.Error(), m.theme)
	}
	return m.dispatch(in)
}

// dispatch applies an intent and refreshes the views
func (m *Model) dispatch(in app.Intent) tea.Cmd {
	out, err := m.app.Dispatch(m.ctx, in)
	if err != nil {
		return tea.Batch(m.sync(), toast.NewErrorToast(describeError(err), m.theme))
	}
	cmds := []tea.Cmd{m.sync()}
	if out.NoMatches {
		cmds = append(cmds, toast.NewInfoToast("No products match these filters", m.theme))
	}
	if out.URL != "" {
		cmds = append(cmds, toast.NewInfoToast("Opened "+out.URL, m.theme))
	}
	return tea.Batch(cmds...)
}

func (m *Model) toggle(in app.Intent, collection string) tea.Cmd {
	out, err := m.app.Dispatch(m.ctx, in)
	if err != nil {
		return toast.NewErrorToast(describeError(err), m.theme)
	}
	verb := "Added to "
	if out.Membership == cart.Removed {
		verb = "Removed from "
	}
	return tea.Batch(m.sync(), toast.NewSuccessToast(verb+collection, m.theme))
}

func (m *Model) openQuickView(id string) tea.Cmd {
	out, err := m.app.Dispatch(m.ctx, app.OpenQuickView{ProductID: id})
	if err != nil {
		return toast.NewErrorToast(describeError(err), m.theme)
	}
	ticket := out.Ticket
	return func() tea.Msg {
		_, err := m.app.LoadRecommendations(m.ctx, ticket)
		return recommendationsMsg{ticket: ticket, err: err}
	}
}

func (m *Model) openCart() tea.Cmd {
	if m.app.Cart.Count() == 0 {
		return toast.NewInfoToast("Your cart is empty", m.theme)
	}
	return func() tea.Msg {
		n, err := m.app.OpenCart(m.ctx)
		return cartOpenedMsg{opened: n, err: err}
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, app.ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, app.ErrNoLink):
		return "This product has no link"
	}
	return err.Error()
}

// sync pulls app state into every component
func (m *Model) sync() tea.Cmd {
	snap := m.app.Snapshot()
	m.status.SetSnapshot(snap)

	var cmds []tea.Cmd
	cmds = append(cmds, m.products.SetProducts(snap.Visible, m.app, snap.NoMatches))
	currentID := ""
	if snap.Session != nil {
		currentID = snap.Session.ID
	}
	cmds = append(cmds, m.sessions.SetSessions(snap.Sessions, currentID))

	switch {
	case currentID != m.sessionID:
		m.sessionID = currentID
		m.transcript.SetMessages(history(snap))
	case !slices.Equal(history(snap), m.transcript.Messages()):
		m.transcript.SetMessages(history(snap))
	}

	if snap.Busy {
		m.input.Blur()
		m.input.Placeholder = busyHint
	} else {
		m.input.Placeholder = placeholder
		if m.focus == focusInput {
			m.input.Focus()
		}
	}
	return tea.Batch(cmds...)
}

func history(snap app.Snapshot) []session.Message {
	if snap.Session == nil {
		return nil
	}
	return snap.Session.ConversationHistory
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.products.Blur()
	m.sessions.Blur()
	m.input.Blur()
	switch f {
	case focusProducts:
		m.products.Focus()
	case focusSessions:
		m.sessions.Focus()
	default:
		if !m.app.Busy() {
			m.input.Focus()
		}
	}
	m.status.SetHint(m.hint())
}

func (m *Model) cycleFocus(step int) {
	order := []focus{focusInput, focusProducts}
	if m.sidebarVisible() {
		order = append(order, focusSessions)
	}
	i := slices.Index(order, m.focus)
	m.setFocus(order[(i+step+len(order))%len(order)])
}

func (m *Model) hint() string {
	switch m.focus {
	case focusProducts:
		return "enter view  c cart  f fav  1-6 filter"
	case focusSessions:
		return "enter open  n new  r rename  d delete"
	}
	return ""
}

func (m *Model) cycleTheme() {
	names := themes.Names()
	i := slices.Index(names, m.theme.Name())
	m.applyTheme(names[(i+1)%len(names)])
}

func (m *Model) applyTheme(name string) {
	m.theme = themes.Get(name)
	m.state.Theme = m.theme.Name()
	m.detailMD = nil
	m.sessions.SetTheme(m.theme)
	m.transcript.SetTheme(m.theme)
	m.products.SetTheme(m.theme)
	m.status.SetTheme(m.theme)
	m.toasts.SetTheme(m.theme)
}

func (m *Model) saveState() {
	if m.statePath == "" {
		return
	}
	if err := config.SaveState(m.statePath, m.state); err != nil {
		log.Warn("failed to save UI state", "err", err)
	}
}

func (m *Model) sidebarVisible() bool {
	return m.state.ShowSidebar && m.width >= minMainWidth+sidebarWidth
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	helpHeight := 0
	if m.showHelp {
		helpHeight = 1
	}
	bodyHeight := max(m.height-1-helpHeight-inputHeight, 4)

	mainWidth := m.width
	if m.sidebarVisible() {
		mainWidth -= sidebarWidth
		m.sessions.SetSize(sidebarWidth, bodyHeight+inputHeight)
	}
	productsWidth := min(max(m.state.CardWidth+12, 30), mainWidth/2)
	transcriptWidth := mainWidth - productsWidth

	m.transcript.SetSize(max(transcriptWidth-2, 10), max(bodyHeight-2, 1))
	m.products.SetSize(productsWidth, bodyHeight)
	m.input.Width = max(mainWidth-4-lipgloss.Width(inputPrompt), 10)
	m.status.SetWidth(m.width)
	m.help.Width = m.width
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	mainWidth := m.width
	if m.sidebarVisible() {
		mainWidth -= sidebarWidth
	}
	productsWidth := min(max(m.state.CardWidth+12, 30), mainWidth/2)
	bodyHeight := max(m.height-1-inputHeight, 4)
	if m.showHelp {
		bodyHeight--
	}

	chat := m.theme.Border().
		Width(max(mainWidth-productsWidth-2, 0)).
		Height(max(bodyHeight-2, 0)).
		Render(m.transcript.View())
	top := lipgloss.JoinHorizontal(lipgloss.Top, chat, m.products.View())

	inputStyle := m.theme.Input()
	if m.focus == focusInput && !m.app.Busy() {
		inputStyle = m.theme.InputActive()
	}
	input := inputStyle.Width(max(mainWidth-2, 0)).Render(m.input.View())
	main := lipgloss.JoinVertical(lipgloss.Left, top, input)
	if m.sidebarVisible() {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.sessions.View(), main)
	}

	rows := []string{main}
	if m.showHelp {
		bindings := keys.global()
		switch m.focus {
		case focusProducts:
			bindings = append(products.Help(), keys.Quit)
		case focusSessions:
			bindings = append(sessions.Help(), keys.Quit)
		}
		rows = append(rows, m.help.ShortHelpView(bindings))
	}
	rows = append(rows, m.status.View())
	view := lipgloss.JoinVertical(lipgloss.Left, rows...)

	if m.app.QuickView.IsOpen() {
		view = layout.PlaceOverlay(m.width, m.height, m.detailView(), view, layout.Center)
	}
	return m.toasts.RenderOverlay(m.width, m.height, view)
}

func (m *Model) detailView() string {
	qv := m.app.QuickView.View()
	width := min(detailWidth, m.width-4)
	if m.detailMD == nil || m.detailMD.Width() != width-8 {
		md, err := render.NewMarkdown(width-8, m.theme.MarkdownStyle())
		if err != nil {
			log.Debug("quick view markdown unavailable", "err", err)
		}
		m.detailMD = md
	}

	p := qv.Product
	recs := make([]render.Card, 0, len(qv.Recommendations))
	for _, r := range qv.Recommendations {
		recs = append(recs, render.RecommendationCard(r))
	}
	detail := render.Detail{
		Card:            render.NewCard(0, p, m.app),
		Description:     m.detailMD.Render(render.Describe(p)),
		Colors:          p.Colors,
		Sizes:           p.Sizes,
		Recommendations: recs,
		Loading:         qv.Loading,
		Err:             qv.Err,
	}
	return m.theme.Cards().DetailView(detail, width) + "\n" + m.help.ShortHelpView(keys.quickView())
}

// Run starts the TUI application
func Run(ctx context.Context, a *app.App, opts Options) error {
	if err := a.Watch(ctx); err != nil {
		log.Warn("cross-process sync disabled", "err", err)
	}

	p := tea.NewProgram(
		New(ctx, a, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
