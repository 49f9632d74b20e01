package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/playster/internal/auth"
	"github.com/desertthunder/playster/internal/services"
	"github.com/desertthunder/playster/internal/session"
	"github.com/desertthunder/playster/internal/shared"
)

// DefaultMinLoading is how long the loading screen stays up before the session is looked at.
const DefaultMinLoading = 2 * time.Second

// Authenticator runs one sign-in and commits it to the session.
type Authenticator interface {
	SignIn(ctx context.Context, m auth.Method) auth.Outcome
}

// Options holds the dependencies of a [Model].
type Options struct {
	Session    *session.Holder
	Auth       Authenticator
	Playlists  services.PlaylistService
	Prompts    PromptChannel
	MinLoading time.Duration
	Logger     *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	screen     Screen
	loaded     bool
	snap       session.Snapshot
	sessionCh  <-chan session.Snapshot
	prompts    PromptChannel
	auth       Authenticator
	playlists  services.PlaylistService
	minLoading time.Duration
	logger     *log.Logger

	signingIn  bool
	method     auth.Method
	prompt     *auth.Prompt
	cancelAuth context.CancelFunc

	fetched  bool
	fetching bool
	list     list.Model

	width   int
	height  int
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The model subscribes to the session for as long as ctx lives.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.MinLoading <= 0 {
		opts.MinLoading = DefaultMinLoading
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Session == nil {
		opts.Session = session.New(opts.Logger)
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "YouTube Playlists"
	l.SetShowHelp(false)

	return &Model{
		ctx:        ctx,
		screen:     ScreenLoading,
		snap:       opts.Session.Current(),
		sessionCh:  opts.Session.Subscribe(ctx),
		prompts:    opts.Prompts,
		auth:       opts.Auth,
		playlists:  opts.Playlists,
		minLoading: opts.MinLoading,
		logger:     shared.WithLogger(opts.Logger, "component", "tui"),
		list:       l,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.warn)),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Screen returns the screen currently shown.
func (m *Model) Screen() Screen {
	return m.screen
}

// Init starts the loading timer and begins listening for session changes and prompts.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForLoading(), m.waitForSession(), m.waitForPrompt())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgLoadingDone:
		m.loaded = true
		return m, m.navigate(Route(m.snap))

	case MsgSessionChanged:
		m.snap = msg.data.(session.Snapshot)
		if !m.loaded {
			return m, m.waitForSession()
		}
		return m, tea.Batch(m.navigate(Route(m.snap)), m.waitForSession())

	case MsgPrompt:
		p := msg.data.(auth.Prompt)
		m.prompt = &p
		return m, m.waitForPrompt()

	case MsgSignInDone:
		out := msg.data.(auth.Outcome)
		m.signingIn = false
		m.prompt = nil
		if m.cancelAuth != nil {
			m.cancelAuth()
			m.cancelAuth = nil
		}
		if out.Err != nil {
			m.logger.Warn("sign-in failed", "method", out.Method, "error", out.Err)
		}
		return m, nil

	case MsgPlaylistsFetched:
		res := msg.data.(playlistsResult)
		m.fetching = false
		if res.err != nil {
			m.logger.Error("failed to fetch playlists", "error", res.err)
		}
		return m, m.list.SetItems(playlistItems(res.playlists))
	}
	return m, nil
}

// navigate switches to screen, starting the one-time playlist fetch on first arrival at content.
func (m *Model) navigate(screen Screen) tea.Cmd {
	if screen != m.screen {
		m.logger.Debug("navigate", "from", m.screen, "to", screen)
	}
	m.screen = screen

	if screen == ScreenContent && !m.fetched {
		m.fetched = true
		m.fetching = true
		return m.fetchPlaylists()
	}
	return nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == ScreenContent && m.list.SettingFilter() {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		if m.cancelAuth != nil {
			m.cancelAuth()
		}
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenOnboarding:
		return m.handleOnboardingKeys(msg)
	case ScreenContent:
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) handleOnboardingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) {
		if m.cancelAuth != nil {
			m.cancelAuth()
		}
		return m, nil
	}

	if m.signingIn {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.legacy):
		return m, m.signIn(auth.MethodLegacy)
	case key.Matches(msg, m.keys.oneTap):
		return m, m.signIn(auth.MethodOneTap)
	case key.Matches(msg, m.keys.credential):
		return m, m.signIn(auth.MethodCredential)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen != ScreenContent {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) signIn(method auth.Method) tea.Cmd {
	if m.auth == nil {
		m.logger.Error("no authenticator configured")
		return nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.signingIn = true
	m.method = method
	m.prompt = nil
	m.cancelAuth = cancel

	a := m.auth
	return func() tea.Msg {
		return signInDoneMsg(a.SignIn(ctx, method))
	}
}

func (m *Model) waitForLoading() tea.Cmd {
	return tea.Tick(m.minLoading, func(time.Time) tea.Msg {
		return loadingDoneMsg()
	})
}

func (m *Model) waitForSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangedMsg(snap)
	}
}

func (m *Model) waitForPrompt() tea.Cmd {
	if m.prompts == nil {
		return nil
	}
	ch, ctx := m.prompts, m.ctx
	return func() tea.Msg {
		select {
		case p := <-ch:
			return promptMsg(p)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	svc, ctx, id := m.playlists, m.ctx, m.snap.Identity
	return func() tea.Msg {
		if svc == nil {
			return playlistsFetchedMsg(nil, errors.New("no playlist service configured"))
		}
		playlists, err := svc.ListPlaylists(ctx, id)
		return playlistsFetchedMsg(playlists, err)
	}
}

// View renders the UI based on the current screen.
func (m *Model) View() string {
	switch m.screen {
	case ScreenLoading:
		return m.renderLoading()
	case ScreenOnboarding:
		return m.renderOnboarding()
	case ScreenContent:
		return m.renderContent()
	default:
		return ""
	}
}

func (m *Model) renderLoading() string {
	return fmt.Sprintf("\n  %s %s\n", m.spinner.View(), styles.title.Render("Playster"))
}

func (m *Model) renderOnboarding() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Welcome to Playster"))
	b.WriteString("\n" + styles.help.Render("Sign in with Google to see your YouTube playlists.") + "\n\n")

	for _, k := range []key.Binding{m.keys.legacy, m.keys.oneTap, m.keys.credential} {
		fmt.Fprintf(&b, "  [%s] %s\n", k.Help().Key, k.Help().Desc)
	}

	if m.signingIn {
		fmt.Fprintf(&b, "\n%s Signing in (%s)...\n", m.spinner.View(), m.method)
	}

	if m.prompt != nil {
		b.WriteString("\n")
		if m.prompt.UserCode != "" {
			fmt.Fprintf(&b, "Visit %s and enter:\n%s\n", m.prompt.URL, styles.code.Render(m.prompt.UserCode))
		} else {
			b.WriteString(styles.box.Render("Open this URL if the browser did not start:\n" + m.prompt.URL))
			b.WriteString("\n")
		}
	}

	if err := m.snap.LastError; err != nil && !m.signingIn {
		fmt.Fprintf(&b, "\n%s\n", styles.err.Render("Sign-in failed: "+err.Error()))
	}

	helpKeys := []key.Binding{m.keys.quit}
	if m.signingIn {
		helpKeys = []key.Binding{m.keys.cancel, m.keys.quit}
	}
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderContent() string {
	header := styles.ok.Render("✓ " + m.snap.Identity.Name)
	if m.fetching {
		return fmt.Sprintf("%s\n\n%s Loading playlists...", header, m.spinner.View())
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", header, m.list.View(), m.thumbnailLine(), helpView)
}

// thumbnailLine shows the artwork URL of the selected playlist.
func (m *Model) thumbnailLine() string {
	item, ok := m.list.SelectedItem().(playlistItem)
	if !ok || item.playlist.ThumbnailURL == "" {
		return ""
	}
	return styles.help.Render("Thumbnail: " + item.playlist.ThumbnailURL)
}
