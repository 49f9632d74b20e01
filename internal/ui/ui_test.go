package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playster/internal/auth"
	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/session"
	"github.com/desertthunder/playster/internal/shared"
	th "github.com/desertthunder/playster/internal/testing"
)

var user = models.NewIdentity("user@x.com", models.GoogleAccountType)

// fakeAuth commits to the session the way the auth controller does.
type fakeAuth struct {
	holder *session.Holder
	id     models.Identity
	err    error
	calls  []auth.Method
}

func (f *fakeAuth) SignIn(_ context.Context, m auth.Method) auth.Outcome {
	f.calls = append(f.calls, m)
	a := f.holder.Begin()
	if f.err != nil {
		f.holder.SaveLoginFailure(a, f.err)
		return auth.Outcome{Method: m, Err: f.err}
	}
	f.holder.SaveLoginSuccess(a, f.id)
	return auth.Outcome{Method: m, Identity: f.id}
}

type fixture struct {
	model     *Model
	holder    *session.Holder
	auth      *fakeAuth
	playlists *th.MockPlaylistService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := shared.NewLogger(io.Discard)
	holder := session.New(logger)
	f := &fixture{
		holder:    holder,
		auth:      &fakeAuth{holder: holder, id: user},
		playlists: &th.MockPlaylistService{},
	}
	f.model = NewModel(ctx, Options{
		Session:    holder,
		Auth:       f.auth,
		Playlists:  f.playlists,
		Prompts:    make(PromptChannel, 1),
		MinLoading: 30 * time.Millisecond,
		Logger:     logger,
	})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	_, cmd := f.model.Update(msg)
	return cmd
}

// nextSession reads the latest snapshot from the model's subscription.
func (f *fixture) nextSession(t *testing.T) tea.Msg {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- f.model.waitForSession()() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for session change")
		return nil
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want Screen
	}{
		{"unauthenticated", session.Snapshot{State: session.Unauthenticated}, ScreenOnboarding},
		{"authenticating", session.Snapshot{State: session.Authenticating}, ScreenOnboarding},
		{"authenticated", session.Snapshot{State: session.Authenticated, Identity: user}, ScreenContent},
		{"authenticated without identity", session.Snapshot{State: session.Authenticated}, ScreenOnboarding},
		{"authenticated with blank type", session.Snapshot{
			State: session.Authenticated, Identity: models.Identity{Name: "user@x.com"},
		}, ScreenOnboarding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Route(tt.snap); got != tt.want {
				t.Errorf("Route() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadingScreen(t *testing.T) {
	t.Run("waits the minimum delay", func(t *testing.T) {
		f := newFixture(t)

		start := time.Now()
		msg := f.model.waitForLoading()()
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("loading finished after %v, want at least 30ms", elapsed)
		}
		if msg != loadingDoneMsg() {
			t.Errorf("unexpected message %+v", msg)
		}
	})

	t.Run("ignores session changes until loaded", func(t *testing.T) {
		f := newFixture(t)
		if !f.holder.Restore(user) {
			t.Fatal("Restore() = false")
		}

		f.send(f.nextSession(t))
		if f.model.Screen() != ScreenLoading {
			t.Errorf("expected loading screen, got %v", f.model.Screen())
		}
		if n := f.playlists.CallCount(); n != 0 {
			t.Errorf("expected no fetch while loading, got %d", n)
		}
		if !strings.Contains(f.model.View(), "Playster") {
			t.Errorf("loading view missing title: %q", f.model.View())
		}
	})

	t.Run("restored session goes straight to content", func(t *testing.T) {
		f := newFixture(t)
		if !f.holder.Restore(user) {
			t.Fatal("Restore() = false")
		}
		f.send(f.nextSession(t))

		cmd := f.send(loadingDoneMsg())
		if f.model.Screen() != ScreenContent {
			t.Fatalf("expected content screen, got %v", f.model.Screen())
		}
		if cmd == nil {
			t.Fatal("arriving at content should start the playlist fetch")
		}

		f.send(cmd())
		if n := f.playlists.CallCount(); n != 1 {
			t.Fatalf("expected 1 fetch, got %d", n)
		}
		if f.playlists.Calls[0] != user {
			t.Errorf("fetched for %+v, want %+v", f.playlists.Calls[0], user)
		}
	})

	t.Run("no session goes to onboarding", func(t *testing.T) {
		f := newFixture(t)

		f.send(loadingDoneMsg())
		if f.model.Screen() != ScreenOnboarding {
			t.Errorf("expected onboarding screen, got %v", f.model.Screen())
		}
		if !strings.Contains(f.model.View(), "sign in with browser") {
			t.Errorf("onboarding view missing browser option: %q", f.model.View())
		}
	})
}

func TestOnboarding(t *testing.T) {
	t.Run("sign in navigates to content", func(t *testing.T) {
		for r, method := range map[rune]auth.Method{
			'l': auth.MethodLegacy,
			'o': auth.MethodOneTap,
			'c': auth.MethodCredential,
		} {
			t.Run(method.String(), func(t *testing.T) {
				f := newFixture(t)
				f.send(loadingDoneMsg())

				cmd := f.send(keyPress(r))
				if cmd == nil {
					t.Fatal("expected a sign-in command")
				}
				if !f.model.signingIn {
					t.Error("expected signingIn to be set")
				}
				if f.send(keyPress('l')) != nil {
					t.Error("a second sign-in should be ignored while one runs")
				}

				f.send(cmd())
				if f.model.signingIn {
					t.Error("expected signingIn to be cleared")
				}
				if len(f.auth.calls) != 1 || f.auth.calls[0] != method {
					t.Errorf("sign-in calls = %v, want [%v]", f.auth.calls, method)
				}

				f.send(f.nextSession(t))
				if f.model.Screen() != ScreenContent {
					t.Errorf("expected content screen, got %v", f.model.Screen())
				}
				if !f.model.fetched {
					t.Error("expected playlists to be fetched")
				}
			})
		}
	})

	t.Run("failure stays on onboarding and shows the error", func(t *testing.T) {
		f := newFixture(t)
		f.auth.err = errors.New("no stored credential")
		f.send(loadingDoneMsg())

		f.send(f.send(keyPress('c'))())
		f.send(f.nextSession(t))

		if f.model.Screen() != ScreenOnboarding {
			t.Errorf("expected onboarding screen, got %v", f.model.Screen())
		}
		if !strings.Contains(f.model.View(), "no stored credential") {
			t.Errorf("view missing error: %q", f.model.View())
		}
	})

	t.Run("shows device code prompt", func(t *testing.T) {
		f := newFixture(t)
		f.send(loadingDoneMsg())

		cmd := f.send(promptMsg(auth.Prompt{Method: auth.MethodOneTap, URL: "https://www.google.com/device", UserCode: "ABCD-EFGH"}))
		if cmd == nil {
			t.Error("expected the model to keep listening for prompts")
		}

		view := f.model.View()
		for _, want := range []string{"ABCD-EFGH", "https://www.google.com/device"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q: %q", want, view)
			}
		}
	})

	t.Run("quit", func(t *testing.T) {
		f := newFixture(t)
		f.send(loadingDoneMsg())

		cmd := f.send(keyPress('q'))
		if cmd == nil {
			t.Fatal("expected a quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestContent(t *testing.T) {
	arrive := func(t *testing.T, f *fixture) tea.Cmd {
		t.Helper()
		if !f.holder.Restore(user) {
			t.Fatal("Restore() = false")
		}
		f.send(f.nextSession(t))
		return f.send(loadingDoneMsg())
	}

	t.Run("renders unique playlists", func(t *testing.T) {
		f := newFixture(t)
		f.playlists.Playlists = []models.Playlist{
			{ID: "PL1", Title: "Road Trip", ItemCount: 12},
			{ID: "PL2", Title: "Focus", ItemCount: 3},
			{ID: "PL1", Title: "Road Trip (dupe)", ItemCount: 12},
		}

		f.send(arrive(t, f)())

		items := f.model.list.Items()
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		first := items[0].(playlistItem)
		if first.Title() != "Road Trip" || first.Description() != "12 videos" {
			t.Errorf("unexpected first item %q / %q", first.Title(), first.Description())
		}
		if got := items[1].(playlistItem).Title(); got != "Focus" {
			t.Errorf("second item = %q, want Focus", got)
		}
	})

	t.Run("shows the selected thumbnail", func(t *testing.T) {
		f := newFixture(t)
		f.playlists.Playlists = []models.Playlist{
			{ID: "PL1", Title: "Road Trip", ItemCount: 12, ThumbnailURL: "https://i.ytimg.com/vi/1/hqdefault.jpg"},
		}

		f.send(arrive(t, f)())

		if !strings.Contains(f.model.View(), "Thumbnail: https://i.ytimg.com/vi/1/hqdefault.jpg") {
			t.Errorf("view missing thumbnail URL: %q", f.model.View())
		}
	})

	t.Run("fetch error renders an empty list", func(t *testing.T) {
		f := newFixture(t)
		f.playlists.Err = shared.ErrAPIRequest

		f.send(arrive(t, f)())

		if f.model.Screen() != ScreenContent {
			t.Errorf("expected content screen, got %v", f.model.Screen())
		}
		if n := len(f.model.list.Items()); n != 0 {
			t.Errorf("expected an empty list, got %d items", n)
		}
		if view := f.model.View(); strings.Contains(view, "API request failed") || strings.Contains(view, "Thumbnail:") {
			t.Errorf("unexpected content in view: %q", view)
		}
	})

	t.Run("fetches only once", func(t *testing.T) {
		f := newFixture(t)
		f.send(arrive(t, f)())

		f.send(sessionChangedMsg(f.holder.Current()))
		f.send(sessionChangedMsg(f.holder.Current()))

		if n := f.playlists.CallCount(); n != 1 {
			t.Errorf("expected 1 fetch, got %d", n)
		}
	})

	t.Run("sign out returns to onboarding", func(t *testing.T) {
		f := newFixture(t)
		f.send(arrive(t, f)())

		f.holder.Reset()
		f.send(f.nextSession(t))

		if f.model.Screen() != ScreenOnboarding {
			t.Errorf("expected onboarding screen, got %v", f.model.Screen())
		}
	})
}

func TestPromptChannel(t *testing.T) {
	ch := make(PromptChannel, 1)
	p := auth.Prompt{URL: "https://example.com", UserCode: "X"}

	if err := ch.Prompt(context.Background(), p); err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if got := <-ch; got != p {
		t.Errorf("received %+v, want %+v", got, p)
	}

	ch <- p
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ch.Prompt(ctx, p); !errors.Is(err, context.Canceled) {
		t.Errorf("Prompt() on a full channel error = %v, want context.Canceled", err)
	}
}

func TestPlaylistItem(t *testing.T) {
	item := playlistItem{playlist: models.Playlist{ID: "PL1", Title: "Mix", ChannelTitle: "Me", ItemCount: 4}}

	if item.FilterValue() != "Mix" {
		t.Errorf("FilterValue() = %q, want Mix", item.FilterValue())
	}
	if desc := item.Description(); !strings.HasPrefix(desc, "4 videos") || !strings.Contains(desc, "Me") {
		t.Errorf("Description() = %q", desc)
	}
}
