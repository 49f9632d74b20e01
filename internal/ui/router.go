package ui

import (
	"context"

	"github.com/desertthunder/playster/internal/auth"
	"github.com/desertthunder/playster/internal/session"
)

// Screen is one of the TUI's top-level screens.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenOnboarding
	ScreenContent
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenOnboarding:
		return "onboarding"
	case ScreenContent:
		return "content"
	default:
		return "unknown"
	}
}

// Route picks the screen for a session snapshot: content only for a signed-in session with a usable identity.
func Route(snap session.Snapshot) Screen {
	if snap.SignedIn() {
		return ScreenContent
	}
	return ScreenOnboarding
}

// PromptChannel is an [auth.Prompter] that hands prompts to the TUI.
type PromptChannel chan auth.Prompt

// Prompt delivers p, giving up when ctx is done.
func (c PromptChannel) Prompt(ctx context.Context, p auth.Prompt) error {
	select {
	case c <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
