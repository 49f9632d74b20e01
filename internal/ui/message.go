package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playster/internal/auth"
	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoadingDone MsgKind = iota
	MsgSessionChanged
	MsgPrompt
	MsgSignInDone
	MsgPlaylistsFetched
)

type playlistsResult struct {
	playlists []models.Playlist
	err       error
}

// loadingDoneMsg is the constructor for [MsgLoadingDone]
func loadingDoneMsg() Msg {
	return Msg{kind: MsgLoadingDone}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg(snap session.Snapshot) Msg {
	return Msg{kind: MsgSessionChanged, data: snap}
}

// promptMsg is the constructor for [MsgPrompt]
func promptMsg(p auth.Prompt) Msg {
	return Msg{kind: MsgPrompt, data: p}
}

// signInDoneMsg is the constructor for [MsgSignInDone]
func signInDoneMsg(out auth.Outcome) Msg {
	return Msg{kind: MsgSignInDone, data: out}
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsResult{playlists, err}}
}
