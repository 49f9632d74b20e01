package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/playster/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string       { return i.playlist.Title }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d videos", i.playlist.ItemCount)
	if i.playlist.ChannelTitle != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.ChannelTitle)
	}
	return desc
}

// playlistItems converts playlists to list items, one per playlist ID.
func playlistItems(playlists []models.Playlist) []list.Item {
	unique := models.UniquePlaylists(playlists)
	items := make([]list.Item, len(unique))
	for i, p := range unique {
		items[i] = playlistItem{playlist: p}
	}
	return items
}
