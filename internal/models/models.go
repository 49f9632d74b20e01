// package models defines the data model shared by the session, storage and playlist layers
package models

import (
	"fmt"
	"strings"
)

// GoogleAccountType is the account type recorded for browser sign-ins.
const GoogleAccountType = "com.google"

// Identity is the signed-in account: a name (usually an email address) and an account type.
//
// An identity is only usable when both fields are non-blank; the zero value means "no account".
type Identity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewIdentity trims both fields and returns the resulting [Identity].
func NewIdentity(name, accountType string) Identity {
	return Identity{Name: strings.TrimSpace(name), Type: strings.TrimSpace(accountType)}
}

// Valid reports whether both name and type are non-blank.
func (i Identity) Valid() bool {
	return strings.TrimSpace(i.Name) != "" && strings.TrimSpace(i.Type) != ""
}

// Validate returns an error describing which field is missing.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("account name is required")
	}
	if strings.TrimSpace(i.Type) == "" {
		return fmt.Errorf("account type is required")
	}
	return nil
}

func (i Identity) String() string {
	if !i.Valid() {
		return "<none>"
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.Type)
}

// Playlist is a read-only summary of one YouTube playlist.
type Playlist struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ItemCount    int64  `json:"item_count"`
}

// UniquePlaylists drops playlists without an ID and every repeat of an ID, keeping the first occurrence.
func UniquePlaylists(playlists []Playlist) []Playlist {
	seen := make(map[string]struct{}, len(playlists))
	unique := make([]Playlist, 0, len(playlists))
	for _, p := range playlists {
		if p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
