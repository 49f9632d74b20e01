package services

import (
	"context"

	"github.com/desertthunder/playster/internal/models"
	"golang.org/x/oauth2"
)

// PlaylistService lists the playlists owned by an account.
type PlaylistService interface {
	// ListPlaylists returns the first page of the account's playlists in API order.
	ListPlaylists(ctx context.Context, id models.Identity) ([]models.Playlist, error)

	// Name returns the name of the service (e.g., "YouTube")
	Name() string
}

// TokenProvider hands out an authorized token source for an account.
type TokenProvider interface {
	TokenSource(ctx context.Context, id models.Identity) (oauth2.TokenSource, error)
}

// TokenProviderFunc adapts a function to [TokenProvider].
type TokenProviderFunc func(ctx context.Context, id models.Identity) (oauth2.TokenSource, error)

func (f TokenProviderFunc) TokenSource(ctx context.Context, id models.Identity) (oauth2.TokenSource, error) {
	return f(ctx, id)
}
