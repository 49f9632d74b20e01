package auth

import (
	"github.com/desertthunder/playster/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// Scopes requested by every sign-in method.
var Scopes = []string{"openid", "email", youtube.YoutubeReadonlyScope}

// NewOAuthConfig builds the [oauth2.Config] shared by browser and device sign-in.
//
// The redirect URL is filled in per browser sign-in once the callback listener is bound.
func NewOAuthConfig(cfg shared.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}
}
