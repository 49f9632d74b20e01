package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/shared"
	"golang.org/x/oauth2"
)

var account = models.NewIdentity("user@x.com", models.GoogleAccountType)

func staticTokens(token string) TokenProvider {
	return TokenProviderFunc(func(context.Context, models.Identity) (oauth2.TokenSource, error) {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}), nil
	})
}

func newTestService(t *testing.T, handler http.HandlerFunc, opts YouTubeOptions) *YouTubeService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts.Endpoint = srv.URL + "/"
	if opts.Tokens == nil {
		opts.Tokens = staticTokens("token-1")
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = -1
	}
	opts.Logger = shared.NewLogger(io.Discard)
	return NewYouTubeService(opts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// splitParts flattens repeated and comma-separated part values.
func splitParts(values []string) []string {
	var parts []string
	for _, v := range values {
		parts = append(parts, strings.Split(v, ",")...)
	}
	sort.Strings(parts)
	return parts
}

func TestYouTubeService(t *testing.T) {
	t.Run("Name", func(t *testing.T) {
		if svc := NewYouTubeService(YouTubeOptions{}); svc.Name() != "YouTube" {
			t.Errorf("expected name to be 'YouTube', got %s", svc.Name())
		}
	})

	t.Run("ListPlaylists", func(t *testing.T) {
		t.Run("sends one request with the fixed parameters", func(t *testing.T) {
			var calls atomic.Int32
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)

				if !strings.HasSuffix(r.URL.Path, "/youtube/v3/playlists") {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
					t.Errorf("expected bearer token, got %q", got)
				}

				q := r.URL.Query()
				if got := splitParts(q["part"]); strings.Join(got, ",") != "contentDetails,snippet" {
					t.Errorf("unexpected parts %v", got)
				}
				if q.Get("mine") != "true" {
					t.Errorf("expected mine=true, got %q", q.Get("mine"))
				}
				if q.Get("maxResults") != "50" {
					t.Errorf("expected maxResults=50, got %q", q.Get("maxResults"))
				}
				if q.Get("pageToken") != "" {
					t.Errorf("expected no page token, got %q", q.Get("pageToken"))
				}

				writeJSON(w, http.StatusOK, map[string]any{
					"kind":          "youtube#playlistListResponse",
					"nextPageToken": "CDIQAA",
					"items": []map[string]any{
						{
							"id": "PL1",
							"snippet": map[string]any{
								"title":        "Road Trip",
								"channelTitle": "Me",
								"thumbnails": map[string]any{
									"default": map[string]any{"url": "https://i.ytimg.com/default.jpg"},
									"high":    map[string]any{"url": "https://i.ytimg.com/high.jpg"},
									"maxres":  map[string]any{"url": "https://i.ytimg.com/maxres.jpg"},
								},
							},
							"contentDetails": map[string]any{"itemCount": 12},
						},
						{
							"id": "PL2",
							"snippet": map[string]any{
								"title": "Focus",
								"thumbnails": map[string]any{
									"default": map[string]any{"url": "https://i.ytimg.com/d2.jpg"},
									"high":    map[string]any{"url": "https://i.ytimg.com/h2.jpg"},
								},
							},
							"contentDetails": map[string]any{"itemCount": 0},
						},
						{
							"id":      "PL3",
							"snippet": map[string]any{"title": "Bare", "thumbnails": map[string]any{"default": map[string]any{"url": "https://i.ytimg.com/d3.jpg"}}},
						},
					},
				})
			}, YouTubeOptions{})

			playlists, err := svc.ListPlaylists(context.Background(), account)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if calls.Load() != 1 {
				t.Errorf("expected exactly one request, got %d", calls.Load())
			}

			want := []models.Playlist{
				{ID: "PL1", Title: "Road Trip", ChannelTitle: "Me", ThumbnailURL: "https://i.ytimg.com/maxres.jpg", ItemCount: 12},
				{ID: "PL2", Title: "Focus", ThumbnailURL: "https://i.ytimg.com/h2.jpg"},
				{ID: "PL3", Title: "Bare", ThumbnailURL: "https://i.ytimg.com/d3.jpg"},
			}
			if len(playlists) != len(want) {
				t.Fatalf("expected %d playlists, got %d", len(want), len(playlists))
			}
			for i := range want {
				if playlists[i] != want[i] {
					t.Errorf("playlist %d = %+v, want %+v", i, playlists[i], want[i])
				}
			}
		})

		t.Run("empty response", func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
			}, YouTubeOptions{})

			playlists, err := svc.ListPlaylists(context.Background(), account)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(playlists) != 0 {
				t.Errorf("expected no playlists, got %d", len(playlists))
			}
		})

		errTests := []struct {
			name   string
			status int
			want   error
		}{
			{"unauthorized", http.StatusUnauthorized, shared.ErrTokenExpired},
			{"forbidden", http.StatusForbidden, shared.ErrAuthFailed},
			{"server error", http.StatusInternalServerError, shared.ErrAPIRequest},
		}

		for _, tt := range errTests {
			t.Run(tt.name, func(t *testing.T) {
				svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, tt.status, map[string]any{
						"error": map[string]any{"code": tt.status, "message": "nope"},
					})
				}, YouTubeOptions{})

				_, err := svc.ListPlaylists(context.Background(), account)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}

		t.Run("invalid identity", func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected")
			}, YouTubeOptions{})

			if _, err := svc.ListPlaylists(context.Background(), models.Identity{}); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("token provider fails", func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected")
			}, YouTubeOptions{Tokens: TokenProviderFunc(func(context.Context, models.Identity) (oauth2.TokenSource, error) {
				return nil, shared.ErrNotAuthenticated
			})})

			if _, err := svc.ListPlaylists(context.Background(), account); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("timeout", func(t *testing.T) {
			release := make(chan struct{})
			t.Cleanup(func() { close(release) })

			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}, YouTubeOptions{Timeout: 50 * time.Millisecond})

			if _, err := svc.ListPlaylists(context.Background(), account); !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
		})

		t.Run("rate limited", func(t *testing.T) {
			var calls atomic.Int32
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
			}, YouTubeOptions{RateLimit: 0.5, Timeout: 100 * time.Millisecond})

			if _, err := svc.ListPlaylists(context.Background(), account); err != nil {
				t.Fatalf("first call should pass the limiter, got %v", err)
			}
			if _, err := svc.ListPlaylists(context.Background(), account); err == nil {
				t.Error("expected second call to be held back by the limiter")
			}
			if calls.Load() != 1 {
				t.Errorf("expected one request to reach the API, got %d", calls.Load())
			}
		})
	})
}
