package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// MaxResults is the page size of the single playlists.list call.
const MaxResults int64 = 50

const (
	defaultYouTubeTimeout = 30 * time.Second
	defaultRateLimit      = 5.0
)

// PlaylistParts are the resource parts requested for each playlist.
var PlaylistParts = []string{"snippet", "contentDetails"}

// YouTubeOptions configures a [YouTubeService].
type YouTubeOptions struct {
	Tokens TokenProvider

	// Endpoint overrides the API base URL, e.g. for a local fake.
	Endpoint string

	Timeout time.Duration

	// RateLimit is the number of requests per second; zero uses the default, negative disables limiting.
	RateLimit float64

	// HTTPClient is the transport wrapped by the OAuth client. Defaults to [http.DefaultClient].
	HTTPClient *http.Client
	Logger     *log.Logger
}

// YouTubeService reads playlists with the YouTube Data API v3.
type YouTubeService struct {
	tokens     TokenProvider
	endpoint   string
	timeout    time.Duration
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *log.Logger
}

// NewYouTubeService creates a new [YouTubeService].
func NewYouTubeService(opts YouTubeOptions) *YouTubeService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultYouTubeTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Limit(opts.RateLimit)
	switch {
	case opts.RateLimit == 0:
		limit = rate.Limit(defaultRateLimit)
	case opts.RateLimit < 0:
		limit = rate.Inf
	}

	return &YouTubeService{
		tokens:     opts.Tokens,
		endpoint:   opts.Endpoint,
		timeout:    opts.Timeout,
		limiter:    rate.NewLimiter(limit, 1),
		httpClient: opts.HTTPClient,
		logger:     shared.WithLogger(opts.Logger, "service", "youtube"),
	}
}

// Name returns the service name.
func (s *YouTubeService) Name() string {
	return "YouTube"
}

// ListPlaylists makes one playlists.list call for the account's own playlists. No further pages are read.
func (s *YouTubeService) ListPlaylists(ctx context.Context, id models.Identity) ([]models.Playlist, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: no account", shared.ErrNotAuthenticated)
	}
	if s.tokens == nil {
		return nil, fmt.Errorf("%w: no token provider", shared.ErrNotAuthenticated)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, s.deadline(ctx, fmt.Errorf("rate limiter: %w", err))
	}

	svc, err := s.client(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := svc.Playlists.List(PlaylistParts).
		Mine(true).
		MaxResults(MaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, s.deadline(ctx, apiError(err))
	}

	playlists := make([]models.Playlist, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil {
			continue
		}
		playlists = append(playlists, toPlaylist(item))
	}

	s.logger.Debug("fetched playlists", "account", id.Name, "count", len(playlists), "took", time.Since(start))
	return playlists, nil
}

func (s *YouTubeService) client(ctx context.Context, id models.Identity) (*youtube.Service, error) {
	ts, err := s.tokens.TokenSource(ctx, id)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, s.httpClient), ts)

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return svc, nil
}

func (s *YouTubeService) deadline(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: playlists request exceeded %s", shared.ErrTimeout, s.timeout)
	}
	return err
}

func apiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", shared.ErrTokenExpired, gerr.Message)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, gerr.Message)
		default:
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, gerr.Code, gerr.Message)
		}
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %v", shared.ErrTokenExpired, rerr)
	}
	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}

func toPlaylist(item *youtube.Playlist) models.Playlist {
	p := models.Playlist{ID: item.Id}
	if item.Snippet != nil {
		p.Title = item.Snippet.Title
		p.ChannelTitle = item.Snippet.ChannelTitle
		p.ThumbnailURL = thumbnailURL(item.Snippet.Thumbnails)
	}
	if item.ContentDetails != nil {
		p.ItemCount = item.ContentDetails.ItemCount
	}
	return p
}

// thumbnailURL prefers maxres, then high, then default.
func thumbnailURL(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*youtube.Thumbnail{t.Maxres, t.High, t.Default} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}
