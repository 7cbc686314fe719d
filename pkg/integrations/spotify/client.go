package spotify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/matzehuels/covercluster/pkg/cache"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/httputil"
	"github.com/matzehuels/covercluster/pkg/integrations"
	"github.com/matzehuels/covercluster/pkg/session"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"
	defaultAuthURL = "https://accounts.spotify.com/api/token"

	// pageSize is the largest page the playlist tracks endpoint serves.
	pageSize = 100
)

// Config configures a Client.
type Config struct {
	ClientID     string
	ClientSecret string

	// Sessions keeps the application token between runs. Defaults to an
	// in-memory store.
	Sessions session.Store
	// Cache stores API responses. Defaults to no caching.
	Cache    cache.Cache
	CacheTTL time.Duration

	// BaseURL and AuthURL override the API endpoints, for tests.
	BaseURL string
	AuthURL string
}

// Client provides access to the Spotify Web API.
type Client struct {
	*integrations.Client
	baseURL   string
	authURL   string
	clientID  string
	secret    string
	sessions  session.Store
	sessionID string

	mu sync.Mutex // serializes token refreshes
}

// NewClient creates a Spotify API client. Credentials are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig,
			"spotify client id and secret are required (set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET)")
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = cache.HTTPTTL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}

	return &Client{
		Client:    integrations.NewClient(cfg.Cache, "spotify", cfg.CacheTTL, map[string]string{"Accept": "application/json"}),
		baseURL:   cfg.BaseURL,
		authURL:   cfg.AuthURL,
		clientID:  cfg.ClientID,
		secret:    cfg.ClientSecret,
		sessions:  cfg.Sessions,
		sessionID: "spotify-" + cache.Hash([]byte(cfg.ClientID))[:12],
	}, nil
}

// PlaylistTracks returns every track of a playlist, following pagination.
// Entries without a track (removed or local files) are skipped.
// If refresh is true, cached data is bypassed.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, refresh bool) ([]integrations.Track, error) {
	var tracks []integrations.Track
	err := c.Cached(ctx, "playlist:"+playlistID, refresh, &tracks, func() error {
		var err error
		tracks, err = c.fetchPlaylist(ctx, playlistID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

func (c *Client) fetchPlaylist(ctx context.Context, playlistID string) ([]integrations.Track, error) {
	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", c.baseURL, url.PathEscape(playlistID), pageSize)

	var tracks []integrations.Track
	for next != "" {
		var page playlistPage
		if err := c.authGet(ctx, next, &page); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return nil, fmt.Errorf("%w: spotify playlist %s", err, playlistID)
			}
			return nil, err
		}
		for _, item := range page.Items {
			if item.Track == nil || item.Track.Album.Name == "" {
				continue
			}
			tracks = append(tracks, item.Track.toTrack())
		}
		next = page.Next
	}
	return tracks, nil
}

// AlbumCoverURL returns the URL of the album's largest cover image.
// If refresh is true, cached data is bypassed.
func (c *Client) AlbumCoverURL(ctx context.Context, albumID string, refresh bool) (string, error) {
	var a albumResponse
	err := c.Cached(ctx, "album:"+albumID, refresh, &a, func() error {
		endpoint := fmt.Sprintf("%s/albums/%s", c.baseURL, url.PathEscape(albumID))
		return c.authGet(ctx, endpoint, &a)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: spotify album %s", err, albumID)
		}
		return "", err
	}
	if len(a.Images) == 0 {
		return "", fmt.Errorf("%w: spotify album %s has no cover", integrations.ErrNotFound, albumID)
	}
	// The API lists images widest first.
	return a.Images[0].URL, nil
}

// Download fetches a cover image. Image hosts need no authorization.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errs.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return c.GetBytes(ctx, rawURL, integrations.MaxCoverBytes)
}

// authGet performs an authorized GET. A rejected token is discarded and the
// request retried once with a new one.
func (c *Client) authGet(ctx context.Context, endpoint string, v any) error {
	for attempt := 0; ; attempt++ {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}
		err = c.GetWithHeaders(ctx, endpoint, map[string]string{"Authorization": "Bearer " + tok}, v)
		if errors.Is(err, integrations.ErrUnauthorized) && attempt == 0 {
			_ = c.sessions.Delete(ctx, c.sessionID)
			continue
		}
		return err
	}
}

// token returns a valid application token, requesting one when the stored
// token is missing or expired.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess, err := c.sessions.Get(ctx, c.sessionID); err == nil && sess != nil {
		return sess.AccessToken, nil
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.secret))
	var resp tokenResponse
	err := c.PostForm(ctx, c.authURL, url.Values{"grant_type": {"client_credentials"}},
		map[string]string{"Authorization": "Basic " + basic}, &resp)
	if err != nil {
		// The token endpoint answers bad credentials with 400 or 401.
		if errors.Is(err, integrations.ErrUnauthorized) || !httputil.IsRetryable(err) && errors.Is(err, integrations.ErrNetwork) {
			return "", errs.Wrap(errs.ErrCodeUnauthorized, err, "spotify rejected the client credentials")
		}
		return "", fmt.Errorf("request spotify token: %w", err)
	}
	if resp.AccessToken == "" {
		return "", errs.New(errs.ErrCodeUnauthorized, "spotify token response has no access token")
	}

	sess, err := session.New(c.sessionID, resp.AccessToken, time.Duration(resp.ExpiresIn)*time.Second)
	if err != nil {
		return "", err
	}
	if resp.TokenType != "" {
		sess.TokenType = resp.TokenType
	}
	_ = c.sessions.Set(ctx, sess)
	return resp.AccessToken, nil
}
