// Package spotify implements the remote catalog search against the Spotify
// Web API using the client-credentials flow.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/llehouerou/undertow/internal/fuzzy"
	"github.com/llehouerou/undertow/internal/resolve"
)

const (
	apiBaseURL = "https://api.spotify.com/v1"
	tokenURL   = "https://accounts.spotify.com/api/token"

	searchLimit = 25

	// Retry configuration
	maxRetries   = 3
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second
)

// Client talks to the Spotify Web API. It satisfies resolve.Searcher and
// exhausts pagination before returning, as the resolver expects.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// New builds a client authenticating with the client-credentials flow.
// Requests are throttled client-side to stay under the API's rate limit.
func New(clientID, clientSecret string) *Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return &Client{
		httpClient: cfg.Client(context.Background()),
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
		baseURL:    apiBaseURL,
	}
}

// SearchTracks returns track candidates for a free-text query, in the
// API's relevance order.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]*fuzzy.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(searchLimit))

	var result struct {
		Tracks struct {
			Items []trackResult `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, c.baseURL+"/search?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}

	candidates := make([]*fuzzy.Candidate, 0, len(result.Tracks.Items))
	for i := range result.Tracks.Items {
		candidates = append(candidates, result.Tracks.Items[i].toCandidate())
	}
	return candidates, nil
}

// SearchAlbums returns album candidates for a free-text query.
func (c *Client) SearchAlbums(ctx context.Context, query string) ([]*resolve.Album, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "album")
	params.Set("limit", strconv.Itoa(searchLimit))

	var result struct {
		Albums struct {
			Items []albumResult `json:"items"`
		} `json:"albums"`
	}
	if err := c.get(ctx, c.baseURL+"/search?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("search albums: %w", err)
	}

	albums := make([]*resolve.Album, 0, len(result.Albums.Items))
	for i := range result.Albums.Items {
		albums = append(albums, result.Albums.Items[i].toAlbum())
	}
	return albums, nil
}

// AlbumTracks returns every track of an album, following pagination.
func (c *Client) AlbumTracks(ctx context.Context, albumID string) ([]*fuzzy.Candidate, error) {
	params := url.Values{}
	params.Set("limit", "50")
	next := c.baseURL + "/albums/" + albumID + "/tracks?" + params.Encode()

	var candidates []*fuzzy.Candidate
	for next != "" {
		var page struct {
			Items []trackResult `json:"items"`
			Next  *string       `json:"next"`
		}
		if err := c.get(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("album tracks: %w", err)
		}
		for i := range page.Items {
			candidates = append(candidates, page.Items[i].toCandidate())
		}
		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}
	return candidates, nil
}

// get performs a rate-limited GET request with retry and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, reqURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(ctx, req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doRequestWithRetry executes a request with exponential backoff. Retries
// on network errors, 429 (honouring Retry-After) and 5xx responses.
func (c *Client) doRequestWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay = min(delay*2, maxDelay)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if wait, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				delay = time.Duration(wait) * time.Second
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode < 500 {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries+1, lastErr)
}
