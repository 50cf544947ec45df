// Package metadata fetches album enrichment data from public music APIs:
// MusicBrainz, Cover Art Archive, iTunes Search, DodoApps artwork and
// Wikipedia. None of them require API keys.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// ErrNotFound is returned when no source had a usable result.
var ErrNotFound = errors.New("metadata: not found")

const (
	defaultMusicBrainzURL = "https://musicbrainz.org/ws/2"
	defaultCoverArtURL    = "https://coverartarchive.org"
	defaultITunesURL      = "https://itunes.apple.com/search"
	defaultDodoURL        = "https://artwork.dodoapps.io/"
	defaultWikipediaURL   = "https://en.wikipedia.org/w/api.php"
)

const (
	// MusicBrainz asks for at most one request per second.
	mbRateLimitDelay = 1100 * time.Millisecond

	maxRetries     = 5
	retryBaseDelay = 2 * time.Second
)

// Client is a shared HTTP client for the metadata sources. All requests carry
// the configured User-Agent; MusicBrainz calls are throttled to respect its
// rate limit.
type Client struct {
	http       *http.Client
	userAgent  string
	retryDelay time.Duration

	// Base URLs, swapped for httptest servers in tests.
	musicBrainzURL string
	coverArtURL    string
	itunesURL      string
	dodoURL        string
	wikipediaURL   string

	mu     sync.Mutex
	lastMB time.Time
}

// New creates a metadata Client.
func New(userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		userAgent:      userAgent,
		retryDelay:     retryBaseDelay,
		musicBrainzURL: defaultMusicBrainzURL,
		coverArtURL:    defaultCoverArtURL,
		itunesURL:      defaultITunesURL,
		dodoURL:        defaultDodoURL,
		wikipediaURL:   defaultWikipediaURL,
	}
}

// throttleMusicBrainz sleeps so consecutive MusicBrainz requests stay at
// least mbRateLimitDelay apart.
func (c *Client) throttleMusicBrainz(ctx context.Context) error {
	c.mu.Lock()
	wait := mbRateLimitDelay - time.Since(c.lastMB)
	if wait < 0 {
		wait = 0
	}
	c.lastMB = time.Now().Add(wait)
	c.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// getJSON fetches a URL and decodes the JSON body into out, retrying
// transient failures with exponential backoff.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	return c.doJSON(ctx, http.MethodGet, rawURL, nil, out)
}

// postJSON sends a JSON body and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, rawURL, payload, out)
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, body []byte, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.doOnce(ctx, method, rawURL, body, out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, rawURL string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transientError{err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &transientError{fmt.Errorf("status %d from %s", resp.StatusCode, rawURL)}
	default:
		return fmt.Errorf("status %d from %s", resp.StatusCode, rawURL)
	}
}

// transientError marks failures worth retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
