package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// FetchCoverURL finds a cover image for an album, trying DodoApps, then
// iTunes, then a MusicBrainz search against the Cover Art Archive.
func (c *Client) FetchCoverURL(ctx context.Context, artist, title string) (string, error) {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)
	if artist == "" || title == "" {
		return "", ErrNotFound
	}

	if cover, err := c.fetchDodoArtwork(ctx, artist, title); err == nil && cover != "" {
		return cover, nil
	}
	if cover, err := c.fetchITunesArtwork(ctx, artist, title); err == nil && cover != "" {
		return cover, nil
	}
	return c.fetchCoverViaMusicBrainz(ctx, artist, title)
}

// fetchCoverViaMusicBrainz resolves the release MBID by search, then asks
// the Cover Art Archive.
func (c *Client) fetchCoverViaMusicBrainz(ctx context.Context, artist, title string) (string, error) {
	if err := c.throttleMusicBrainz(ctx); err != nil {
		return "", err
	}

	query := fmt.Sprintf("release:%q AND artist:%q", title, artist)
	var result struct {
		Releases []Release `json:"releases"`
	}
	searchURL := c.musicBrainzURL + "/release?query=" + url.QueryEscape(query) + "&limit=1&fmt=json"
	if err := c.getJSON(ctx, searchURL, &result); err != nil {
		return "", err
	}
	if len(result.Releases) == 0 || result.Releases[0].ID == "" {
		return "", ErrNotFound
	}
	return c.FetchCoverByMBID(ctx, result.Releases[0].ID)
}
