package metadata

import (
	"context"
	"strings"
)

// dodoRequest is the DodoApps artwork search body.
type dodoRequest struct {
	Search     string `json:"search"`
	Storefront string `json:"storefront"`
	Type       string `json:"type"`
}

// dodoResponse lists artwork candidates for a search.
type dodoResponse struct {
	Images []struct {
		Name   string `json:"name"`
		Artist string `json:"artist"`
		Thumb  string `json:"thumb"`
		Large  string `json:"large"`
	} `json:"images"`
}

// fetchDodoArtwork searches the DodoApps artwork API for an album cover.
func (c *Client) fetchDodoArtwork(ctx context.Context, artist, title string) (string, error) {
	search := strings.TrimSpace(title + " " + artist)
	if search == "" {
		return "", ErrNotFound
	}

	var result dodoResponse
	err := c.postJSON(ctx, c.dodoURL, dodoRequest{
		Search:     search,
		Storefront: "us",
		Type:       "album",
	}, &result)
	if err != nil {
		return "", err
	}
	if len(result.Images) == 0 {
		return "", ErrNotFound
	}

	titleLower := strings.ToLower(title)
	artistLower := strings.ToLower(artist)
	for _, img := range result.Images {
		if !fuzzyContains(titleLower, strings.ToLower(img.Name)) {
			continue
		}
		if fuzzyContains(artistLower, strings.ToLower(img.Artist)) {
			if img.Large != "" {
				return img.Large, nil
			}
			if img.Thumb != "" {
				return img.Thumb, nil
			}
		}
	}

	first := result.Images[0]
	if first.Large != "" {
		return first.Large, nil
	}
	if first.Thumb != "" {
		return first.Thumb, nil
	}
	return "", ErrNotFound
}
