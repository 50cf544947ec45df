package metadata

import (
	"context"
	"net/url"
)

// caaResponse is the Cover Art Archive index for a release.
type caaResponse struct {
	Images []struct {
		Front      bool              `json:"front"`
		Image      string            `json:"image"`
		Thumbnails map[string]string `json:"thumbnails"`
	} `json:"images"`
}

// FetchCoverByMBID fetches the front cover URL for a MusicBrainz release.
func (c *Client) FetchCoverByMBID(ctx context.Context, mbid string) (string, error) {
	if err := c.throttleMusicBrainz(ctx); err != nil {
		return "", err
	}

	var result caaResponse
	if err := c.getJSON(ctx, c.coverArtURL+"/release/"+url.PathEscape(mbid), &result); err != nil {
		return "", err
	}

	for _, img := range result.Images {
		if !img.Front {
			continue
		}
		if img.Image != "" {
			return img.Image, nil
		}
		if thumb := img.Thumbnails["500"]; thumb != "" {
			return thumb, nil
		}
	}
	if len(result.Images) > 0 {
		first := result.Images[0]
		if first.Image != "" {
			return first.Image, nil
		}
		if thumb := first.Thumbnails["500"]; thumb != "" {
			return thumb, nil
		}
	}
	return "", ErrNotFound
}
