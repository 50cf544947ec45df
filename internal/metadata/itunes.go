package metadata

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// fetchITunesArtwork searches the iTunes catalog for an album cover. Results
// are matched fuzzily on album and artist name; the first result is the
// fallback.
func (c *Client) fetchITunesArtwork(ctx context.Context, artist, title string) (string, error) {
	params := url.Values{}
	params.Set("term", title+" "+artist)
	params.Set("entity", "album")
	params.Set("media", "music")
	params.Set("limit", "5")

	var result struct {
		Results []struct {
			CollectionName string `json:"collectionName"`
			ArtistName     string `json:"artistName"`
			ArtworkURL100  string `json:"artworkUrl100"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.itunesURL+"?"+params.Encode(), &result); err != nil {
		return "", err
	}
	if len(result.Results) == 0 {
		return "", ErrNotFound
	}

	titleLower := strings.ToLower(title)
	artistLower := strings.ToLower(artist)
	for _, r := range result.Results {
		col := strings.ToLower(r.CollectionName)
		art := strings.ToLower(r.ArtistName)
		if !fuzzyContains(titleLower, col) {
			continue
		}
		if fuzzyContains(artistLower, art) && r.ArtworkURL100 != "" {
			return upscaleArtworkURL(r.ArtworkURL100, 500), nil
		}
	}

	if first := result.Results[0].ArtworkURL100; first != "" {
		return upscaleArtworkURL(first, 500), nil
	}
	return "", ErrNotFound
}

// fuzzyContains reports whether either string contains the other.
func fuzzyContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// upscaleArtworkURL upgrades an iTunes thumbnail URL to a larger size.
// iTunes URLs look like .../source/100x100bb.jpg or .../100x100-75.png.
func upscaleArtworkURL(artworkURL string, size int) string {
	if artworkURL == "" {
		return ""
	}
	dim := strconv.Itoa(size) + "x" + strconv.Itoa(size)
	for _, old := range []string{"100x100bb", "100x100-75", "100x100", "60x60bb", "60x60"} {
		if !strings.Contains(artworkURL, old) {
			continue
		}
		suffix := ""
		if strings.Contains(old, "bb") || strings.Contains(old, "75") {
			suffix = "bb"
		}
		return strings.Replace(artworkURL, old, dim+suffix, 1)
	}
	return artworkURL
}
