package metadata

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Release is a MusicBrainz release as returned by search and lookup.
type Release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	Country      string         `json:"country"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	ReleaseGroup *ReleaseGroup  `json:"release-group"`
	LabelInfo    []LabelInfo    `json:"label-info"`
	Media        []Medium       `json:"media"`
}

// ArtistCredit names one credited artist on a release.
type ArtistCredit struct {
	Name string `json:"name"`
}

// ReleaseGroup links a release to its abstract album entry.
type ReleaseGroup struct {
	ID          string `json:"id"`
	PrimaryType string `json:"primary-type"`
}

// LabelInfo carries the record label of a release.
type LabelInfo struct {
	Label struct {
		Name string `json:"name"`
	} `json:"label"`
}

// Medium is one disc of a release.
type Medium struct {
	Tracks []MBTrack `json:"tracks"`
}

// MBTrack is one track on a medium.
type MBTrack struct {
	Title     string `json:"title"`
	Length    *int   `json:"length"`
	Recording struct {
		Length *int `json:"length"`
	} `json:"recording"`
}

// Artist returns the first credited artist, or "Unknown".
func (r *Release) Artist() string {
	if len(r.ArtistCredit) > 0 && r.ArtistCredit[0].Name != "" {
		return r.ArtistCredit[0].Name
	}
	return "Unknown"
}

// Label returns the first record label name, if any.
func (r *Release) Label() string {
	if len(r.LabelInfo) > 0 {
		return r.LabelInfo[0].Label.Name
	}
	return ""
}

// ReleaseGroupID returns the release-group MBID, if any.
func (r *Release) ReleaseGroupID() string {
	if r.ReleaseGroup != nil {
		return r.ReleaseGroup.ID
	}
	return ""
}

// SearchQuery filters a MusicBrainz release search. Zero-value fields are
// omitted from the query.
type SearchQuery struct {
	Genre   string // MusicBrainz tag, e.g. "jazz"
	Country string // ISO 3166-1 alpha-2, e.g. "US"
	Artist  string
}

// buildSearchQuery renders the Lucene query. Official albums only.
func buildSearchQuery(q SearchQuery) string {
	parts := []string{"status:official", "primarytype:album"}
	if q.Genre != "" {
		parts = append(parts, "tag:"+strings.TrimSpace(q.Genre))
	}
	if q.Country != "" {
		code := strings.ToUpper(strings.TrimSpace(q.Country))
		if len(code) >= 2 {
			parts = append(parts, "country:"+code[:2])
		}
	}
	if q.Artist != "" {
		name := strings.TrimSpace(q.Artist)
		if strings.Contains(name, " ") {
			parts = append(parts, fmt.Sprintf("artist:%q", name))
		} else {
			parts = append(parts, "artist:"+name)
		}
	}
	return strings.Join(parts, " ")
}

// SearchReleases pages through official album releases matching the query.
func (c *Client) SearchReleases(ctx context.Context, q SearchQuery, offset, limit int) ([]Release, error) {
	if err := c.throttleMusicBrainz(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", buildSearchQuery(q))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fmt", "json")

	var result struct {
		Releases []Release `json:"releases"`
	}
	if err := c.getJSON(ctx, c.musicBrainzURL+"/release?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("musicbrainz search: %w", err)
	}
	return result.Releases, nil
}

// GetReleaseDetail fetches a release with its recordings and artist credits.
func (c *Client) GetReleaseDetail(ctx context.Context, mbid string) (*Release, error) {
	if err := c.throttleMusicBrainz(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("inc", "recordings+artists+labels+release-groups")
	params.Set("fmt", "json")

	var release Release
	if err := c.getJSON(ctx, c.musicBrainzURL+"/release/"+url.PathEscape(mbid)+"?"+params.Encode(), &release); err != nil {
		return nil, fmt.Errorf("musicbrainz release %s: %w", mbid, err)
	}
	return &release, nil
}

// GetReleaseGroupGenres fetches up to five genre names for a release-group.
func (c *Client) GetReleaseGroupGenres(ctx context.Context, rgid string) ([]string, error) {
	if rgid == "" {
		return nil, nil
	}
	if err := c.throttleMusicBrainz(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("inc", "genres")
	params.Set("fmt", "json")

	var result struct {
		Genres []struct {
			Name string `json:"name"`
		} `json:"genres"`
	}
	if err := c.getJSON(ctx, c.musicBrainzURL+"/release-group/"+url.PathEscape(rgid)+"?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	genres := make([]string, 0, 5)
	for _, g := range result.Genres {
		if g.Name == "" {
			continue
		}
		genres = append(genres, g.Name)
		if len(genres) == 5 {
			break
		}
	}
	return genres, nil
}

// GetAnnotation fetches the MusicBrainz annotation text for an entity.
func (c *Client) GetAnnotation(ctx context.Context, mbid string) (string, error) {
	if err := c.throttleMusicBrainz(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("query", "entity:"+mbid)
	params.Set("limit", "1")
	params.Set("fmt", "json")

	var result struct {
		Annotations []struct {
			Text string `json:"text"`
		} `json:"annotations"`
	}
	if err := c.getJSON(ctx, c.musicBrainzURL+"/annotation?"+params.Encode(), &result); err != nil {
		return "", err
	}
	if len(result.Annotations) == 0 {
		return "", ErrNotFound
	}

	text := strings.TrimSpace(result.Annotations[0].Text)
	if text == "" {
		return "", ErrNotFound
	}
	return truncateDescription(stripWikiMarkup(text)), nil
}

var yearPattern = regexp.MustCompile(`^(\d{4})`)

// ParseYear extracts the year from a MusicBrainz date (YYYY, YYYY-MM-DD).
func ParseYear(date string) *int {
	m := yearPattern.FindStringSubmatch(date)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &year
}

// MsToDuration renders track length in milliseconds as "M:SS".
func MsToDuration(ms int) string {
	if ms <= 0 {
		return ""
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
