package metadata

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// maxDescriptionLength caps stored album descriptions.
const maxDescriptionLength = 600

// FetchDescription finds an album write-up on Wikipedia. Returns the intro
// paragraph and the article URL.
func (c *Client) FetchDescription(ctx context.Context, artist, title string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", ErrNotFound
	}

	pageID, err := c.searchWikipedia(ctx, title+" "+strings.TrimSpace(artist)+" album")
	if err != nil {
		return "", "", err
	}
	return c.fetchWikipediaExtract(ctx, pageID)
}

// searchWikipedia returns the page ID of the best search hit, preferring
// results whose snippet mentions "album".
func (c *Client) searchWikipedia(ctx context.Context, term string) (int, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", term)
	params.Set("srlimit", "5")
	params.Set("format", "json")

	var result struct {
		Query struct {
			Search []struct {
				PageID  int    `json:"pageid"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.getJSON(ctx, c.wikipediaURL+"?"+params.Encode(), &result); err != nil {
		return 0, err
	}
	if len(result.Query.Search) == 0 {
		return 0, ErrNotFound
	}

	for _, hit := range result.Query.Search {
		if strings.Contains(strings.ToLower(hit.Snippet), "album") {
			return hit.PageID, nil
		}
	}
	return result.Query.Search[0].PageID, nil
}

// fetchWikipediaExtract loads the plain-text intro of a page.
func (c *Client) fetchWikipediaExtract(ctx context.Context, pageID int) (string, string, error) {
	id := strconv.Itoa(pageID)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("exsectionformat", "plain")
	params.Set("pageids", id)
	params.Set("format", "json")

	var result struct {
		Query struct {
			Pages map[string]struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.getJSON(ctx, c.wikipediaURL+"?"+params.Encode(), &result); err != nil {
		return "", "", err
	}

	page, ok := result.Query.Pages[id]
	if !ok || strings.TrimSpace(page.Extract) == "" {
		return "", "", ErrNotFound
	}

	articleURL := ""
	if page.Title != "" {
		articleURL = "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(page.Title, " ", "_"))
	}
	return truncateDescription(strings.TrimSpace(page.Extract)), articleURL, nil
}

var (
	wikiLinkPattern     = regexp.MustCompile(`\[\[(?:[^|\]]*\|)?([^\]]+)\]\]`)
	wikiEmphasisPattern = regexp.MustCompile(`'{2,3}([^']*)'{2,3}`)
	wikiExtLinkLabeled  = regexp.MustCompile(`\[https?://[^\s\]]+\s+([^\]]+)\]`)
	wikiExtLinkBare     = regexp.MustCompile(`\[https?://[^\]]+\]`)
)

// stripWikiMarkup removes basic wiki markup from annotation text.
func stripWikiMarkup(text string) string {
	if text == "" {
		return ""
	}
	text = wikiLinkPattern.ReplaceAllString(text, "$1")
	text = wikiEmphasisPattern.ReplaceAllString(text, "$1")
	text = wikiExtLinkLabeled.ReplaceAllString(text, "$1")
	text = wikiExtLinkBare.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// truncateDescription keeps the first paragraph, capped at
// maxDescriptionLength characters.
func truncateDescription(text string) string {
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > maxDescriptionLength {
		text = strings.TrimSpace(text[:maxDescriptionLength])
	}
	return text
}

// DescribeAlbum fetches a description, trying the MusicBrainz release-group
// annotation first when an MBID is known, then Wikipedia. The second return
// value is the Wikipedia URL when that was the source.
func (c *Client) DescribeAlbum(ctx context.Context, artist, title, releaseGroupID string) (string, string, error) {
	if releaseGroupID != "" {
		if desc, err := c.GetAnnotation(ctx, releaseGroupID); err == nil && desc != "" {
			return desc, "", nil
		}
	}
	return c.FetchDescription(ctx, artist, title)
}
