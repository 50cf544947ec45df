package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchCoverURLFallsThroughSources(t *testing.T) {
	dodo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("dodo method = %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images": []}`))
	}))
	defer dodo.Close()

	itunes := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"collectionName": "Blue", "artistName": "Joni Mitchell",
			 "artworkUrl100": "https://example.com/blue/100x100bb.jpg"}
		]}`))
	}))
	defer itunes.Close()

	c := newTestClient(t)
	c.dodoURL = dodo.URL
	c.itunesURL = itunes.URL

	got, err := c.FetchCoverURL(context.Background(), "Joni Mitchell", "Blue")
	if err != nil {
		t.Fatalf("FetchCoverURL failed: %v", err)
	}
	if got != "https://example.com/blue/500x500bb.jpg" {
		t.Errorf("cover = %q", got)
	}
}

func TestFetchCoverURLPrefersDodo(t *testing.T) {
	dodo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images": [
			{"name": "Blue", "artist": "Joni Mitchell",
			 "thumb": "https://example.com/thumb.jpg", "large": "https://example.com/large.jpg"}
		]}`))
	}))
	defer dodo.Close()

	c := newTestClient(t)
	c.dodoURL = dodo.URL

	got, err := c.FetchCoverURL(context.Background(), "Joni Mitchell", "Blue")
	if err != nil {
		t.Fatalf("FetchCoverURL failed: %v", err)
	}
	if got != "https://example.com/large.jpg" {
		t.Errorf("cover = %q", got)
	}
}

func TestFetchCoverURLRejectsBlankInput(t *testing.T) {
	c := newTestClient(t)
	if _, err := c.FetchCoverURL(context.Background(), "  ", ""); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchCoverByMBID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/release/mbid-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images": [
			{"front": false, "image": "https://example.com/back.jpg"},
			{"front": true, "image": "https://example.com/front.jpg",
			 "thumbnails": {"500": "https://example.com/front-500.jpg"}}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t)
	c.coverArtURL = srv.URL

	got, err := c.FetchCoverByMBID(context.Background(), "mbid-1")
	if err != nil {
		t.Fatalf("FetchCoverByMBID failed: %v", err)
	}
	if got != "https://example.com/front.jpg" {
		t.Errorf("cover = %q", got)
	}
}
