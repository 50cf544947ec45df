package seeder

import (
	"testing"

	"github.com/waxlog/waxlog/internal/metadata"
)

func intPtr(v int) *int { return &v }

func TestKeyFor(t *testing.T) {
	a := keyFor("  OK Computer ", "Radiohead", intPtr(1997))
	b := keyFor("OK Computer", "Radiohead", intPtr(1997))
	if a != b {
		t.Errorf("expected trimmed keys to match: %+v vs %+v", a, b)
	}

	c := keyFor("OK Computer", "Radiohead", nil)
	if a == c {
		t.Errorf("expected differing years to produce different keys")
	}
}

func TestReleaseToAlbum(t *testing.T) {
	l1 := 180000
	l2 := 240000
	release := &metadata.Release{
		ID:    "mbid-1",
		Title: "Spirit of Eden",
		Date:  "1988-09-12",
		ArtistCredit: []metadata.ArtistCredit{
			{Name: "Talk Talk"},
		},
		LabelInfo: []metadata.LabelInfo{},
		Media: []metadata.Medium{
			{Tracks: []metadata.MBTrack{
				{Title: "The Rainbow", Length: &l1},
				{Title: "Eden", Length: &l2},
			}},
		},
	}

	album, tracks := releaseToAlbum(release, "https://example.com/cover.jpg", []string{"post-rock"}, "A quiet landmark.", "")
	if album.Title != "Spirit of Eden" || album.Artist != "Talk Talk" {
		t.Errorf("unexpected album: %+v", album)
	}
	if album.ReleaseYear == nil || *album.ReleaseYear != 1988 {
		t.Errorf("year = %v", album.ReleaseYear)
	}
	if album.LengthSeconds != 420 {
		t.Errorf("length = %d, want 420", album.LengthSeconds)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].TrackNumber != 1 || tracks[0].Duration != "3:00" {
		t.Errorf("track 1 = %+v", tracks[0])
	}
	if tracks[1].AlbumID != album.ID {
		t.Errorf("track album_id mismatch")
	}
}

func TestReleaseToAlbumDefaultsUnknowns(t *testing.T) {
	release := &metadata.Release{ID: "mbid-2"}

	album, tracks := releaseToAlbum(release, "", nil, "", "")
	if album.Title != "Unknown" || album.Artist != "Unknown" {
		t.Errorf("unexpected defaults: %+v", album)
	}
	if album.ReleaseYear != nil {
		t.Errorf("expected nil year")
	}
	if album.Genres == nil {
		t.Errorf("genres should be non-nil for the text[] column")
	}
	if len(tracks) != 0 {
		t.Errorf("expected no tracks")
	}
}

func TestAdminUsername(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jane.doe@example.com", "jane_doe"},
		{"OPS@waxlog.io", "ops"},
		{"---@example.com", "admin"},
	}
	for _, tt := range tests {
		if got := adminUsername(tt.email); got != tt.want {
			t.Errorf("adminUsername(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
