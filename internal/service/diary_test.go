package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/waxlog/waxlog/internal/model"
)

func TestBuildDiaryFilter(t *testing.T) {
	f, err := buildDiaryFilter(ListInput{Month: "2024-03", Format: "vinyl"})
	if err != nil {
		t.Fatalf("buildDiaryFilter failed: %v", err)
	}
	if f.Month == nil || f.Month.Year() != 2024 || f.Month.Month() != time.March {
		t.Errorf("unexpected month: %v", f.Month)
	}
	if f.Format != "vinyl" {
		t.Errorf("format = %q", f.Format)
	}

	if _, err := buildDiaryFilter(ListInput{Month: "March 2024"}); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}

	f, err = buildDiaryFilter(ListInput{})
	if err != nil {
		t.Fatalf("buildDiaryFilter failed: %v", err)
	}
	if f.Month != nil || f.RatingMin != nil || f.Format != "" {
		t.Errorf("expected empty filter, got %+v", f)
	}
}

func TestRenderDiaryCSV(t *testing.T) {
	rating := 4.5
	year := 1997
	reviewID := "01HREVIEW"
	entries := []*model.DiaryEntry{
		{
			LoggedAt:    time.Date(2024, 3, 10, 21, 0, 0, 0, time.UTC),
			AlbumTitle:  "OK Computer",
			AlbumArtist: "Radiohead",
			AlbumYear:   &year,
			Rating:      &rating,
			Content:     "Still paranoid, still perfect.",
			Tags:        []string{"90s", "art-rock"},
			Format:      "vinyl",
			ReviewID:    &reviewID,
		},
		{
			LoggedAt:    time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC),
			AlbumTitle:  "Blue",
			AlbumArtist: "Joni Mitchell",
			Format:      "digital",
		},
	}

	body, err := renderDiaryCSV(entries)
	if err != nil {
		t.Fatalf("renderDiaryCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "logged_at,album,artist") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[0], "content") || !strings.Contains(lines[0], "tags") {
		t.Errorf("header missing content/tags columns: %q", lines[0])
	}
	if !strings.Contains(lines[1], "OK Computer") || !strings.Contains(lines[1], "4.5") {
		t.Errorf("unexpected row: %q", lines[1])
	}
	if !strings.Contains(lines[1], "Still paranoid") || !strings.Contains(lines[1], "90s;art-rock") {
		t.Errorf("row missing content/tags: %q", lines[1])
	}
	// Optional fields render empty, not "0" or "<nil>".
	if strings.Contains(lines[2], "<nil>") || strings.Contains(lines[2], ",0,") {
		t.Errorf("unexpected optional rendering: %q", lines[2])
	}
}
