package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/middleware"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// Diary service errors.
var (
	ErrDiaryEntryNotFound = errors.New("diary entry not found")
	ErrNotDiaryOwner      = errors.New("not the diary entry owner")
	ErrInvalidMonth       = errors.New("month must be YYYY-MM")
	ErrInvalidExportKind  = errors.New("export format must be json or csv")
)

// DiaryService handles listening-diary entries.
type DiaryService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewDiaryService creates a new DiaryService.
func NewDiaryService(repo *repository.Repository, recorder metrics.Recorder) *DiaryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DiaryService{repo: repo, metrics: recorder}
}

// LogInput defines input for recording a listen.
type LogInput struct {
	AlbumID  string
	Rating   *float64
	Content  string
	Tags     []string
	Format   string
	LoggedAt *time.Time
}

// Log records a listen without a review.
func (s *DiaryService) Log(ctx context.Context, userID string, input LogInput) (*model.DiaryEntry, error) {
	if input.Rating != nil {
		if err := middleware.ValidateRating(*input.Rating); err != nil {
			return nil, err
		}
	}
	if err := middleware.ValidateReviewText(input.Content); err != nil {
		return nil, err
	}
	if err := middleware.ValidateTags(input.Tags); err != nil {
		return nil, err
	}

	format := input.Format
	if format == "" {
		format = "digital"
	}
	if !model.IsValidDiaryFormat(format) {
		return nil, ErrInvalidFormat
	}

	if _, err := s.repo.GetAlbumByID(ctx, input.AlbumID); err != nil {
		if errors.Is(err, repository.ErrAlbumNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}

	loggedAt := time.Now().UTC()
	if input.LoggedAt != nil {
		loggedAt = input.LoggedAt.UTC()
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	entry := &model.DiaryEntry{
		ID:       newULID(),
		UserID:   userID,
		AlbumID:  input.AlbumID,
		Rating:   input.Rating,
		Content:  input.Content,
		Tags:     tags,
		Format:   format,
		LoggedAt: loggedAt,
	}
	if err := s.repo.CreateDiaryEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create diary entry: %w", err)
	}

	s.metrics.IncDiaryEntryCreated()

	return s.repo.GetDiaryEntryByID(ctx, entry.ID)
}

// ListInput defines diary filters. Month is YYYY-MM; empty filters are
// ignored.
type ListInput struct {
	Month     string
	RatingMin *float64
	Format    string
	Offset    int
	Limit     int
}

// List returns a user's diary, newest listens first.
func (s *DiaryService) List(ctx context.Context, userID string, input ListInput) ([]*model.DiaryEntry, error) {
	filter, err := buildDiaryFilter(input)
	if err != nil {
		return nil, err
	}
	offset, limit := normalizePage(input.Offset, input.Limit)
	return s.repo.ListDiaryEntries(ctx, userID, filter, offset, limit)
}

// UpdateDiaryInput defines the mutable diary fields. Nil fields are left
// unchanged.
type UpdateDiaryInput struct {
	Rating   *float64
	Content  *string
	Tags     []string
	Format   *string
	LoggedAt *time.Time
}

// Update edits a diary entry. Owner only.
func (s *DiaryService) Update(ctx context.Context, id, userID string, input UpdateDiaryInput) (*model.DiaryEntry, error) {
	entry, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Rating != nil {
		if err := middleware.ValidateRating(*input.Rating); err != nil {
			return nil, err
		}
		entry.Rating = input.Rating
	}
	if input.Content != nil {
		if err := middleware.ValidateReviewText(*input.Content); err != nil {
			return nil, err
		}
		entry.Content = *input.Content
	}
	if input.Tags != nil {
		if err := middleware.ValidateTags(input.Tags); err != nil {
			return nil, err
		}
		entry.Tags = input.Tags
	}
	if input.Format != nil {
		if !model.IsValidDiaryFormat(*input.Format) {
			return nil, ErrInvalidFormat
		}
		entry.Format = *input.Format
	}
	if input.LoggedAt != nil {
		entry.LoggedAt = input.LoggedAt.UTC()
	}

	if err := s.repo.UpdateDiaryEntry(ctx, entry); err != nil {
		return nil, err
	}
	return s.repo.GetDiaryEntryByID(ctx, id)
}

// Delete removes a diary entry. Owner only.
func (s *DiaryService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.DeleteDiaryEntry(ctx, id)
}

// Export renders the full diary as JSON or CSV. Returns the body and its
// content type.
func (s *DiaryService) Export(ctx context.Context, userID, kind string) ([]byte, string, error) {
	const exportPageSize = 500

	var entries []*model.DiaryEntry
	for offset := 0; ; offset += exportPageSize {
		page, err := s.repo.ListDiaryEntries(ctx, userID, repository.DiaryFilter{}, offset, exportPageSize)
		if err != nil {
			return nil, "", err
		}
		entries = append(entries, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	switch kind {
	case "", "json":
		body, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return body, "application/json", nil
	case "csv":
		body, err := renderDiaryCSV(entries)
		if err != nil {
			return nil, "", err
		}
		return body, "text/csv", nil
	}
	return nil, "", ErrInvalidExportKind
}

func (s *DiaryService) getOwned(ctx context.Context, id, userID string) (*model.DiaryEntry, error) {
	entry, err := s.repo.GetDiaryEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDiaryEntryNotFound) {
			return nil, ErrDiaryEntryNotFound
		}
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrNotDiaryOwner
	}
	return entry, nil
}

// buildDiaryFilter parses list filters into repository form.
func buildDiaryFilter(input ListInput) (repository.DiaryFilter, error) {
	filter := repository.DiaryFilter{
		RatingMin: input.RatingMin,
		Format:    input.Format,
	}
	if input.Month != "" {
		month, err := time.Parse("2006-01", input.Month)
		if err != nil {
			return filter, ErrInvalidMonth
		}
		filter.Month = &month
	}
	return filter, nil
}

// renderDiaryCSV writes diary entries as CSV rows.
func renderDiaryCSV(entries []*model.DiaryEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"logged_at", "album", "artist", "year", "rating", "format", "content", "tags", "review_id"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		rating := ""
		if e.Rating != nil {
			rating = strconv.FormatFloat(*e.Rating, 'f', -1, 64)
		}
		year := ""
		if e.AlbumYear != nil {
			year = strconv.Itoa(*e.AlbumYear)
		}
		reviewID := ""
		if e.ReviewID != nil {
			reviewID = *e.ReviewID
		}
		row := []string{
			e.LoggedAt.UTC().Format(time.RFC3339),
			e.AlbumTitle,
			e.AlbumArtist,
			year,
			rating,
			e.Format,
			e.Content,
			strings.Join(e.Tags, ";"),
			reviewID,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
