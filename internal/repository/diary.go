package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/waxlog/waxlog/internal/model"
)

// Common errors for diary repository operations.
var (
	ErrDiaryEntryNotFound = errors.New("diary entry not found")
)

// DiaryFilter narrows a diary listing.
type DiaryFilter struct {
	Month     *time.Time // any instant inside the wanted month
	RatingMin *float64
	Format    string
}

const diaryColumns = `
	d.id, d.user_id, d.album_id, d.review_id, d.rating, d.content, d.tags, d.format, d.logged_at, d.created_at,
	a.title, a.artist, a.cover_url, a.release_year`

func scanDiaryEntry(row pgx.Row) (*model.DiaryEntry, error) {
	var e model.DiaryEntry
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.AlbumID,
		&e.ReviewID,
		&e.Rating,
		&e.Content,
		&e.Tags,
		&e.Format,
		&e.LoggedAt,
		&e.CreatedAt,
		&e.AlbumTitle,
		&e.AlbumArtist,
		&e.AlbumCover,
		&e.AlbumYear,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateDiaryEntry inserts a standalone listening log.
func (r *Repository) CreateDiaryEntry(ctx context.Context, entry *model.DiaryEntry) error {
	query := `
		INSERT INTO diary_entries (id, user_id, album_id, review_id, rating, content, tags, format, logged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.AlbumID,
		entry.ReviewID,
		entry.Rating,
		entry.Content,
		entry.Tags,
		entry.Format,
		entry.LoggedAt,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diary entry: %w", err)
	}

	return nil
}

// GetDiaryEntryByID retrieves a single diary entry with album info.
func (r *Repository) GetDiaryEntryByID(ctx context.Context, id string) (*model.DiaryEntry, error) {
	query := `
		SELECT ` + diaryColumns + `
		FROM diary_entries d
		JOIN albums a ON a.id = d.album_id
		WHERE d.id = $1
	`

	entry, err := scanDiaryEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDiaryEntryNotFound
		}
		return nil, fmt.Errorf("failed to get diary entry: %w", err)
	}

	return entry, nil
}

// ListDiaryEntries returns a user's listening log, newest listen first.
func (r *Repository) ListDiaryEntries(ctx context.Context, userID string, filter DiaryFilter, offset, limit int) ([]*model.DiaryEntry, error) {
	query := `
		SELECT ` + diaryColumns + `
		FROM diary_entries d
		JOIN albums a ON a.id = d.album_id
		WHERE d.user_id = $1
		  AND ($2::timestamptz IS NULL OR date_trunc('month', d.logged_at) = date_trunc('month', $2::timestamptz))
		  AND ($3::real IS NULL OR d.rating >= $3)
		  AND ($4 = '' OR d.format = $4)
		ORDER BY d.logged_at DESC, d.id DESC
		LIMIT $5 OFFSET $6
	`

	rows, err := r.pool.Query(ctx, query, userID, filter.Month, filter.RatingMin, filter.Format, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.DiaryEntry, 0)
	for rows.Next() {
		entry, err := scanDiaryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diary entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpdateDiaryEntry updates the mutable fields of a diary entry.
func (r *Repository) UpdateDiaryEntry(ctx context.Context, entry *model.DiaryEntry) error {
	query := `
		UPDATE diary_entries
		SET rating = $2, content = $3, tags = $4, format = $5, logged_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, entry.ID, entry.Rating, entry.Content, entry.Tags, entry.Format, entry.LoggedAt)
	if err != nil {
		return fmt.Errorf("failed to update diary entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDiaryEntryNotFound
	}

	return nil
}

// DeleteDiaryEntry removes a diary entry.
func (r *Repository) DeleteDiaryEntry(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM diary_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete diary entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDiaryEntryNotFound
	}

	return nil
}
