// Package seeder ingests catalog data from MusicBrainz and keeps it healthy:
// batch seeding, scheduled runs, demo data, admin bootstrap, backfills and
// deduplication.
package seeder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/waxlog/waxlog/internal/model"
)

// albumKey identifies an album for duplicate detection. Year is 0 when
// unknown.
type albumKey struct {
	Title  string
	Artist string
	Year   int
}

func keyFor(title, artist string, year *int) albumKey {
	k := albumKey{
		Title:  strings.TrimSpace(title),
		Artist: strings.TrimSpace(artist),
	}
	if year != nil {
		k.Year = *year
	}
	return k
}

// Repository handles catalog-ingest database operations. It runs on its own
// database/sql connection, separate from the API's pool.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new seeder repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ExistingAlbumKeys loads the (title, artist, year) keys already in the
// catalog.
func (r *Repository) ExistingAlbumKeys(ctx context.Context) (map[albumKey]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title, artist, release_year FROM albums`)
	if err != nil {
		return nil, fmt.Errorf("query album keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[albumKey]struct{})
	for rows.Next() {
		var title, artist string
		var year sql.NullInt32
		if err := rows.Scan(&title, &artist, &year); err != nil {
			return nil, fmt.Errorf("scan album key: %w", err)
		}
		var yearPtr *int
		if year.Valid {
			y := int(year.Int32)
			yearPtr = &y
		}
		keys[keyFor(title, artist, yearPtr)] = struct{}{}
	}
	return keys, rows.Err()
}

// InsertAlbumWithTracks inserts an album and its tracklist in one
// transaction.
func (r *Repository) InsertAlbumWithTracks(ctx context.Context, album *model.Album, tracks []*model.Track) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO albums (
			id, title, artist, release_year, cover_url, genres,
			label, length_seconds, description, wikipedia_url, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		album.ID,
		album.Title,
		album.Artist,
		album.ReleaseYear,
		album.CoverURL,
		pq.Array(album.Genres),
		album.Label,
		album.LengthSeconds,
		album.Description,
		album.WikipediaURL,
		album.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert album: %w", err)
	}

	for _, track := range tracks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tracks (id, album_id, track_number, title, duration)
			VALUES ($1, $2, $3, $4, $5)
		`, track.ID, track.AlbumID, track.TrackNumber, track.Title, track.Duration)
		if err != nil {
			return fmt.Errorf("insert track %d: %w", track.TrackNumber, err)
		}
	}

	return tx.Commit()
}

// ClearCatalog deletes every album and track. Used by seed -clear.
func (r *Repository) ClearCatalog(ctx context.Context) (albums, tracks int64, err error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tracks`)
	if err != nil {
		return 0, 0, fmt.Errorf("clear tracks: %w", err)
	}
	tracks, _ = res.RowsAffected()

	res, err = r.db.ExecContext(ctx, `DELETE FROM albums`)
	if err != nil {
		return 0, tracks, fmt.Errorf("clear albums: %w", err)
	}
	albums, _ = res.RowsAffected()
	return albums, tracks, nil
}

// HasUsers reports whether any account exists.
func (r *Repository) HasUsers(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check users: %w", err)
	}
	return exists, nil
}

// InsertUser inserts a minimal account row.
func (r *Repository) InsertUser(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, avatar_url, bio, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Email, user.Username, user.PasswordHash, user.AvatarURL, user.Bio, user.IsAdmin)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// PromoteAdmin sets is_admin on an existing account matched by email or
// username. Returns false when no account matched.
func (r *Repository) PromoteAdmin(ctx context.Context, email, username string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_admin = TRUE, updated_at = NOW()
		WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($2)
	`, email, username)
	if err != nil {
		return false, fmt.Errorf("promote admin: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// albumStub carries the fields the backfills need.
type albumStub struct {
	ID     string
	Title  string
	Artist string
	Year   *int
}

// AlbumsMissingCovers lists albums with no cover URL.
func (r *Repository) AlbumsMissingCovers(ctx context.Context) ([]albumStub, error) {
	return r.albumStubs(ctx, `
		SELECT id, title, artist, release_year FROM albums
		WHERE cover_url = '' ORDER BY created_at ASC
	`)
}

// AlbumsMissingDescriptions lists albums with no description.
func (r *Repository) AlbumsMissingDescriptions(ctx context.Context) ([]albumStub, error) {
	return r.albumStubs(ctx, `
		SELECT id, title, artist, release_year FROM albums
		WHERE description = '' ORDER BY created_at ASC
	`)
}

func (r *Repository) albumStubs(ctx context.Context, query string) ([]albumStub, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	var stubs []albumStub
	for rows.Next() {
		var s albumStub
		var year sql.NullInt32
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &year); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		if year.Valid {
			y := int(year.Int32)
			s.Year = &y
		}
		stubs = append(stubs, s)
	}
	return stubs, rows.Err()
}

// UpdateAlbumCover sets the cover URL.
func (r *Repository) UpdateAlbumCover(ctx context.Context, id, coverURL string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE albums SET cover_url = $2 WHERE id = $1`, id, coverURL)
	if err != nil {
		return fmt.Errorf("update cover: %w", err)
	}
	return nil
}

// UpdateAlbumDescription sets the description and optional source URL.
func (r *Repository) UpdateAlbumDescription(ctx context.Context, id, description, wikipediaURL string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE albums SET description = $2,
			wikipedia_url = CASE WHEN $3 <> '' THEN $3 ELSE wikipedia_url END
		WHERE id = $1
	`, id, description, wikipediaURL)
	if err != nil {
		return fmt.Errorf("update description: %w", err)
	}
	return nil
}

// reviewStub carries the fields the diary backfill needs.
type reviewStub struct {
	ID        string
	UserID    string
	AlbumID   string
	Rating    float64
	Body      string
	Tags      []string
	CreatedAt time.Time
}

// ReviewsWithoutDiary lists reviews whose (user, album) pair has no diary
// entry.
func (r *Repository) ReviewsWithoutDiary(ctx context.Context) ([]reviewStub, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rv.id, rv.user_id, rv.album_id, rv.rating, rv.body, rv.tags, rv.created_at
		FROM reviews rv
		WHERE NOT EXISTS (
			SELECT 1 FROM diary_entries d
			WHERE d.user_id = rv.user_id AND d.album_id = rv.album_id
		)
		ORDER BY rv.created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query reviews without diary: %w", err)
	}
	defer rows.Close()

	var stubs []reviewStub
	for rows.Next() {
		var s reviewStub
		if err := rows.Scan(&s.ID, &s.UserID, &s.AlbumID, &s.Rating, &s.Body, pq.Array(&s.Tags), &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		stubs = append(stubs, s)
	}
	return stubs, rows.Err()
}

// InsertDiaryEntry inserts one diary entry.
func (r *Repository) InsertDiaryEntry(ctx context.Context, entry *model.DiaryEntry) error {
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO diary_entries (id, user_id, album_id, review_id, rating, content, tags, format, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.UserID, entry.AlbumID, entry.ReviewID, entry.Rating, entry.Content, pq.Array(tags), entry.Format, entry.LoggedAt)
	if err != nil {
		return fmt.Errorf("insert diary entry: %w", err)
	}
	return nil
}

// dupeCandidate carries the fields duplicate grouping needs.
type dupeCandidate struct {
	ID        string
	Title     string
	Artist    string
	Year      *int
	CoverURL  string
	CreatedAt time.Time
}

// ListAlbumsForDedupe loads every album's grouping fields.
func (r *Repository) ListAlbumsForDedupe(ctx context.Context) ([]dupeCandidate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, artist, release_year, cover_url, created_at FROM albums
	`)
	if err != nil {
		return nil, fmt.Errorf("query albums for dedupe: %w", err)
	}
	defer rows.Close()

	var candidates []dupeCandidate
	for rows.Next() {
		var c dupeCandidate
		var year sql.NullInt32
		if err := rows.Scan(&c.ID, &c.Title, &c.Artist, &year, &c.CoverURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan album for dedupe: %w", err)
		}
		if year.Valid {
			y := int(year.Int32)
			c.Year = &y
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// MergeAlbum moves every reference from the duplicate album onto the kept
// one, then deletes the duplicate. List and favorite rows that would collide
// with an existing reference to the kept album are dropped.
func (r *Repository) MergeAlbum(ctx context.Context, keptID, dupID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	steps := []struct {
		name  string
		query string
	}{
		{"migrate reviews", `UPDATE reviews SET album_id = $1 WHERE album_id = $2`},
		{"migrate diary", `UPDATE diary_entries SET album_id = $1 WHERE album_id = $2`},
		{"drop colliding list rows", `
			DELETE FROM list_albums la
			WHERE la.album_id = $2 AND EXISTS (
				SELECT 1 FROM list_albums WHERE list_id = la.list_id AND album_id = $1
			)`},
		{"migrate list rows", `UPDATE list_albums SET album_id = $1 WHERE album_id = $2`},
		{"drop colliding favorites", `
			DELETE FROM favorite_albums fa
			WHERE fa.album_id = $2 AND EXISTS (
				SELECT 1 FROM favorite_albums WHERE user_id = fa.user_id AND album_id = $1
			)`},
		{"migrate favorites", `UPDATE favorite_albums SET album_id = $1 WHERE album_id = $2`},
		{"delete duplicate tracks", `DELETE FROM tracks WHERE album_id = $2`},
		{"delete duplicate album", `DELETE FROM albums WHERE id = $2`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, keptID, dupID); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return tx.Commit()
}
