package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/waxlog/waxlog/internal/model"
)

// Common errors for album repository operations.
var (
	ErrAlbumNotFound = errors.New("album not found")
)

const albumColumns = `id, title, artist, release_year, cover_url, genres, label, length_seconds, description, wikipedia_url, spotify_id, apple_id, created_at`

func scanAlbum(row pgx.Row) (*model.Album, error) {
	var a model.Album
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Artist,
		&a.ReleaseYear,
		&a.CoverURL,
		&a.Genres,
		&a.Label,
		&a.LengthSeconds,
		&a.Description,
		&a.WikipediaURL,
		&a.SpotifyID,
		&a.AppleID,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAlbums(rows pgx.Rows) ([]*model.Album, error) {
	albums := make([]*model.Album, 0)
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

// CreateAlbum inserts a new album.
func (r *Repository) CreateAlbum(ctx context.Context, album *model.Album) error {
	query := `
		INSERT INTO albums (id, title, artist, release_year, cover_url, genres, label, length_seconds, description, wikipedia_url, spotify_id, apple_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		album.ID,
		album.Title,
		album.Artist,
		album.ReleaseYear,
		album.CoverURL,
		album.Genres,
		album.Label,
		album.LengthSeconds,
		album.Description,
		album.WikipediaURL,
		album.SpotifyID,
		album.AppleID,
		album.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}

	return nil
}

// GetAlbumByID retrieves an album by its ID.
func (r *Repository) GetAlbumByID(ctx context.Context, id string) (*model.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE id = $1`

	album, err := scanAlbum(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("failed to get album by ID: %w", err)
	}

	return album, nil
}

// GetAlbumDetail retrieves an album with its tracklist and listening stats.
func (r *Repository) GetAlbumDetail(ctx context.Context, id string) (*model.AlbumDetail, error) {
	album, err := r.GetAlbumByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tracks, err := r.ListTracks(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &model.AlbumDetail{Album: *album, Tracks: tracks}

	statsQuery := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM diary_entries
		WHERE album_id = $1 AND rating IS NOT NULL
	`
	err = r.pool.QueryRow(ctx, statsQuery, id).Scan(&detail.AvgRating, &detail.TotalLogs)
	if err != nil {
		return nil, fmt.Errorf("failed to get album stats: %w", err)
	}

	return detail, nil
}

// UpdateAlbumDescription sets the description and optional Wikipedia source URL.
func (r *Repository) UpdateAlbumDescription(ctx context.Context, id, description, wikipediaURL string) error {
	query := `
		UPDATE albums
		SET description = $2,
		    wikipedia_url = CASE WHEN $3 <> '' THEN $3 ELSE wikipedia_url END
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, description, wikipediaURL)
	if err != nil {
		return fmt.Errorf("failed to update album description: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlbumNotFound
	}

	return nil
}

// UpdateAlbumCover sets a new cover art URL.
func (r *Repository) UpdateAlbumCover(ctx context.Context, id, coverURL string) error {
	query := `UPDATE albums SET cover_url = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, coverURL)
	if err != nil {
		return fmt.Errorf("failed to update album cover: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlbumNotFound
	}

	return nil
}

// ListAlbums returns albums newest-first with the total catalog size.
func (r *Repository) ListAlbums(ctx context.Context, offset, limit int) ([]*model.Album, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM albums`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count albums: %w", err)
	}

	query := `SELECT ` + albumColumns + ` FROM albums ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list albums: %w", err)
	}
	defer rows.Close()

	albums, err := collectAlbums(rows)
	return albums, total, err
}

// SearchAlbums ranks albums by full-text match, trigram similarity and
// substring match over "title artist", best first.
func (r *Repository) SearchAlbums(ctx context.Context, q string, limit int) ([]*model.Album, error) {
	query := `
		SELECT ` + albumColumns + `
		FROM albums
		WHERE to_tsvector('english', title || ' ' || artist) @@ plainto_tsquery('english', $1)
		   OR similarity(title || ' ' || artist, $1) > 0.1
		   OR (title || ' ' || artist) ILIKE '%' || $1 || '%'
		ORDER BY GREATEST(
			ts_rank(to_tsvector('english', title || ' ' || artist), plainto_tsquery('english', $1)),
			similarity(title || ' ' || artist, $1)
		) DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search albums: %w", err)
	}
	defer rows.Close()

	return collectAlbums(rows)
}

// ListTrendingAlbums returns the newest releases, unknown years last.
func (r *Repository) ListTrendingAlbums(ctx context.Context, limit int) ([]*model.Album, error) {
	query := `
		SELECT ` + albumColumns + `
		FROM albums
		ORDER BY release_year DESC NULLS LAST, created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trending albums: %w", err)
	}
	defer rows.Close()

	return collectAlbums(rows)
}

// ListAlbumsByGenre matches genre case-insensitively as a substring of any
// genre tag on the album.
func (r *Repository) ListAlbumsByGenre(ctx context.Context, genre string, offset, limit int) ([]*model.Album, error) {
	query := `
		SELECT ` + albumColumns + `
		FROM albums
		WHERE EXISTS (
			SELECT 1 FROM unnest(genres) g WHERE g ILIKE '%' || $1 || '%'
		)
		ORDER BY release_year DESC NULLS LAST, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, genre, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums by genre: %w", err)
	}
	defer rows.Close()

	return collectAlbums(rows)
}

// ListPopularAlbums returns albums with the most reviews, falling back to the
// newest catalog entries when nothing has been reviewed yet.
func (r *Repository) ListPopularAlbums(ctx context.Context, limit int) ([]*model.Album, error) {
	query := `
		SELECT ` + prefixColumns("a", albumColumns) + `
		FROM albums a
		LEFT JOIN reviews rv ON rv.album_id = a.id
		GROUP BY a.id
		ORDER BY COUNT(rv.id) DESC, a.created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular albums: %w", err)
	}
	defer rows.Close()

	return collectAlbums(rows)
}

// ListPopularWithFriends returns the albums most logged by users that userID
// follows. Empty when the user follows nobody or friends have no logs.
func (r *Repository) ListPopularWithFriends(ctx context.Context, userID string, limit int) ([]*model.Album, error) {
	query := `
		SELECT ` + prefixColumns("a", albumColumns) + `
		FROM albums a
		JOIN diary_entries d ON d.album_id = a.id
		JOIN follows f ON f.following_id = d.user_id
		WHERE f.follower_id = $1
		GROUP BY a.id
		ORDER BY COUNT(d.id) DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums popular with friends: %w", err)
	}
	defer rows.Close()

	return collectAlbums(rows)
}

// ListGenres returns every distinct genre tag, sorted.
func (r *Repository) ListGenres(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT unnest(genres) AS genre FROM albums ORDER BY genre`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	genres := make([]string, 0)
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// GetRatingsDistribution buckets diary ratings for an album into five star
// groups and returns each bucket's share as a percentage.
func (r *Repository) GetRatingsDistribution(ctx context.Context, albumID string) (*model.RatingsDistribution, error) {
	query := `
		SELECT rating FROM diary_entries
		WHERE album_id = $1 AND rating IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}
	defer rows.Close()

	counts := make([]int64, 5)
	var total int64
	for rows.Next() {
		var rating float64
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		bucket := int(rating + 0.5) // round to nearest star
		if bucket < 1 {
			bucket = 1
		}
		if bucket > 5 {
			bucket = 5
		}
		counts[bucket-1]++
		total++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dist := &model.RatingsDistribution{Total: total, Buckets: make([]float64, 5)}
	if total > 0 {
		for i, c := range counts {
			dist.Buckets[i] = float64(c) / float64(total) * 100
		}
	}
	return dist, nil
}

// CreateTracks inserts a tracklist for an album.
func (r *Repository) CreateTracks(ctx context.Context, tracks []*model.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range tracks {
		_, err := tx.Exec(ctx,
			`INSERT INTO tracks (id, album_id, track_number, title, duration) VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.AlbumID, t.TrackNumber, t.Title, t.Duration,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListTracks returns an album's tracks in track order.
func (r *Repository) ListTracks(ctx context.Context, albumID string) ([]*model.Track, error) {
	query := `
		SELECT id, album_id, track_number, title, duration
		FROM tracks
		WHERE album_id = $1
		ORDER BY track_number ASC
	`

	rows, err := r.pool.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		var t model.Track
		if err := rows.Scan(&t.ID, &t.AlbumID, &t.TrackNumber, &t.Title, &t.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, &t)
	}
	return tracks, rows.Err()
}
