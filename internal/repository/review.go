package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/waxlog/waxlog/internal/model"
)

// Common errors for review repository operations.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// reviewColumns selects a review hydrated with author, album and like state.
// $1 is the viewer ID (may be empty).
const reviewColumns = `
	r.id, r.user_id, r.album_id, r.rating, r.body, r.entry_type, r.tags, r.share_to_feed, r.created_at, r.updated_at,
	u.username, u.avatar_url,
	a.title, a.artist, a.cover_url,
	(SELECT COUNT(*) FROM review_likes rl WHERE rl.review_id = r.id),
	(SELECT COUNT(*) FROM comments c WHERE c.review_id = r.id),
	EXISTS(SELECT 1 FROM review_likes rl WHERE rl.review_id = r.id AND rl.user_id = $1)`

const reviewJoins = `
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	JOIN albums a ON a.id = r.album_id`

func scanReview(row pgx.Row) (*model.Review, error) {
	var rv model.Review
	err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.AlbumID,
		&rv.Rating,
		&rv.Body,
		&rv.EntryType,
		&rv.Tags,
		&rv.ShareToFeed,
		&rv.CreatedAt,
		&rv.UpdatedAt,
		&rv.Username,
		&rv.UserAvatar,
		&rv.AlbumTitle,
		&rv.AlbumArtist,
		&rv.AlbumCover,
		&rv.LikeCount,
		&rv.CommentCount,
		&rv.LikedByMe,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func collectReviews(rows pgx.Rows) ([]*model.Review, error) {
	reviews := make([]*model.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// CreateReview inserts a review and its matching diary entry atomically.
// Every review is also a listen, so the diary gets a row pointing back at it.
func (r *Repository) CreateReview(ctx context.Context, review *model.Review, entry *model.DiaryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO reviews (id, user_id, album_id, rating, body, entry_type, tags, share_to_feed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		review.ID,
		review.UserID,
		review.AlbumID,
		review.Rating,
		review.Body,
		review.EntryType,
		review.Tags,
		review.ShareToFeed,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO diary_entries (id, user_id, album_id, review_id, rating, content, tags, format, logged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID,
		entry.UserID,
		entry.AlbumID,
		review.ID,
		entry.Rating,
		entry.Content,
		entry.Tags,
		entry.Format,
		entry.LoggedAt,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diary entry for review: %w", err)
	}

	return tx.Commit(ctx)
}

// GetReviewByID retrieves a hydrated review.
func (r *Repository) GetReviewByID(ctx context.Context, id, viewerID string) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + reviewJoins + ` WHERE r.id = $2`

	review, err := scanReview(r.pool.QueryRow(ctx, query, viewerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review by ID: %w", err)
	}

	return review, nil
}

// ListFeedReviews returns shared reviews from users that viewerID follows,
// newest first. When reviewsOnly is set, bare listening logs are excluded.
func (r *Repository) ListFeedReviews(ctx context.Context, viewerID string, reviewsOnly bool, offset, limit int) ([]*model.Review, error) {
	query := `SELECT ` + reviewColumns + reviewJoins + `
		JOIN follows f ON f.following_id = r.user_id
		WHERE f.follower_id = $1
		  AND r.share_to_feed
		  AND ($2 = FALSE OR r.entry_type = 'review')
		ORDER BY r.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, viewerID, reviewsOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// ListAlbumReviews returns reviews of an album, newest first.
func (r *Repository) ListAlbumReviews(ctx context.Context, albumID, viewerID string, offset, limit int) ([]*model.Review, error) {
	query := `SELECT ` + reviewColumns + reviewJoins + `
		WHERE r.album_id = $2
		ORDER BY r.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, viewerID, albumID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list album reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// ListUserReviews returns a user's reviews, newest first.
func (r *Repository) ListUserReviews(ctx context.Context, userID, viewerID string, offset, limit int) ([]*model.Review, error) {
	query := `SELECT ` + reviewColumns + reviewJoins + `
		WHERE r.user_id = $2
		ORDER BY r.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, viewerID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// UpdateReview updates the mutable fields of a review.
func (r *Repository) UpdateReview(ctx context.Context, review *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, body = $3, tags = $4, share_to_feed = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		review.ID,
		review.Rating,
		review.Body,
		review.Tags,
		review.ShareToFeed,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// DeleteReview removes a review. Attached diary entries keep their listen but
// lose the back-reference via ON DELETE SET NULL.
func (r *Repository) DeleteReview(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// LikeReview adds a like. Idempotent.
func (r *Repository) LikeReview(ctx context.Context, reviewID, userID string) error {
	query := `
		INSERT INTO review_likes (review_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (review_id, user_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, reviewID, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to like review: %w", err)
	}

	return nil
}

// UnlikeReview removes a like. Idempotent.
func (r *Repository) UnlikeReview(ctx context.Context, reviewID, userID string) error {
	query := `DELETE FROM review_likes WHERE review_id = $1 AND user_id = $2`

	if _, err := r.pool.Exec(ctx, query, reviewID, userID); err != nil {
		return fmt.Errorf("failed to unlike review: %w", err)
	}

	return nil
}

// CreateComment inserts a comment on a review.
func (r *Repository) CreateComment(ctx context.Context, comment *model.Comment) error {
	query := `
		INSERT INTO comments (id, review_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.ReviewID,
		comment.UserID,
		comment.Body,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListComments returns a review's comments, oldest first.
func (r *Repository) ListComments(ctx context.Context, reviewID string, offset, limit int) ([]*model.Comment, error) {
	query := `
		SELECT c.id, c.review_id, c.user_id, c.body, c.created_at, u.username, u.avatar_url
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.review_id = $1
		ORDER BY c.created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, reviewID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		err := rows.Scan(&c.ID, &c.ReviewID, &c.UserID, &c.Body, &c.CreatedAt, &c.Username, &c.UserAvatar)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
