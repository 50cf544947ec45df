package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/waxlog/waxlog/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
	ErrSelfFollow     = errors.New("cannot follow yourself")
)

const userColumns = `id, email, username, password_hash, google_id, avatar_url, bio, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var passwordHash *string
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&passwordHash,
		&u.GoogleID,
		&u.AvatarURL,
		&u.Bio,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	return &u, nil
}

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, google_id, avatar_url, bio, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.GoogleID,
		user.AvatarURL,
		user.Bio,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "username") {
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address (case-insensitive).
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by their username (case-insensitive).
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`

	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// GetUserByGoogleID retrieves a user by their Google account ID.
func (r *Repository) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, googleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by google ID: %w", err)
	}

	return user, nil
}

// UpdateUser updates mutable profile fields.
func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET avatar_url = $2, bio = $3, google_id = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, user.ID, user.AvatarURL, user.Bio, user.GoogleID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetProfile retrieves a user with their public activity counts.
// viewerID may be empty for anonymous requests.
func (r *Repository) GetProfile(ctx context.Context, userID, viewerID string) (*model.Profile, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM reviews WHERE user_id = $1),
			(SELECT COUNT(*) FROM lists WHERE owner_id = $1),
			(SELECT COUNT(*) FROM follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1),
			EXISTS(SELECT 1 FROM follows WHERE follower_id = $2 AND following_id = $1)
	`

	profile := &model.Profile{User: *user}
	err = r.pool.QueryRow(ctx, query, userID, viewerID).Scan(
		&profile.ReviewCount,
		&profile.ListCount,
		&profile.FollowerCount,
		&profile.FollowingCount,
		&profile.FollowedByMe,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile counts: %w", err)
	}

	return profile, nil
}

// ListRecommendedUsers returns the most followed users, excluding excludeID.
func (r *Repository) ListRecommendedUsers(ctx context.Context, excludeID string, limit int) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.id <> $1
		ORDER BY (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) DESC, u.created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommended users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// SearchUsers finds users by fuzzy username match.
func (r *Repository) SearchUsers(ctx context.Context, q string, limit int) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username ILIKE '%' || $1 || '%' OR similarity(username, $1) > 0.2
		ORDER BY similarity(username, $1) DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*model.User, error) {
	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CreateFollow adds a follow edge. Idempotent.
func (r *Repository) CreateFollow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return ErrSelfFollow
	}

	// Target must exist
	if _, err := r.GetUserByID(ctx, followingID); err != nil {
		return err
	}

	query := `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, followerID, followingID, time.Now()); err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}

	return nil
}

// DeleteFollow removes a follow edge. Idempotent.
func (r *Repository) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`

	if _, err := r.pool.Exec(ctx, query, followerID, followingID); err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}

	return nil
}

// ListFollowing returns the users that userID follows, newest follow first.
func (r *Repository) ListFollowing(ctx context.Context, userID string) ([]*model.User, error) {
	query := `
		SELECT ` + prefixColumns("u", userColumns) + `
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListFollowingIDs returns the IDs of users that userID follows.
func (r *Repository) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT following_id FROM follows WHERE follower_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan following id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceFavoriteAlbums swaps the user's pinned albums for the given ordered IDs.
func (r *Repository) ReplaceFavoriteAlbums(ctx context.Context, userID string, albumIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM favorite_albums WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}

	for i, albumID := range albumIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO favorite_albums (user_id, album_id, position) VALUES ($1, $2, $3)`,
			userID, albumID, i,
		)
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return fmt.Errorf("failed to insert favorite: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListFavoriteAlbums returns the user's pinned albums in position order.
func (r *Repository) ListFavoriteAlbums(ctx context.Context, userID string) ([]*model.Album, error) {
	query := `
		SELECT ` + prefixColumns("a", albumColumns) + `
		FROM favorite_albums fa
		JOIN albums a ON a.id = fa.album_id
		WHERE fa.user_id = $1
		ORDER BY fa.position ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite albums: %w", err)
	}
	defer rows.Close()

	return collectAlbums(rows)
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
