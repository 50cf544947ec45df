package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/waxlog/waxlog/internal/model"
)

// Common errors for list repository operations.
var (
	ErrListNotFound         = errors.New("list not found")
	ErrAlbumAlreadyInList   = errors.New("album already in list")
	ErrCollaboratorExists   = errors.New("collaborator already added")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
)

// listColumns selects a list hydrated with owner name, counts and the first
// four covers for preview tiles.
const listColumns = `
	l.id, l.owner_id, l.title, l.description, l.created_at, l.updated_at,
	u.username,
	(SELECT COUNT(*) FROM list_albums la WHERE la.list_id = l.id),
	(SELECT COUNT(*) FROM list_likes ll WHERE ll.list_id = l.id),
	ARRAY(
		SELECT a.cover_url FROM list_albums la
		JOIN albums a ON a.id = la.album_id
		WHERE la.list_id = l.id
		ORDER BY la.position ASC
		LIMIT 4
	)`

const listJoins = `
	FROM lists l
	JOIN users u ON u.id = l.owner_id`

func scanList(row pgx.Row) (*model.List, error) {
	var l model.List
	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.Title,
		&l.Description,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.OwnerUsername,
		&l.AlbumCount,
		&l.LikeCount,
		&l.PreviewCovers,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLists(rows pgx.Rows) ([]*model.List, error) {
	lists := make([]*model.List, 0)
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// CreateList inserts a new list.
func (r *Repository) CreateList(ctx context.Context, list *model.List) error {
	query := `
		INSERT INTO lists (id, owner_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		list.ID,
		list.OwnerID,
		list.Title,
		list.Description,
		list.CreatedAt,
		list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	return nil
}

// GetListByID retrieves a hydrated list without its contents.
func (r *Repository) GetListByID(ctx context.Context, id string) (*model.List, error) {
	query := `SELECT ` + listColumns + listJoins + ` WHERE l.id = $1`

	list, err := scanList(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list by ID: %w", err)
	}

	return list, nil
}

// GetListDetail retrieves a list with albums, collaborators and viewer state.
func (r *Repository) GetListDetail(ctx context.Context, id, viewerID string) (*model.ListDetail, error) {
	list, err := r.GetListByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &model.ListDetail{List: *list}

	albumsQuery := `
		SELECT la.list_id, la.album_id, la.position, la.added_at, ` + prefixColumns("a", albumColumns) + `
		FROM list_albums la
		JOIN albums a ON a.id = la.album_id
		WHERE la.list_id = $1
		ORDER BY la.position ASC
	`
	rows, err := r.pool.Query(ctx, albumsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list list albums: %w", err)
	}
	defer rows.Close()

	detail.Albums = make([]*model.ListAlbum, 0)
	for rows.Next() {
		var la model.ListAlbum
		var a model.Album
		err := rows.Scan(
			&la.ListID, &la.AlbumID, &la.Position, &la.AddedAt,
			&a.ID, &a.Title, &a.Artist, &a.ReleaseYear, &a.CoverURL, &a.Genres,
			&a.Label, &a.LengthSeconds, &a.Description, &a.WikipediaURL,
			&a.SpotifyID, &a.AppleID, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list album: %w", err)
		}
		la.Album = &a
		detail.Albums = append(detail.Albums, &la)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	detail.Collaborators, err = r.ListCollaborators(ctx, id)
	if err != nil {
		return nil, err
	}

	likedQuery := `SELECT EXISTS(SELECT 1 FROM list_likes WHERE list_id = $1 AND user_id = $2)`
	if err := r.pool.QueryRow(ctx, likedQuery, id, viewerID).Scan(&detail.LikedByMe); err != nil {
		return nil, fmt.Errorf("failed to get list like state: %w", err)
	}

	return detail, nil
}

// ListUserLists returns lists the user owns or collaborates on, most recently
// updated first.
func (r *Repository) ListUserLists(ctx context.Context, userID string, includeCollaborations bool) ([]*model.List, error) {
	query := `SELECT ` + listColumns + listJoins + `
		WHERE l.owner_id = $1
		   OR ($2 AND EXISTS(SELECT 1 FROM list_collaborators lc WHERE lc.list_id = l.id AND lc.user_id = $1))
		ORDER BY l.updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, includeCollaborations)
	if err != nil {
		return nil, fmt.Errorf("failed to list user lists: %w", err)
	}
	defer rows.Close()

	return collectLists(rows)
}

// ListLikedLists returns lists the user has liked, newest like first.
func (r *Repository) ListLikedLists(ctx context.Context, userID string) ([]*model.List, error) {
	query := `SELECT ` + listColumns + listJoins + `
		JOIN list_likes ll ON ll.list_id = l.id
		WHERE ll.user_id = $1
		ORDER BY ll.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked lists: %w", err)
	}
	defer rows.Close()

	return collectLists(rows)
}

// UpdateList updates title and description.
func (r *Repository) UpdateList(ctx context.Context, list *model.List) error {
	query := `
		UPDATE lists
		SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, list.ID, list.Title, list.Description, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListNotFound
	}

	return nil
}

// DeleteList removes a list. Child rows cascade.
func (r *Repository) DeleteList(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListNotFound
	}

	return nil
}

// AddListAlbum appends an album at the end of the list.
func (r *Repository) AddListAlbum(ctx context.Context, listID, albumID string) error {
	query := `
		INSERT INTO list_albums (list_id, album_id, position, added_at)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM list_albums WHERE list_id = $1),
			$3)
	`

	_, err := r.pool.Exec(ctx, query, listID, albumID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlbumAlreadyInList
		}
		return fmt.Errorf("failed to add album to list: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `UPDATE lists SET updated_at = $2 WHERE id = $1`, listID, time.Now()); err != nil {
		return fmt.Errorf("failed to touch list: %w", err)
	}

	return nil
}

// RemoveListAlbum removes an album from the list. Idempotent.
func (r *Repository) RemoveListAlbum(ctx context.Context, listID, albumID string) error {
	query := `DELETE FROM list_albums WHERE list_id = $1 AND album_id = $2`

	if _, err := r.pool.Exec(ctx, query, listID, albumID); err != nil {
		return fmt.Errorf("failed to remove album from list: %w", err)
	}

	return nil
}

// LikeList adds a like and reports whether it is new, so the caller can skip
// duplicate notifications.
func (r *Repository) LikeList(ctx context.Context, listID, userID string) (bool, error) {
	query := `
		INSERT INTO list_likes (list_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (list_id, user_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, listID, userID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to like list: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UnlikeList removes a like. Idempotent.
func (r *Repository) UnlikeList(ctx context.Context, listID, userID string) error {
	query := `DELETE FROM list_likes WHERE list_id = $1 AND user_id = $2`

	if _, err := r.pool.Exec(ctx, query, listID, userID); err != nil {
		return fmt.Errorf("failed to unlike list: %w", err)
	}

	return nil
}

// AddCollaborator grants a user edit access to a list.
func (r *Repository) AddCollaborator(ctx context.Context, listID, userID string) error {
	query := `
		INSERT INTO list_collaborators (list_id, user_id, added_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, listID, userID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCollaboratorExists
		}
		return fmt.Errorf("failed to add collaborator: %w", err)
	}

	return nil
}

// RemoveCollaborator revokes edit access.
func (r *Repository) RemoveCollaborator(ctx context.Context, listID, userID string) error {
	query := `DELETE FROM list_collaborators WHERE list_id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, listID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCollaboratorNotFound
	}

	return nil
}

// ListCollaborators returns a list's collaborators with display info.
func (r *Repository) ListCollaborators(ctx context.Context, listID string) ([]*model.ListCollaborator, error) {
	query := `
		SELECT lc.list_id, lc.user_id, lc.added_at, u.username, u.avatar_url
		FROM list_collaborators lc
		JOIN users u ON u.id = lc.user_id
		WHERE lc.list_id = $1
		ORDER BY lc.added_at ASC
	`

	rows, err := r.pool.Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer rows.Close()

	collaborators := make([]*model.ListCollaborator, 0)
	for rows.Next() {
		var c model.ListCollaborator
		if err := rows.Scan(&c.ListID, &c.UserID, &c.AddedAt, &c.Username, &c.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		collaborators = append(collaborators, &c)
	}
	return collaborators, rows.Err()
}

// IsCollaborator reports whether userID can edit the list.
func (r *Repository) IsCollaborator(ctx context.Context, listID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM list_collaborators WHERE list_id = $1 AND user_id = $2)`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, listID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check collaborator: %w", err)
	}

	return ok, nil
}
