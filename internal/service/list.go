package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// List service errors.
var (
	ErrListNotFound       = errors.New("list not found")
	ErrNotListOwner       = errors.New("not the list owner")
	ErrNotListEditor      = errors.New("not allowed to edit this list")
	ErrAlbumAlreadyListed = errors.New("album already in list")
	ErrAlreadyCollab      = errors.New("user is already a collaborator")
	ErrCollabNotFound     = errors.New("collaborator not found")
	ErrEmptyListTitle     = errors.New("list title is empty")
)

// ListService handles curated lists, their contents, likes and collaborators.
type ListService struct {
	repo    *repository.Repository
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewListService creates a new ListService.
func NewListService(repo *repository.Repository, logger *slog.Logger, recorder metrics.Recorder) *ListService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ListService{repo: repo, logger: logger, metrics: recorder}
}

// Create makes a new list owned by the caller.
func (s *ListService) Create(ctx context.Context, ownerID, title, description string) (*model.List, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyListTitle
	}

	list := &model.List{
		ID:          newUUID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
	}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	s.metrics.IncListCreated()

	return list, nil
}

// Get returns a list with albums, collaborators and viewer like state.
func (s *ListService) Get(ctx context.Context, id, viewerID string) (*model.ListDetail, error) {
	detail, err := s.repo.GetListDetail(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return detail, nil
}

// Mine lists the caller's lists, including ones they collaborate on.
func (s *ListService) Mine(ctx context.Context, userID string) ([]*model.List, error) {
	return s.repo.ListUserLists(ctx, userID, true)
}

// OwnedBy lists a user's own lists for their public profile.
func (s *ListService) OwnedBy(ctx context.Context, userID string) ([]*model.List, error) {
	return s.repo.ListUserLists(ctx, userID, false)
}

// Liked lists the lists the caller has liked, most recent like first.
func (s *ListService) Liked(ctx context.Context, userID string) ([]*model.List, error) {
	return s.repo.ListLikedLists(ctx, userID)
}

// UpdateListInput defines the mutable list fields. Nil fields are left
// unchanged.
type UpdateListInput struct {
	Title       *string
	Description *string
}

// Update edits a list. Owner and collaborators may edit.
func (s *ListService) Update(ctx context.Context, id, actorID string, input UpdateListInput) (*model.List, error) {
	list, err := s.getEditable(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrEmptyListTitle
		}
		list.Title = title
	}
	if input.Description != nil {
		list.Description = *input.Description
	}

	if err := s.repo.UpdateList(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Delete removes a list and its contents. Owner only.
func (s *ListService) Delete(ctx context.Context, id, actorID string) error {
	list, err := s.getList(ctx, id)
	if err != nil {
		return err
	}
	if list.OwnerID != actorID {
		return ErrNotListOwner
	}
	return s.repo.DeleteList(ctx, id)
}

// AddAlbum appends an album to the end of a list. Owner and collaborators.
func (s *ListService) AddAlbum(ctx context.Context, listID, actorID, albumID string) error {
	if _, err := s.getEditable(ctx, listID, actorID); err != nil {
		return err
	}
	if _, err := s.repo.GetAlbumByID(ctx, albumID); err != nil {
		if errors.Is(err, repository.ErrAlbumNotFound) {
			return ErrAlbumNotFound
		}
		return err
	}

	err := s.repo.AddListAlbum(ctx, listID, albumID)
	if errors.Is(err, repository.ErrAlbumAlreadyInList) {
		return ErrAlbumAlreadyListed
	}
	return err
}

// RemoveAlbum removes an album from a list. Owner and collaborators.
func (s *ListService) RemoveAlbum(ctx context.Context, listID, actorID, albumID string) error {
	if _, err := s.getEditable(ctx, listID, actorID); err != nil {
		return err
	}
	return s.repo.RemoveListAlbum(ctx, listID, albumID)
}

// Like records a like and notifies the owner on the first like from this
// user. Idempotent.
func (s *ListService) Like(ctx context.Context, listID string, actor *model.AuthContext) error {
	list, err := s.getList(ctx, listID)
	if err != nil {
		return err
	}

	isNew, err := s.repo.LikeList(ctx, listID, actor.UserID)
	if err != nil {
		return err
	}

	if isNew && list.OwnerID != actor.UserID {
		s.notify(ctx, &model.Notification{
			ID:     newULID(),
			UserID: list.OwnerID,
			Type:   model.NotificationListLike,
			Title:  "New like on your list",
			Body:   fmt.Sprintf("%s liked %q", actor.Username, list.Title),
			RefID:  listID,
		})
	}
	return nil
}

// Unlike removes a like. Idempotent.
func (s *ListService) Unlike(ctx context.Context, listID, userID string) error {
	return s.repo.UnlikeList(ctx, listID, userID)
}

// AddCollaborator grants edit access by username and notifies the user.
// Owner only.
func (s *ListService) AddCollaborator(ctx context.Context, listID, actorID, username string) (*model.ListCollaborator, error) {
	list, err := s.getList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != actorID {
		return nil, ErrNotListOwner
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.ID == list.OwnerID {
		return nil, ErrAlreadyCollab
	}

	if err := s.repo.AddCollaborator(ctx, listID, user.ID); err != nil {
		if errors.Is(err, repository.ErrCollaboratorExists) {
			return nil, ErrAlreadyCollab
		}
		return nil, err
	}

	s.notify(ctx, &model.Notification{
		ID:     newULID(),
		UserID: user.ID,
		Type:   model.NotificationCollaboratorAdded,
		Title:  "Added to a list",
		Body:   fmt.Sprintf("You can now edit %q", list.Title),
		RefID:  listID,
	})

	return &model.ListCollaborator{
		ListID:    listID,
		UserID:    user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	}, nil
}

// RemoveCollaborator revokes edit access. The owner removes anyone; a
// collaborator may remove themselves.
func (s *ListService) RemoveCollaborator(ctx context.Context, listID, actorID, targetID string) error {
	list, err := s.getList(ctx, listID)
	if err != nil {
		return err
	}
	if list.OwnerID != actorID && actorID != targetID {
		return ErrNotListOwner
	}

	err = s.repo.RemoveCollaborator(ctx, listID, targetID)
	if errors.Is(err, repository.ErrCollaboratorNotFound) {
		return ErrCollabNotFound
	}
	return err
}

func (s *ListService) getList(ctx context.Context, id string) (*model.List, error) {
	list, err := s.repo.GetListByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return list, nil
}

// getEditable loads a list and checks the actor may edit it.
func (s *ListService) getEditable(ctx context.Context, id, actorID string) (*model.List, error) {
	list, err := s.getList(ctx, id)
	if err != nil {
		return nil, err
	}
	if list.OwnerID == actorID {
		return list, nil
	}
	isCollab, err := s.repo.IsCollaborator(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if !isCollab {
		return nil, ErrNotListEditor
	}
	return list, nil
}

// notify stores a notification. Delivery is best-effort; failures only log.
func (s *ListService) notify(ctx context.Context, n *model.Notification) {
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Error("create notification failed",
			slog.String("error", err.Error()),
			slog.String("type", n.Type),
			slog.String("user_id", n.UserID),
		)
	}
}
