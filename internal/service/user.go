package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/waxlog/waxlog/internal/middleware"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// User service errors.
var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrTooManyFavorites = errors.New("too many favorite albums")
)

// maxFavoriteAlbums caps the pinned albums on a profile.
const maxFavoriteAlbums = 5

// UserService handles profiles, follows and favorites.
type UserService struct {
	repo *repository.Repository
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// GetProfile returns a public profile with activity counts. viewerID may be
// empty for anonymous requests.
func (s *UserService) GetProfile(ctx context.Context, userID, viewerID string) (*model.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetProfileByUsername resolves a username then loads the profile.
func (s *UserService) GetProfileByUsername(ctx context.Context, username, viewerID string) (*model.Profile, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, user.ID, viewerID)
}

// UpdateProfileInput defines the mutable profile fields. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Username  *string
	AvatarURL *string
	Bio       *string
}

// UpdateProfile updates the caller's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		if err := middleware.ValidateUsername(*input.Username); err != nil {
			return nil, err
		}
		user.Username = *input.Username
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.Bio != nil {
		if err := middleware.ValidateBio(*input.Bio); err != nil {
			return nil, err
		}
		user.Bio = *input.Bio
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Follow creates a follow edge. Idempotent.
func (s *UserService) Follow(ctx context.Context, followerID, targetID string) error {
	err := s.repo.CreateFollow(ctx, followerID, targetID)
	switch {
	case errors.Is(err, repository.ErrSelfFollow):
		return ErrCannotFollowSelf
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	}
	return err
}

// Unfollow removes a follow edge. Idempotent.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID string) error {
	return s.repo.DeleteFollow(ctx, followerID, targetID)
}

// Following lists the users the given user follows.
func (s *UserService) Following(ctx context.Context, userID string) ([]*model.User, error) {
	return s.repo.ListFollowing(ctx, userID)
}

// Recommended lists users by follower count, excluding the viewer.
func (s *UserService) Recommended(ctx context.Context, viewerID string, limit int) ([]*model.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.ListRecommendedUsers(ctx, viewerID, limit)
}

// Search finds users by fuzzy username match.
func (s *UserService) Search(ctx context.Context, q string, limit int) ([]*model.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.SearchUsers(ctx, q, limit)
}

// SetFavorites replaces the ordered favorite albums on the caller's profile.
func (s *UserService) SetFavorites(ctx context.Context, userID string, albumIDs []string) error {
	if len(albumIDs) > maxFavoriteAlbums {
		return ErrTooManyFavorites
	}
	for _, albumID := range albumIDs {
		if _, err := s.repo.GetAlbumByID(ctx, albumID); err != nil {
			if errors.Is(err, repository.ErrAlbumNotFound) {
				return ErrAlbumNotFound
			}
			return err
		}
	}
	return s.repo.ReplaceFavoriteAlbums(ctx, userID, albumIDs)
}

// Favorites lists the pinned albums on a profile, in position order.
func (s *UserService) Favorites(ctx context.Context, userID string) ([]*model.Album, error) {
	return s.repo.ListFavoriteAlbums(ctx, userID)
}
