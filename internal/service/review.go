package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/middleware"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// Review service errors.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewOwner  = errors.New("not the review owner")
	ErrEmptyComment    = errors.New("comment body is empty")
	ErrInvalidFormat   = errors.New("invalid listening format")
	ErrCommentNotFound = errors.New("comment not found")
)

// ReviewService handles reviews, likes, comments and the feed.
type ReviewService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewReviewService creates a new ReviewService.
func NewReviewService(repo *repository.Repository, recorder metrics.Recorder) *ReviewService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ReviewService{repo: repo, metrics: recorder}
}

// CreateReviewInput defines input for posting a review.
type CreateReviewInput struct {
	AlbumID     string
	Rating      float64
	Body        string
	Tags        []string
	ShareToFeed bool
	// Diary fields for the listen recorded alongside the review.
	Format   string
	LoggedAt *time.Time
}

// Create posts a review and records the listen in the diary atomically.
func (s *ReviewService) Create(ctx context.Context, userID string, input CreateReviewInput) (*model.Review, error) {
	if err := middleware.ValidateRating(input.Rating); err != nil {
		return nil, err
	}
	if err := middleware.ValidateReviewText(input.Body); err != nil {
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

	entryType := model.EntryTypeReview
	if strings.TrimSpace(input.Body) == "" {
		entryType = model.EntryTypeLog
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	rating := input.Rating
	review := &model.Review{
		ID:          newULID(),
		UserID:      userID,
		AlbumID:     input.AlbumID,
		Rating:      rating,
		Body:        input.Body,
		EntryType:   entryType,
		Tags:        tags,
		ShareToFeed: input.ShareToFeed,
	}
	// The diary entry mirrors the review so the listening log stands on
	// its own even if the review is deleted later.
	entry := &model.DiaryEntry{
		ID:       newULID(),
		UserID:   userID,
		AlbumID:  input.AlbumID,
		Rating:   &rating,
		Content:  input.Body,
		Tags:     tags,
		Format:   format,
		LoggedAt: loggedAt,
	}

	if err := s.repo.CreateReview(ctx, review, entry); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.metrics.IncReviewCreated()
	s.metrics.IncDiaryEntryCreated()

	return s.Get(ctx, review.ID, userID)
}

// Get returns a review hydrated for the given viewer.
func (s *ReviewService) Get(ctx context.Context, id, viewerID string) (*model.Review, error) {
	review, err := s.repo.GetReviewByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// Feed returns shared entries from users the viewer follows.
func (s *ReviewService) Feed(ctx context.Context, viewerID string, reviewsOnly bool, offset, limit int) ([]*model.Review, error) {
	offset, limit = normalizePage(offset, limit)
	return s.repo.ListFeedReviews(ctx, viewerID, reviewsOnly, offset, limit)
}

// AlbumReviews lists reviews for an album, newest first.
func (s *ReviewService) AlbumReviews(ctx context.Context, albumID, viewerID string, offset, limit int) ([]*model.Review, error) {
	offset, limit = normalizePage(offset, limit)
	return s.repo.ListAlbumReviews(ctx, albumID, viewerID, offset, limit)
}

// UserReviews lists a user's reviews, newest first.
func (s *ReviewService) UserReviews(ctx context.Context, userID, viewerID string, offset, limit int) ([]*model.Review, error) {
	offset, limit = normalizePage(offset, limit)
	return s.repo.ListUserReviews(ctx, userID, viewerID, offset, limit)
}

// UpdateReviewInput defines the mutable review fields. Nil fields are left
// unchanged.
type UpdateReviewInput struct {
	Rating      *float64
	Body        *string
	Tags        []string
	ShareToFeed *bool
}

// Update edits a review. Only the owner (or an admin) may edit.
func (s *ReviewService) Update(ctx context.Context, id string, actor *model.AuthContext, input UpdateReviewInput) (*model.Review, error) {
	review, err := s.repo.GetReviewByID(ctx, id, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.UserID != actor.UserID && !actor.IsAdmin {
		return nil, ErrNotReviewOwner
	}

	if input.Rating != nil {
		if err := middleware.ValidateRating(*input.Rating); err != nil {
			return nil, err
		}
		review.Rating = *input.Rating
	}
	if input.Body != nil {
		if err := middleware.ValidateReviewText(*input.Body); err != nil {
			return nil, err
		}
		review.Body = *input.Body
	}
	if input.Tags != nil {
		if err := middleware.ValidateTags(input.Tags); err != nil {
			return nil, err
		}
		review.Tags = input.Tags
	}
	if input.ShareToFeed != nil {
		review.ShareToFeed = *input.ShareToFeed
	}

	if err := s.repo.UpdateReview(ctx, review); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, actor.UserID)
}

// Delete removes a review. The diary entry recorded with it keeps the listen.
func (s *ReviewService) Delete(ctx context.Context, id string, actor *model.AuthContext) error {
	review, err := s.repo.GetReviewByID(ctx, id, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if review.UserID != actor.UserID && !actor.IsAdmin {
		return ErrNotReviewOwner
	}
	return s.repo.DeleteReview(ctx, id)
}

// Like records a like. Idempotent.
func (s *ReviewService) Like(ctx context.Context, reviewID, userID string) error {
	if err := s.ensureExists(ctx, reviewID); err != nil {
		return err
	}
	return s.repo.LikeReview(ctx, reviewID, userID)
}

// Unlike removes a like. Idempotent.
func (s *ReviewService) Unlike(ctx context.Context, reviewID, userID string) error {
	return s.repo.UnlikeReview(ctx, reviewID, userID)
}

// AddComment posts a reply on a review.
func (s *ReviewService) AddComment(ctx context.Context, reviewID, userID, body string) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	if err := s.ensureExists(ctx, reviewID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:       newULID(),
		ReviewID: reviewID,
		UserID:   userID,
		Body:     body,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Comments lists a review's comments in ascending order.
func (s *ReviewService) Comments(ctx context.Context, reviewID string, offset, limit int) ([]*model.Comment, error) {
	offset, limit = normalizePage(offset, limit)
	return s.repo.ListComments(ctx, reviewID, offset, limit)
}

func (s *ReviewService) ensureExists(ctx context.Context, reviewID string) error {
	if _, err := s.repo.GetReviewByID(ctx, reviewID, ""); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}
