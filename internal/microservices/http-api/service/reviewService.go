package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"musichub/internal/logging"
	"musichub/internal/metrics"
	"musichub/internal/microservices/http-api/dto"
	"musichub/internal/microservices/http-api/models"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/middleware/auth"

	"gorm.io/gorm"
)

type ReviewService interface {
	SubmitReview(ctx context.Context, caller *auth.Caller, in SubmitReviewInput) (*dto.ReviewResponse, error)
	UpdateReview(ctx context.Context, caller *auth.Caller, reviewID int64, in UpdateReviewInput) (*dto.ReviewResponse, error)
	DeleteReview(ctx context.Context, caller *auth.Caller, reviewID int64) error
	GetReview(ctx context.Context, caller *auth.Caller, reviewID int64) (*dto.ReviewResponse, error)
	ListReviews(ctx context.Context, caller *auth.Caller, filter repository.ReviewFilter) ([]dto.ReviewResponse, error)
	ListAlbumReviews(ctx context.Context, caller *auth.Caller, albumID int64, ordering string) ([]dto.ReviewResponse, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	albumRepo  repository.AlbumRepository
	userRepo   repository.UserRepository
	aggregates AggregateService
	now        func() time.Time
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	albumRepo repository.AlbumRepository,
	userRepo repository.UserRepository,
	aggregates AggregateService,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		albumRepo:  albumRepo,
		userRepo:   userRepo,
		aggregates: aggregates,
		now:        time.Now,
	}
}

// SubmitReview records the caller's review of an album. A second review of the
// same album fails with ErrAlreadyReviewed, including when two submissions race.
func (s *reviewService) SubmitReview(ctx context.Context, caller *auth.Caller, in SubmitReviewInput) (*dto.ReviewResponse, error) {
	if caller == nil {
		return nil, ErrLoginRequired
	}

	in.ReviewText = strings.TrimSpace(in.ReviewText)
	if err := validateInput(in); err != nil {
		metrics.ReviewsSubmitted.WithLabelValues("invalid").Inc()
		return nil, err
	}

	exists, err := s.albumRepo.Exists(ctx, in.AlbumID)
	if err != nil {
		metrics.ReviewsSubmitted.WithLabelValues("error").Inc()
		return nil, err
	}
	if !exists {
		metrics.ReviewsSubmitted.WithLabelValues("invalid").Inc()
		return nil, ErrAlbumMissing
	}

	if err := ensureUser(ctx, s.userRepo, caller); err != nil {
		metrics.ReviewsSubmitted.WithLabelValues("error").Inc()
		return nil, err
	}

	now := s.now()
	review := &models.Review{
		UserID:     caller.ID,
		AlbumID:    in.AlbumID,
		Rating:     *in.Rating,
		ReviewText: in.ReviewText,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			metrics.ReviewsSubmitted.WithLabelValues("conflict").Inc()
			return nil, ErrAlreadyReviewed
		case errors.Is(err, repository.ErrForeignKey):
			metrics.ReviewsSubmitted.WithLabelValues("invalid").Inc()
			return nil, ErrAlbumMissing
		default:
			metrics.ReviewsSubmitted.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("create review: %w", err)
		}
	}
	metrics.ReviewsSubmitted.WithLabelValues("created").Inc()

	logging.Ctx(ctx).Info().
		Int64("review_id", review.ID).
		Int64("album_id", review.AlbumID).
		Str("user_id", caller.ID).
		Msg("review submitted")

	// Reload with user and album data
	created, err := s.reviewRepo.GetByID(ctx, review.ID)
	if err != nil {
		return nil, fmt.Errorf("reload review: %w", err)
	}
	return dto.FromModelToReviewResponse(created, 0, false), nil
}

// UpdateReview changes the supplied fields of the caller's own review.
func (s *reviewService) UpdateReview(ctx context.Context, caller *auth.Caller, reviewID int64, in UpdateReviewInput) (*dto.ReviewResponse, error) {
	if caller == nil {
		return nil, ErrLoginRequired
	}

	review, err := s.ownedReview(ctx, caller, reviewID)
	if err != nil {
		return nil, err
	}

	if in.ReviewText != nil {
		trimmed := strings.TrimSpace(*in.ReviewText)
		in.ReviewText = &trimmed
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": s.now()}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	if in.ReviewText != nil {
		fields["review_text"] = *in.ReviewText
	}

	if err := s.reviewRepo.UpdateFields(ctx, review.ID, caller.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	return s.GetReview(ctx, caller, review.ID)
}

// DeleteReview removes the caller's review and every like on it.
func (s *reviewService) DeleteReview(ctx context.Context, caller *auth.Caller, reviewID int64) error {
	if caller == nil {
		return ErrLoginRequired
	}

	if _, err := s.ownedReview(ctx, caller, reviewID); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, reviewID, caller.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}

	logging.Ctx(ctx).Info().
		Int64("review_id", reviewID).
		Str("user_id", caller.ID).
		Msg("review deleted")
	return nil
}

func (s *reviewService) GetReview(ctx context.Context, caller *auth.Caller, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	projected, err := s.aggregates.ProjectReviews(ctx, caller, []models.Review{*review})
	if err != nil {
		return nil, err
	}
	return &projected[0], nil
}

// ListReviews filters reviews by album and/or author. An empty ordering means
// newest first.
func (s *reviewService) ListReviews(ctx context.Context, caller *auth.Caller, filter repository.ReviewFilter) ([]dto.ReviewResponse, error) {
	if filter.Ordering == "" {
		filter.Ordering = repository.DefaultReviewOrdering
	}
	if !repository.IsValidReviewOrdering(filter.Ordering) {
		return nil, ErrInvalidOrdering
	}

	reviews, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return s.aggregates.ProjectReviews(ctx, caller, reviews)
}

func (s *reviewService) ListAlbumReviews(ctx context.Context, caller *auth.Caller, albumID int64, ordering string) ([]dto.ReviewResponse, error) {
	exists, err := s.albumRepo.Exists(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrAlbumNotFound
	}
	return s.ListReviews(ctx, caller, repository.ReviewFilter{AlbumID: &albumID, Ordering: ordering})
}

// ownedReview loads the review and checks that caller wrote it.
func (s *reviewService) ownedReview(ctx context.Context, caller *auth.Caller, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.UserID != caller.ID {
		return nil, ErrNotReviewOwner
	}
	return review, nil
}

// ensureUser mirrors the caller into the users table so foreign keys hold.
func ensureUser(ctx context.Context, users repository.UserRepository, caller *auth.Caller) error {
	if err := users.Upsert(ctx, &models.User{ID: caller.ID, Username: caller.Username}); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
