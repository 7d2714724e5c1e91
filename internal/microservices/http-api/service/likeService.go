package service

import (
	"context"
	"errors"
	"fmt"

	"musichub/internal/logging"
	"musichub/internal/metrics"
	"musichub/internal/microservices/http-api/dto"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/middleware/auth"

	"gorm.io/gorm"
)

type LikeService interface {
	ToggleLike(ctx context.Context, caller *auth.Caller, reviewID int64) (*dto.ToggleLikeResponse, error)
	LikeStatus(ctx context.Context, caller *auth.Caller, reviewID int64) (*dto.LikeStatusResponse, error)
	ListLikes(ctx context.Context, filter repository.LikeFilter) ([]dto.LikeResponse, error)
}

type likeService struct {
	likeRepo repository.LikeRepository
	userRepo repository.UserRepository
}

func NewLikeService(likeRepo repository.LikeRepository, userRepo repository.UserRepository) LikeService {
	return &likeService{
		likeRepo: likeRepo,
		userRepo: userRepo,
	}
}

// ToggleLike likes the review if the caller has not, and unlikes it otherwise.
// The returned count is read in the same transaction as the flip.
func (s *likeService) ToggleLike(ctx context.Context, caller *auth.Caller, reviewID int64) (*dto.ToggleLikeResponse, error) {
	if caller == nil {
		return nil, ErrLoginRequired
	}

	if err := ensureUser(ctx, s.userRepo, caller); err != nil {
		metrics.LikeToggles.WithLabelValues("error").Inc()
		return nil, err
	}

	liked, count, err := s.likeRepo.Toggle(ctx, reviewID, caller.ID)
	if err != nil {
		// a review deleted mid-toggle surfaces as a foreign key violation
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repository.ErrForeignKey) {
			metrics.LikeToggles.WithLabelValues("not_found").Inc()
			return nil, ErrReviewNotFound
		}
		metrics.LikeToggles.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	resp := dto.NewToggleLikeResponse(liked, count)
	metrics.LikeToggles.WithLabelValues(resp.Status).Inc()

	logging.Ctx(ctx).Debug().
		Int64("review_id", reviewID).
		Str("user_id", caller.ID).
		Str("status", resp.Status).
		Int64("like_count", count).
		Msg("like toggled")

	return resp, nil
}

// LikeStatus reports the like count and whether caller likes the review.
// Anonymous callers never like anything.
func (s *likeService) LikeStatus(ctx context.Context, caller *auth.Caller, reviewID int64) (*dto.LikeStatusResponse, error) {
	userID := ""
	if caller != nil {
		userID = caller.ID
	}

	liked, count, err := s.likeRepo.Status(ctx, reviewID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("like status: %w", err)
	}

	return &dto.LikeStatusResponse{LikeCount: count, IsLiked: liked}, nil
}

func (s *likeService) ListLikes(ctx context.Context, filter repository.LikeFilter) ([]dto.LikeResponse, error) {
	likes, err := s.likeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}

	out := make([]dto.LikeResponse, 0, len(likes))
	for i := range likes {
		out = append(out, *dto.FromModelToLikeResponse(&likes[i]))
	}
	return out, nil
}
