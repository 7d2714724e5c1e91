package service

import (
	"context"
	"fmt"

	"musichub/internal/microservices/http-api/dto"
	"musichub/internal/microservices/http-api/models"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/middleware/auth"
)

// AggregateService derives album and review statistics from the current rows.
// Nothing here is cached or stored.
type AggregateService interface {
	AlbumAggregates(ctx context.Context, albumID int64) (*models.AlbumAggregates, error)
	AlbumAggregatesBatch(ctx context.Context, albumIDs []int64) (map[int64]models.AlbumAggregates, error)
	ReviewLikeCount(ctx context.Context, reviewID int64) (int64, error)
	ProjectReviews(ctx context.Context, caller *auth.Caller, reviews []models.Review) ([]dto.ReviewResponse, error)
}

type aggregateService struct {
	reviewRepo repository.ReviewRepository
	likeRepo   repository.LikeRepository
	albumRepo  repository.AlbumRepository
}

func NewAggregateService(reviewRepo repository.ReviewRepository, likeRepo repository.LikeRepository, albumRepo repository.AlbumRepository) AggregateService {
	return &aggregateService{
		reviewRepo: reviewRepo,
		likeRepo:   likeRepo,
		albumRepo:  albumRepo,
	}
}

// AlbumAggregates returns the mean rating and review count of an album.
// An album without reviews reports 0 and 0.
func (s *aggregateService) AlbumAggregates(ctx context.Context, albumID int64) (*models.AlbumAggregates, error) {
	exists, err := s.albumRepo.Exists(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrAlbumNotFound
	}

	agg, err := s.reviewRepo.AlbumAggregates(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("album aggregates: %w", err)
	}
	return agg, nil
}

func (s *aggregateService) AlbumAggregatesBatch(ctx context.Context, albumIDs []int64) (map[int64]models.AlbumAggregates, error) {
	aggs, err := s.reviewRepo.AlbumAggregatesBatch(ctx, albumIDs)
	if err != nil {
		return nil, fmt.Errorf("album aggregates: %w", err)
	}
	return aggs, nil
}

func (s *aggregateService) ReviewLikeCount(ctx context.Context, reviewID int64) (int64, error) {
	exists, err := s.reviewRepo.Exists(ctx, reviewID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrReviewNotFound
	}
	return s.likeRepo.CountByReview(ctx, reviewID)
}

// ProjectReviews attaches like_count and user_liked to each review using two
// queries regardless of list length. user_liked is false for anonymous callers.
func (s *aggregateService) ProjectReviews(ctx context.Context, caller *auth.Caller, reviews []models.Review) ([]dto.ReviewResponse, error) {
	out := make([]dto.ReviewResponse, 0, len(reviews))
	if len(reviews) == 0 {
		return out, nil
	}

	ids := make([]int64, len(reviews))
	for i := range reviews {
		ids[i] = reviews[i].ID
	}

	counts, err := s.likeRepo.CountByReviews(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	liked := map[int64]bool{}
	if caller != nil {
		liked, err = s.likeRepo.LikedReviewIDs(ctx, caller.ID, ids)
		if err != nil {
			return nil, fmt.Errorf("liked reviews: %w", err)
		}
	}

	for i := range reviews {
		r := &reviews[i]
		out = append(out, *dto.FromModelToReviewResponse(r, counts[r.ID], liked[r.ID]))
	}
	return out, nil
}
