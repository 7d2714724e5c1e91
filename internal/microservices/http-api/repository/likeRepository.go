package repository

import (
	"context"
	"fmt"

	"musichub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeFilter narrows List. Nil fields are not applied.
type LikeFilter struct {
	ReviewID *int64
	UserID   *string
}

type LikeRepository interface {
	Toggle(ctx context.Context, reviewID int64, userID string) (liked bool, count int64, err error)
	Status(ctx context.Context, reviewID int64, userID string) (liked bool, count int64, err error)
	CountByReview(ctx context.Context, reviewID int64) (int64, error)
	CountByReviews(ctx context.Context, reviewIDs []int64) (map[int64]int64, error)
	LikedReviewIDs(ctx context.Context, userID string, reviewIDs []int64) (map[int64]bool, error)
	List(ctx context.Context, filter LikeFilter) ([]models.Like, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the like of userID on reviewID and returns the new state and the
// recounted total. Returns gorm.ErrRecordNotFound if the review does not exist.
//
// Concurrent toggles for the same pair queue on a transaction-scoped advisory
// lock, so each one sees the committed result of the previous and concurrent
// calls behave like sequential ones.
func (r *likeRepository) Toggle(ctx context.Context, reviewID int64, userID string) (bool, int64, error) {
	var (
		liked bool
		count int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// FOR SHARE conflicts with the FOR UPDATE taken by review deletion
		var review models.Review
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").
			First(&review, reviewID).Error; err != nil {
			return err
		}

		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", likePairKey(reviewID, userID)).Error; err != nil {
			return err
		}

		var err error
		liked, err = flipLike(tx, reviewID, userID)
		if err != nil {
			return err
		}

		return tx.Model(&models.Like{}).Where("review_id = ?", reviewID).Count(&count).Error
	})
	if err != nil {
		return false, 0, translateError(err)
	}

	return liked, count, nil
}

// Status reports whether userID likes reviewID and the total like count.
// An empty userID is never liked.
func (r *likeRepository) Status(ctx context.Context, reviewID int64, userID string) (bool, int64, error) {
	db := r.db.WithContext(ctx)

	var review models.Review
	if err := db.Select("id").First(&review, reviewID).Error; err != nil {
		return false, 0, err
	}

	count, err := r.CountByReview(ctx, reviewID)
	if err != nil {
		return false, 0, err
	}

	if userID == "" {
		return false, count, nil
	}

	var mine int64
	if err := db.Model(&models.Like{}).
		Where("review_id = ? AND user_id = ?", reviewID, userID).
		Count(&mine).Error; err != nil {
		return false, 0, err
	}

	return mine > 0, count, nil
}

// CountByReview counts the likes of a review
func (r *likeRepository) CountByReview(ctx context.Context, reviewID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("review_id = ?", reviewID).Count(&count).Error
	return count, err
}

// CountByReviews counts likes for several reviews in one query. Reviews
// without likes are absent from the map.
func (r *likeRepository) CountByReviews(ctx context.Context, reviewIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ReviewID int64
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("review_id, COUNT(*) AS total").
		Where("review_id IN ?", reviewIDs).
		Group("review_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ReviewID] = row.Total
	}
	return counts, nil
}

// LikedReviewIDs returns the subset of reviewIDs liked by userID.
func (r *likeRepository) LikedReviewIDs(ctx context.Context, userID string, reviewIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool)
	if userID == "" || len(reviewIDs) == 0 {
		return liked, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND review_id IN ?", userID, reviewIDs).
		Pluck("review_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// List returns likes matching filter, newest first
func (r *likeRepository) List(ctx context.Context, filter LikeFilter) ([]models.Like, error) {
	query := r.db.WithContext(ctx).Model(&models.Like{})
	if filter.ReviewID != nil {
		query = query.Where("review_id = ?", *filter.ReviewID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var likes []models.Like
	if err := query.Preload("User").Order("created_at DESC, id DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

func likePairKey(reviewID int64, userID string) string {
	return fmt.Sprintf("likes:%d:%s", reviewID, userID)
}

// flipLike deletes the like if present, otherwise inserts it. The caller holds
// the pair's advisory lock. An insert that still finds the row means the pair
// is liked, which is reported as such.
func flipLike(tx *gorm.DB, reviewID int64, userID string) (bool, error) {
	removed := tx.Where("user_id = ? AND review_id = ?", userID, reviewID).Delete(&models.Like{})
	if removed.Error != nil {
		return false, removed.Error
	}
	if removed.RowsAffected > 0 {
		return false, nil
	}

	like := models.Like{UserID: userID, ReviewID: reviewID}
	err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
	if err != nil {
		return false, err
	}
	return true, nil
}
