package repository

import (
	"context"

	"musichub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultReviewOrdering lists the newest reviews first.
const DefaultReviewOrdering = "-created_at"

// reviewOrderings maps the public ordering parameter to SQL. id DESC breaks ties
// so pages are stable.
var reviewOrderings = map[string]string{
	"created_at":  "reviews.created_at ASC, reviews.id DESC",
	"-created_at": "reviews.created_at DESC, reviews.id DESC",
	"rating":      "reviews.rating ASC, reviews.id DESC",
	"-rating":     "reviews.rating DESC, reviews.id DESC",
}

// IsValidReviewOrdering reports whether ordering is accepted by List.
func IsValidReviewOrdering(ordering string) bool {
	_, ok := reviewOrderings[ordering]
	return ok
}

// ReviewFilter narrows List. Nil fields are not applied.
type ReviewFilter struct {
	AlbumID  *int64
	UserID   *string
	Ordering string
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	Exists(ctx context.Context, id int64) (bool, error)
	UpdateFields(ctx context.Context, id int64, userID string, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64, userID string) error
	List(ctx context.Context, filter ReviewFilter) ([]models.Review, error)
	AlbumAggregates(ctx context.Context, albumID int64) (*models.AlbumAggregates, error)
	AlbumAggregatesBatch(ctx context.Context, albumIDs []int64) (map[int64]models.AlbumAggregates, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review if the user has not reviewed the album yet.
// The count inside the transaction is the fast path; idx_reviews_user_album is
// what actually stops two concurrent inserts, and its violation comes back as
// ErrDuplicate.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND album_id = ?", review.UserID, review.AlbumID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}
		return tx.Omit(clause.Associations).Create(review).Error
	})
	return translateError(err)
}

// GetByID retrieves a review with its author and album
func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Album").
		First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateFields applies fields to the review if userID still owns it.
// Returns gorm.ErrRecordNotFound when no row matched.
func (r *reviewRepository) UpdateFields(ctx context.Context, id int64, userID string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the review and its likes in one transaction. The row lock
// makes a concurrent toggle (which takes FOR SHARE on the review) either finish
// first or see the review gone.
func (r *reviewRepository) Delete(ctx context.Context, id int64, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ? AND user_id = ?", id, userID).
			First(&review).Error; err != nil {
			return err
		}

		if err := tx.Where("review_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Review{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List returns reviews matching filter with author and album preloaded
func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter) ([]models.Review, error) {
	order, ok := reviewOrderings[filter.Ordering]
	if !ok {
		order = reviewOrderings[DefaultReviewOrdering]
	}

	query := r.db.WithContext(ctx).Model(&models.Review{})
	if filter.AlbumID != nil {
		query = query.Where("album_id = ?", *filter.AlbumID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var reviews []models.Review
	err := query.
		Preload("User").
		Preload("Album").
		Order(order).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// AlbumAggregates computes the average rating and review count for an album.
// An album without reviews averages 0.
func (r *reviewRepository) AlbumAggregates(ctx context.Context, albumID int64) (*models.AlbumAggregates, error) {
	var agg models.AlbumAggregates
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)::float8 AS average_rating, COUNT(*) AS review_count").
		Where("album_id = ?", albumID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// AlbumAggregatesBatch computes aggregates for several albums in one query.
// Albums without reviews are absent from the map; their zero value is correct.
func (r *reviewRepository) AlbumAggregatesBatch(ctx context.Context, albumIDs []int64) (map[int64]models.AlbumAggregates, error) {
	result := make(map[int64]models.AlbumAggregates, len(albumIDs))
	if len(albumIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		AlbumID       int64
		AverageRating float64
		ReviewCount   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("album_id, AVG(rating)::float8 AS average_rating, COUNT(*) AS review_count").
		Where("album_id IN ?", albumIDs).
		Group("album_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.AlbumID] = models.AlbumAggregates{
			AverageRating: row.AverageRating,
			ReviewCount:   row.ReviewCount,
		}
	}
	return result, nil
}
