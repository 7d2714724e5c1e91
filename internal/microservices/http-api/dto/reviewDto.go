package dto

import (
	"time"

	"musichub/internal/microservices/http-api/models"
)

// CreateReviewDTO for submitting a review. The web client sends the album id as
// "album"; "album_id" is accepted too.
type CreateReviewDTO struct {
	AlbumID    int64  `json:"album_id"`
	Album      int64  `json:"album"`
	Rating     *int   `json:"rating"`
	ReviewText string `json:"review_text"`
}

// AlbumRef returns whichever album field the client filled in
func (d CreateReviewDTO) AlbumRef() int64 {
	if d.AlbumID != 0 {
		return d.AlbumID
	}
	return d.Album
}

// UpdateReviewDTO for PUT/PATCH. Nil fields are left unchanged.
type UpdateReviewDTO struct {
	Rating     *int    `json:"rating"`
	ReviewText *string `json:"review_text"`
}

// ReviewResponse uses the field names the web client already reads
type ReviewResponse struct {
	ID         int64     `json:"id"`
	User       string    `json:"user"`
	Username   string    `json:"username"`
	Album      int64     `json:"album"`
	AlbumTitle string    `json:"album_title"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	LikeCount  int64     `json:"like_count"`
	UserLiked  bool      `json:"user_liked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FromModelToReviewResponse converts a Review model plus its derived like data
func FromModelToReviewResponse(review *models.Review, likeCount int64, userLiked bool) *ReviewResponse {
	return &ReviewResponse{
		ID:         review.ID,
		User:       review.UserID,
		Username:   review.User.Username,
		Album:      review.AlbumID,
		AlbumTitle: review.Album.Title,
		Rating:     review.Rating,
		ReviewText: review.ReviewText,
		LikeCount:  likeCount,
		UserLiked:  userLiked,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
}
