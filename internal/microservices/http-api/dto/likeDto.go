package dto

import (
	"time"

	"musichub/internal/microservices/http-api/models"
)

const (
	LikeStatusLiked   = "liked"
	LikeStatusUnliked = "unliked"
)

// ToggleLikeResponse is returned by POST /reviews/:id/toggle_like
type ToggleLikeResponse struct {
	Status    string `json:"status"`
	Liked     bool   `json:"liked"`
	LikeCount int64  `json:"like_count"`
}

func NewToggleLikeResponse(liked bool, count int64) *ToggleLikeResponse {
	status := LikeStatusUnliked
	if liked {
		status = LikeStatusLiked
	}
	return &ToggleLikeResponse{Status: status, Liked: liked, LikeCount: count}
}

// LikeStatusResponse is returned by GET /reviews/:id/like_status
type LikeStatusResponse struct {
	LikeCount int64 `json:"like_count"`
	IsLiked   bool  `json:"is_liked"`
}

type LikeResponse struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Username  string    `json:"username"`
	Review    int64     `json:"review"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModelToLikeResponse(like *models.Like) *LikeResponse {
	return &LikeResponse{
		ID:        like.ID,
		User:      like.UserID,
		Username:  like.User.Username,
		Review:    like.ReviewID,
		CreatedAt: like.CreatedAt,
	}
}
