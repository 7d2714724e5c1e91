package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's opinion of one album. (user_id, album_id) is unique.
type Review struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_album,priority:1"`
	AlbumID    int64     `json:"album_id" gorm:"not null;index;uniqueIndex:idx_reviews_user_album,priority:2"`
	Rating     int       `json:"rating" gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	ReviewText string    `json:"review_text" gorm:"not null;type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Album Album `json:"album,omitempty" gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
