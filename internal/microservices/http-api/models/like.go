package models

import "time"

// Like is one user's endorsement of one review. (user_id, review_id) is unique.
// Rows only come and go through the toggle, or by cascade from the review.
type Like struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_review,priority:1"`
	ReviewID  int64     `json:"review_id" gorm:"not null;index;uniqueIndex:idx_likes_user_review,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Review Review `json:"review,omitempty" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
}

func (Like) TableName() string {
	return "likes"
}
