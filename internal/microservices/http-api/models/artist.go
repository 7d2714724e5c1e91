package models

import "time"

type Artist struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"not null;size:200"`
	Genre     string    `json:"genre" gorm:"not null;size:100"`
	Bio       string    `json:"bio" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// association
	Albums []Album `json:"albums,omitempty" gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE;"`
}

func (Artist) TableName() string {
	return "artists"
}
