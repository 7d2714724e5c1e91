package models

import "time"

type Album struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ArtistID    int64     `json:"artist_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	ReleaseYear int       `json:"release_year" gorm:"not null"`
	Genre       string    `json:"genre" gorm:"not null;size:100"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Artist Artist `json:"artist,omitempty" gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE;"`
}

func (Album) TableName() string {
	return "albums"
}

// AlbumAggregates are derived from the reviews table on every read, never stored.
type AlbumAggregates struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}
