package dto

import (
	"time"

	"musichub/internal/microservices/http-api/models"
)

// CreateArtistDTO for adding or replacing an artist (admin)
type CreateArtistDTO struct {
	Name  string `json:"name" binding:"required,max=200"`
	Genre string `json:"genre" binding:"required,max=100"`
	Bio   string `json:"bio"`
}

func (d CreateArtistDTO) ToModel() models.Artist {
	return models.Artist{Name: d.Name, Genre: d.Genre, Bio: d.Bio}
}

// CreateAlbumDTO for adding or replacing an album (admin)
type CreateAlbumDTO struct {
	ArtistID    int64  `json:"artist" binding:"required,gt=0"`
	Title       string `json:"title" binding:"required,max=200"`
	ReleaseYear int    `json:"release_year" binding:"required,min=1800,max=3000"`
	Genre       string `json:"genre" binding:"required,max=100"`
}

func (d CreateAlbumDTO) ToModel() models.Album {
	return models.Album{ArtistID: d.ArtistID, Title: d.Title, ReleaseYear: d.ReleaseYear, Genre: d.Genre}
}

type ArtistResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Genre     string    `json:"genre"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModelToArtistResponse(a *models.Artist) *ArtistResponse {
	return &ArtistResponse{
		ID:        a.ID,
		Name:      a.Name,
		Genre:     a.Genre,
		Bio:       a.Bio,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ArtistDetailResponse adds the artist's albums (without aggregates)
type ArtistDetailResponse struct {
	ArtistResponse
	Albums []AlbumBasicResponse `json:"albums"`
}

type AlbumBasicResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseYear int    `json:"release_year"`
	Genre       string `json:"genre"`
}

func FromModelToArtistDetailResponse(a *models.Artist) *ArtistDetailResponse {
	albums := make([]AlbumBasicResponse, 0, len(a.Albums))
	for _, al := range a.Albums {
		albums = append(albums, AlbumBasicResponse{
			ID:          al.ID,
			Title:       al.Title,
			ReleaseYear: al.ReleaseYear,
			Genre:       al.Genre,
		})
	}
	return &ArtistDetailResponse{
		ArtistResponse: *FromModelToArtistResponse(a),
		Albums:         albums,
	}
}

// AlbumResponse carries the live aggregates next to the stored fields
type AlbumResponse struct {
	ID            int64     `json:"id"`
	Artist        int64     `json:"artist"`
	ArtistName    string    `json:"artist_name"`
	ArtistBio     string    `json:"artist_bio"`
	Title         string    `json:"title"`
	ReleaseYear   int       `json:"release_year"`
	Genre         string    `json:"genre"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int64     `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromModelToAlbumResponse(a *models.Album, agg models.AlbumAggregates) *AlbumResponse {
	return &AlbumResponse{
		ID:            a.ID,
		Artist:        a.ArtistID,
		ArtistName:    a.Artist.Name,
		ArtistBio:     a.Artist.Bio,
		Title:         a.Title,
		ReleaseYear:   a.ReleaseYear,
		Genre:         a.Genre,
		AverageRating: agg.AverageRating,
		ReviewCount:   agg.ReviewCount,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// Pagination metadata shared by the catalog lists
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(total int64, page, pageSize int) Pagination {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

type PaginatedArtistResponse struct {
	Data       []ArtistResponse `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

type PaginatedAlbumResponse struct {
	Data       []AlbumResponse `json:"data"`
	Pagination Pagination      `json:"pagination"`
}
