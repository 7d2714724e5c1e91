package service

import (
	"context"
	"errors"
	"fmt"

	"musichub/internal/logging"
	"musichub/internal/microservices/http-api/dto"
	"musichub/internal/microservices/http-api/models"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/middleware/auth"

	"gorm.io/gorm"
)

// CatalogService serves artists and albums. Writes are admin only.
type CatalogService interface {
	ListArtists(ctx context.Context, page, pageSize int) (*dto.PaginatedArtistResponse, error)
	GetArtist(ctx context.Context, id int64) (*dto.ArtistDetailResponse, error)
	CreateArtist(ctx context.Context, caller *auth.Caller, req dto.CreateArtistDTO) (*dto.ArtistResponse, error)
	UpdateArtist(ctx context.Context, caller *auth.Caller, id int64, req dto.CreateArtistDTO) (*dto.ArtistResponse, error)
	DeleteArtist(ctx context.Context, caller *auth.Caller, id int64) error
	ListArtistAlbums(ctx context.Context, artistID int64, page, pageSize int) (*dto.PaginatedAlbumResponse, error)
	ListAlbums(ctx context.Context, filter repository.AlbumFilter, page, pageSize int) (*dto.PaginatedAlbumResponse, error)
	GetAlbum(ctx context.Context, id int64) (*dto.AlbumResponse, error)
	CreateAlbum(ctx context.Context, caller *auth.Caller, req dto.CreateAlbumDTO) (*dto.AlbumResponse, error)
	UpdateAlbum(ctx context.Context, caller *auth.Caller, id int64, req dto.CreateAlbumDTO) (*dto.AlbumResponse, error)
	DeleteAlbum(ctx context.Context, caller *auth.Caller, id int64) error
}

type catalogService struct {
	artistRepo repository.ArtistRepository
	albumRepo  repository.AlbumRepository
	aggregates AggregateService
}

func NewCatalogService(artistRepo repository.ArtistRepository, albumRepo repository.AlbumRepository, aggregates AggregateService) CatalogService {
	return &catalogService{
		artistRepo: artistRepo,
		albumRepo:  albumRepo,
		aggregates: aggregates,
	}
}

func (s *catalogService) ListArtists(ctx context.Context, page, pageSize int) (*dto.PaginatedArtistResponse, error) {
	artists, total, err := s.artistRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ArtistResponse, 0, len(artists))
	for i := range artists {
		data = append(data, *dto.FromModelToArtistResponse(&artists[i]))
	}
	return &dto.PaginatedArtistResponse{
		Data:       data,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil
}

func (s *catalogService) GetArtist(ctx context.Context, id int64) (*dto.ArtistDetailResponse, error) {
	artist, err := s.artistRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtistNotFound
		}
		return nil, err
	}
	return dto.FromModelToArtistDetailResponse(artist), nil
}

func (s *catalogService) CreateArtist(ctx context.Context, caller *auth.Caller, req dto.CreateArtistDTO) (*dto.ArtistResponse, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	artist := req.ToModel()
	if err := s.artistRepo.Create(ctx, &artist); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Int64("artist_id", artist.ID).Str("name", artist.Name).Msg("artist created")
	return dto.FromModelToArtistResponse(&artist), nil
}

// UpdateArtist replaces the artist's name, genre and bio.
func (s *catalogService) UpdateArtist(ctx context.Context, caller *auth.Caller, id int64, req dto.CreateArtistDTO) (*dto.ArtistResponse, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":  req.Name,
		"genre": req.Genre,
		"bio":   req.Bio,
	}
	if err := s.artistRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtistNotFound
		}
		return nil, err
	}

	artist, err := s.artistRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtistNotFound
		}
		return nil, fmt.Errorf("reload artist: %w", err)
	}

	logging.Ctx(ctx).Info().Int64("artist_id", id).Msg("artist updated")
	return dto.FromModelToArtistResponse(artist), nil
}

// DeleteArtist removes the artist with all of its albums, their reviews and likes.
func (s *catalogService) DeleteArtist(ctx context.Context, caller *auth.Caller, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	if err := s.artistRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArtistNotFound
		}
		return err
	}

	logging.Ctx(ctx).Info().Int64("artist_id", id).Msg("artist deleted")
	return nil
}

func (s *catalogService) ListArtistAlbums(ctx context.Context, artistID int64, page, pageSize int) (*dto.PaginatedAlbumResponse, error) {
	exists, err := s.artistRepo.Exists(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrArtistNotFound
	}
	return s.ListAlbums(ctx, repository.AlbumFilter{ArtistID: &artistID}, page, pageSize)
}

// ListAlbums pages through albums matching filter, with live aggregates.
func (s *catalogService) ListAlbums(ctx context.Context, filter repository.AlbumFilter, page, pageSize int) (*dto.PaginatedAlbumResponse, error) {
	albums, total, err := s.albumRepo.GetAll(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(albums))
	for i := range albums {
		ids[i] = albums[i].ID
	}
	aggs, err := s.aggregates.AlbumAggregatesBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := make([]dto.AlbumResponse, 0, len(albums))
	for i := range albums {
		data = append(data, *dto.FromModelToAlbumResponse(&albums[i], aggs[albums[i].ID]))
	}
	return &dto.PaginatedAlbumResponse{
		Data:       data,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil
}

func (s *catalogService) GetAlbum(ctx context.Context, id int64) (*dto.AlbumResponse, error) {
	album, err := s.albumRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}

	agg, err := s.aggregates.AlbumAggregates(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToAlbumResponse(album, *agg), nil
}

func (s *catalogService) CreateAlbum(ctx context.Context, caller *auth.Caller, req dto.CreateAlbumDTO) (*dto.AlbumResponse, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	album := req.ToModel()
	if err := s.albumRepo.Create(ctx, &album); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrArtistMissing
		}
		return nil, fmt.Errorf("create album: %w", err)
	}

	logging.Ctx(ctx).Info().Int64("album_id", album.ID).Int64("artist_id", album.ArtistID).Msg("album created")

	// Reload with artist data
	created, err := s.albumRepo.GetByID(ctx, album.ID)
	if err != nil {
		return nil, fmt.Errorf("reload album: %w", err)
	}
	return dto.FromModelToAlbumResponse(created, models.AlbumAggregates{}), nil
}

// UpdateAlbum replaces the album's fields, including moving it to another artist.
func (s *catalogService) UpdateAlbum(ctx context.Context, caller *auth.Caller, id int64, req dto.CreateAlbumDTO) (*dto.AlbumResponse, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"artist_id":    req.ArtistID,
		"title":        req.Title,
		"release_year": req.ReleaseYear,
		"genre":        req.Genre,
	}
	if err := s.albumRepo.Update(ctx, id, fields); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrAlbumNotFound
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrArtistMissing
		default:
			return nil, fmt.Errorf("update album: %w", err)
		}
	}

	logging.Ctx(ctx).Info().Int64("album_id", id).Int64("artist_id", req.ArtistID).Msg("album updated")
	return s.GetAlbum(ctx, id)
}

// DeleteAlbum removes the album along with its reviews and their likes.
func (s *catalogService) DeleteAlbum(ctx context.Context, caller *auth.Caller, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	if err := s.albumRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlbumNotFound
		}
		return err
	}

	logging.Ctx(ctx).Info().Int64("album_id", id).Msg("album deleted")
	return nil
}

func requireAdmin(caller *auth.Caller) error {
	if caller == nil {
		return ErrLoginRequired
	}
	if !caller.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}
