package repository

import (
	"context"
	"fmt"
	"strings"

	"musichub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlbumFilter narrows GetAll. Genre matches case-insensitively anywhere in the
// album's genre; empty fields are not applied.
type AlbumFilter struct {
	ArtistID *int64
	Genre    string
}

type AlbumRepository interface {
	GetAll(ctx context.Context, filter AlbumFilter, page, pageSize int) ([]models.Album, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Album, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, album *models.Album) error
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type albumRepository struct {
	db *gorm.DB
}

func NewAlbumRepository(db *gorm.DB) AlbumRepository {
	return &albumRepository{db: db}
}

func (r *albumRepository) GetAll(ctx context.Context, filter AlbumFilter, page, pageSize int) ([]models.Album, int64, error) {
	var list []models.Album
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Album{})
	if filter.ArtistID != nil {
		query = query.Where("artist_id = ?", *filter.ArtistID)
	}
	if filter.Genre != "" {
		query = query.Where("genre ILIKE ?", "%"+escapeLike(filter.Genre)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count albums: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.
		Preload("Artist").
		Order("id asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list albums: %w", err)
	}

	return list, total, nil
}

func (r *albumRepository) GetByID(ctx context.Context, id int64) (*models.Album, error) {
	var a models.Album
	if err := r.db.WithContext(ctx).Preload("Artist").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Exists is the only catalog read the review ledger needs.
func (r *albumRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Album{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("album exists: %w", err)
	}
	return count > 0, nil
}

// Create inserts an album. A missing artist comes back as ErrForeignKey.
func (r *albumRepository) Create(ctx context.Context, a *models.Album) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Update applies fields to the album. Returns gorm.ErrRecordNotFound when the
// album does not exist and ErrForeignKey when artist_id points nowhere.
func (r *albumRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Album{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the album; reviews and their likes go with it through ON DELETE CASCADE.
func (r *albumRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Album{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete album: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
