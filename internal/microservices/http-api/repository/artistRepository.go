package repository

import (
	"context"
	"fmt"

	"musichub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArtistRepository interface {
	GetAll(ctx context.Context, page, pageSize int) ([]models.Artist, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Artist, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, artist *models.Artist) error
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type artistRepository struct {
	db *gorm.DB
}

func NewArtistRepository(db *gorm.DB) ArtistRepository {
	return &artistRepository{db: db}
}

func (r *artistRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Artist, int64, error) {
	var list []models.Artist
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Artist{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count artists: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).
		Order("name asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list artists: %w", err)
	}
	return list, total, nil
}

// GetByID returns the artist with albums, oldest release first.
func (r *artistRepository) GetByID(ctx context.Context, id int64) (*models.Artist, error) {
	var a models.Artist
	err := r.db.WithContext(ctx).
		Preload("Albums", func(db *gorm.DB) *gorm.DB {
			return db.Order("release_year asc, id asc")
		}).
		First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *artistRepository) Create(ctx context.Context, a *models.Artist) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return fmt.Errorf("create artist: %w", err)
	}
	return nil
}

func (r *artistRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Artist{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("artist exists: %w", err)
	}
	return count > 0, nil
}

// Update applies fields to the artist. Returns gorm.ErrRecordNotFound when no row matched.
func (r *artistRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Artist{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update artist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the artist. Albums, their reviews and the reviews' likes
// follow through ON DELETE CASCADE.
func (r *artistRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Artist{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete artist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
