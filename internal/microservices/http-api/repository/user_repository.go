package repository

import (
	"context"

	"musichub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository keeps the local mirror of identity provider accounts.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert inserts the user or refreshes the username if the id already exists.
// An empty username leaves the stored one in place.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	columns := []string{"updated_at"}
	if user.Username != "" {
		columns = append(columns, "username")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		// never hand back a zero-value user on error
		return nil, err
	}
	return &user, nil
}
