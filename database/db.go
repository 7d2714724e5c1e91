// Package database opens the PostgreSQL pool and keeps the schema in sync with
// the models.
package database

import (
	"context"
	"fmt"
	"time"

	"musichub/internal/config"
	"musichub/internal/logging"
	"musichub/internal/microservices/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the pool, applies the pool limits from cfg and verifies the
// connection. Constraint violations come back as gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated.
func Connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(200 * time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		// close the pool if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Info().
		Int("max_open_conns", cfg.DBMaxOpenConns).
		Int("max_idle_conns", cfg.DBMaxIdleConns).
		Msg("Connected to the database successfully")
	return db, nil
}

// Migrate creates or updates the tables, the unique indexes backing review and
// like uniqueness, the rating check, and the ON DELETE CASCADE foreign keys.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Artist{},
		&models.Album{},
		&models.Review{},
		&models.Like{},
	)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logging.Info().Msg("Database migrations applied successfully")
	return nil
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
