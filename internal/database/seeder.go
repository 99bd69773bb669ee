package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"livestock-farm-api-server/config"
	"livestock-farm-api-server/internal/auth"
	"livestock-farm-api-server/internal/models"
)

// SeedAdmin creates the administrator account on first start. Seeding is
// skipped when the account already exists or no admin password is configured.
func SeedAdmin(ctx context.Context, db *mongo.Database, cfg config.AdminConfig, logger *zap.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		logger.Info("admin seeding skipped, no credentials configured")
		return nil
	}

	users := db.Collection(CollUsers)
	count, err := users.CountDocuments(ctx, bson.M{"email": cfg.Email})
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("admin already exists, seeding skipped")
		return nil
	}

	hashed, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        cfg.Email,
		Name:         cfg.Name,
		PasswordHash: hashed,
		Role:         "admin",
		Status:       "active",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if _, err := users.InsertOne(ctx, admin); err != nil {
		return err
	}

	logger.Info("admin seeded", zap.String("email", cfg.Email))
	return nil
}
