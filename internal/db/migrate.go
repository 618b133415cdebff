package db

import (
	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.Part{},
		&model.PartAlternativeSet{},
		&model.Order{},
		&model.OrderPart{},
		&model.Scheme{},
	}
}

// Migrate creates or updates the schema.
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
