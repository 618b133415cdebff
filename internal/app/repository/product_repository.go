package repository

import (
	"context"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	Upsert(ctx context.Context, products []model.Product) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to fetch products", err)
		return nil, err
	}

	logger.Debug("Products fetched from database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

// Upsert inserts products by id, overwriting existing rows.
func (r *productRepository) Upsert(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"src", "path", "width", "name", "drawing", "head"}),
		}).
		Create(&products).Error
	if err != nil {
		logger.Error("Failed to upsert products", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}
	return nil
}
