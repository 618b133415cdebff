package repository

import (
	"context"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SchemeRepository interface {
	FindAll(ctx context.Context) ([]model.Scheme, error)
	Upsert(ctx context.Context, schemes []model.Scheme) error
}

type schemeRepository struct {
	db *gorm.DB
}

func NewSchemeRepository(db *gorm.DB) SchemeRepository {
	return &schemeRepository{db: db}
}

func (r *schemeRepository) FindAll(ctx context.Context) ([]model.Scheme, error) {
	schemes := []model.Scheme{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&schemes).Error; err != nil {
		logger.Error("Failed to fetch schemes", err)
		return nil, err
	}
	return schemes, nil
}

// Upsert keys schemes by path and replaces their data.
func (r *schemeRepository) Upsert(ctx context.Context, schemes []model.Scheme) error {
	if len(schemes) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"data"}),
		}).
		Create(&schemes).Error
	if err != nil {
		logger.Error("Failed to upsert schemes", err, map[string]interface{}{
			"count": len(schemes),
		})
		return err
	}
	return nil
}
