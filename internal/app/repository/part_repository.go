package repository

import (
	"context"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"gorm.io/gorm"
)

const partRowColumns = `p.id, p.product_id, p.position, p.name, p.description, p.designation, p.quantity, p.drawing,
	p.positioning_top, p.positioning_left, p.positioning_top2, p.positioning_left2,
	p.positioning_top3, p.positioning_left3, p.positioning_top4, p.positioning_left4,
	p.positioning_top5, p.positioning_left5,
	a.set_name, a.position AS alt_position, a.name AS alt_name, a.description AS alt_description,
	a.designation AS alt_designation, a.quantity AS alt_quantity, a.drawing AS alt_drawing`

type PartRepository interface {
	FindRowsByProductID(ctx context.Context, productID uint) ([]model.PartRow, error)
	ReplaceForProduct(ctx context.Context, productID uint, parts []model.Part) error
}

type partRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepository{db: db}
}

// FindRowsByProductID returns the flattened parts/alternative-set join.
// Rows of one part are adjacent; parts come in position order.
func (r *partRepository) FindRowsByProductID(ctx context.Context, productID uint) ([]model.PartRow, error) {
	rows := []model.PartRow{}
	err := r.db.WithContext(ctx).
		Table("parts AS p").
		Select(partRowColumns).
		Joins("LEFT JOIN part_alternative_sets AS a ON a.part_id = p.id").
		Where("p.product_id = ?", productID).
		Order("p.position ASC, p.id ASC, a.id ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to fetch part rows", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return rows, nil
}

// ReplaceForProduct drops the product's parts and inserts the given ones
// with their alternative sets. Order snapshots keep their copy; their
// part_id goes NULL.
func (r *partRepository) ReplaceForProduct(ctx context.Context, productID uint, parts []model.Part) error {
	db := r.db.WithContext(ctx)

	partIDs := db.Model(&model.Part{}).Select("id").Where("product_id = ?", productID)
	if err := db.Model(&model.OrderPart{}).Where("part_id IN (?)", partIDs).Update("part_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("part_id IN (?)", partIDs).Delete(&model.PartAlternativeSet{}).Error; err != nil {
		return err
	}
	if err := db.Where("product_id = ?", productID).Delete(&model.Part{}).Error; err != nil {
		return err
	}

	for i := range parts {
		parts[i].ProductID = productID
	}
	if len(parts) == 0 {
		return nil
	}
	if err := db.Create(&parts).Error; err != nil {
		logger.Error("Failed to insert parts", err, map[string]interface{}{
			"product_id": productID,
			"count":      len(parts),
		})
		return err
	}
	return nil
}
