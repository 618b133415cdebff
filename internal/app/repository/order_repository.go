package repository

import (
	"context"
	"time"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderPartBatchSize bounds the rows per multi-row INSERT.
const orderPartBatchSize = 100

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *model.Order) error
	CreateParts(ctx context.Context, parts []model.OrderPart) error
	ExistsForUpdate(ctx context.Context, id uint) (bool, error)
	DeleteParts(ctx context.Context, orderID uint) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
	FindAll(ctx context.Context) ([]model.Order, error)
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindParts(ctx context.Context, orderID uint) ([]model.OrderPart, error)
	FindCreatedSince(ctx context.Context, since time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

// Create inserts the order header only; parts go through CreateParts.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err)
		return err
	}

	logger.Debug("Order header created in database", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

func (r *orderRepository) CreateParts(ctx context.Context, parts []model.OrderPart) error {
	if len(parts) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&parts, orderPartBatchSize).Error; err != nil {
		logger.Error("Failed to insert order parts", err, map[string]interface{}{
			"order_id":   parts[0].OrderID,
			"part_count": len(parts),
		})
		return err
	}
	return nil
}

// ExistsForUpdate checks for the order and locks its row where the engine
// supports it.
func (r *orderRepository) ExistsForUpdate(ctx context.Context, id uint) (bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		logger.Error("Failed to check order existence", err, map[string]interface{}{
			"order_id": id,
		})
		return false, err
	}
	return len(ids) > 0, nil
}

func (r *orderRepository) DeleteParts(ctx context.Context, orderID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderPart{})
	if result.Error != nil {
		logger.Error("Failed to delete order parts", result.Error, map[string]interface{}{
			"order_id": orderID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *orderRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.Order{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete order", result.Error, map[string]interface{}{
			"order_id": id,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindAll returns order headers without parts, oldest first.
func (r *orderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	orders := []model.Order{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&orders).Error; err != nil {
		logger.Error("Failed to fetch orders", err)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to fetch order", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindParts(ctx context.Context, orderID uint) ([]model.OrderPart, error) {
	parts := []model.OrderPart{}
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&parts).Error; err != nil {
		logger.Error("Failed to fetch order parts", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return parts, nil
}

func (r *orderRepository) FindCreatedSince(ctx context.Context, since time.Time) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.db.WithContext(ctx).
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("created_at >= ?", since).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to fetch orders for archive", err, map[string]interface{}{
			"since": since,
		})
		return nil, err
	}
	return orders, nil
}
