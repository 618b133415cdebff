package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// SelectedPart is the client's snapshot of one part at order time. Every
// field is copied to the order verbatim; nothing is re-read from the
// catalog.
type SelectedPart struct {
	PartID             *uint
	ParentProductID    uint
	ProductName        string
	ProductDrawing     *string
	Position           int
	Name               string
	Description        *string
	Designation        *string
	Quantity           int
	Drawing            *int
	Positioning        model.Positioning
	AlternativeSetName *string
}

// OrderEventPublisher receives notifications after a change is committed.
type OrderEventPublisher interface {
	PublishOrderEvent(event model.OrderEvent)
}

type OrderService interface {
	CreateOrder(ctx context.Context, parts []SelectedPart) (*model.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	db        *gorm.DB
	isolation sql.IsolationLevel
	events    OrderEventPublisher
}

// NewOrderService builds the service. events may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	db *gorm.DB,
	isolation sql.IsolationLevel,
	events OrderEventPublisher,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		db:        db,
		isolation: isolation,
		events:    events,
	}
}

func (s *orderService) begin(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: s.isolation})
}

func (s *orderService) CreateOrder(ctx context.Context, parts []SelectedPart) (*model.Order, error) {
	if len(parts) == 0 {
		logger.Warn("Creating order with no parts")
	}

	tx := s.begin(ctx)
	if tx.Error != nil {
		logger.Error("Failed to begin order transaction", tx.Error)
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	repo := s.orderRepo.WithTx(tx)

	order := &model.Order{CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, order); err != nil {
		tx.Rollback()
		return nil, err
	}

	rows := make([]model.OrderPart, len(parts))
	for i, p := range parts {
		rows[i] = snapshotOf(order.ID, p)
	}

	if err := repo.CreateParts(ctx, rows); err != nil {
		tx.Rollback()
		logger.Error("Order creation rolled back", err, map[string]interface{}{
			"part_count": len(parts),
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, err
	}

	order.Parts = rows
	logger.Info("Order created successfully", map[string]interface{}{
		"order_id":   order.ID,
		"part_count": len(rows),
	})

	s.publish(model.OrderEvent{
		Type:      model.OrderEventCreated,
		OrderID:   order.ID,
		PartCount: len(rows),
		At:        order.CreatedAt,
	})
	return order, nil
}

func snapshotOf(orderID uint, p SelectedPart) model.OrderPart {
	return model.OrderPart{
		OrderID:            orderID,
		PartID:             p.PartID,
		ParentProductID:    p.ParentProductID,
		ProductName:        p.ProductName,
		ProductDrawing:     p.ProductDrawing,
		Position:           p.Position,
		Name:               p.Name,
		Description:        p.Description,
		Designation:        p.Designation,
		Quantity:           p.Quantity,
		Drawing:            p.Drawing,
		Positioning:        p.Positioning,
		AlternativeSetName: p.AlternativeSetName,
	}
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint) error {
	tx := s.begin(ctx)
	if tx.Error != nil {
		logger.Error("Failed to begin order delete transaction", tx.Error)
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order deletion, rolling back", fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	repo := s.orderRepo.WithTx(tx)

	exists, err := repo.ExistsForUpdate(ctx, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if !exists {
		tx.Rollback()
		logger.Warn("Order not found for deletion", map[string]interface{}{
			"order_id": id,
		})
		return ErrOrderNotFound
	}

	removedParts, err := repo.DeleteParts(ctx, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := repo.Delete(ctx, id); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order delete transaction", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}

	logger.Info("Order deleted successfully", map[string]interface{}{
		"order_id":      id,
		"removed_parts": removedParts,
	})

	s.publish(model.OrderEvent{
		Type:    model.OrderEventDeleted,
		OrderID: id,
		At:      time.Now().UTC(),
	})
	return nil
}

// ListOrders loads every header, then each order's parts with its own
// query. One round trip per order; fine for the expected volume.
func (s *orderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		parts, err := s.orderRepo.FindParts(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Parts = parts
	}

	logger.Debug("Orders fetched successfully", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) publish(event model.OrderEvent) {
	if s.events == nil {
		return
	}
	s.events.PublishOrderEvent(event)
}
