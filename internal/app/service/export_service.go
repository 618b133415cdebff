package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var orderSheetHeader = []interface{}{
	"order_id", "created_at", "part_id", "parent_product_id", "product_name", "product_drawing",
	"position", "name", "description", "designation", "quantity", "drawing", "alternative_set_name",
	"positioning_top", "positioning_left", "positioning_top2", "positioning_left2",
	"positioning_top3", "positioning_left3", "positioning_top4", "positioning_left4",
	"positioning_top5", "positioning_left5",
}

// ArchiveStore receives finished workbooks.
type ArchiveStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// ArchiveResult describes one archive run. Archived maps each uploaded
// order id to its created_at.
type ArchiveResult struct {
	Orders   int                `json:"orders"`
	Key      string             `json:"key,omitempty"`
	URL      string             `json:"url,omitempty"`
	Archived map[uint]time.Time `json:"-"`
}

type ExportService interface {
	ExportOrder(ctx context.Context, id uint) ([]byte, error)
	ArchiveOrders(ctx context.Context, since time.Time, skip map[uint]time.Time) (*ArchiveResult, error)
}

type exportService struct {
	orderRepo repository.OrderRepository
	store     ArchiveStore
	keyFunc   func(folder, name string) string
}

// NewExportService builds the service. store may be nil, in which case
// ArchiveOrders fails.
func NewExportService(orderRepo repository.OrderRepository, store ArchiveStore, keyFunc func(folder, name string) string) ExportService {
	return &exportService{
		orderRepo: orderRepo,
		store:     store,
		keyFunc:   keyFunc,
	}
}

func (s *exportService) ExportOrder(ctx context.Context, id uint) ([]byte, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return buildOrderWorkbook([]model.Order{*order})
}

// ArchiveOrders uploads one workbook with every order created at or after
// since, leaving out ids present in skip.
func (s *exportService) ArchiveOrders(ctx context.Context, since time.Time, skip map[uint]time.Time) (*ArchiveResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("archive storage is not configured")
	}

	found, err := s.orderRepo.FindCreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(found))
	archived := make(map[uint]time.Time, len(found))
	for _, order := range found {
		if _, done := skip[order.ID]; done {
			continue
		}
		orders = append(orders, order)
		archived[order.ID] = order.CreatedAt
	}
	if len(orders) == 0 {
		logger.Info("No orders to archive", map[string]interface{}{
			"since":   since,
			"skipped": len(found),
		})
		return &ArchiveResult{Archived: archived}, nil
	}

	body, err := buildOrderWorkbook(orders)
	if err != nil {
		return nil, err
	}

	key := s.keyFunc("orders", "orders.xlsx")
	url, err := s.store.Upload(ctx, key, XLSXContentType, body)
	if err != nil {
		logger.Error("Failed to upload order archive", err, map[string]interface{}{
			"key": key,
		})
		return nil, err
	}

	logger.Info("Orders archived", map[string]interface{}{
		"orders": len(orders),
		"key":    key,
	})
	return &ArchiveResult{Orders: len(orders), Key: key, URL: url, Archived: archived}, nil
}

// buildOrderWorkbook writes one row per order part on a single sheet.
func buildOrderWorkbook(orders []model.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &orderSheetHeader); err != nil {
		return nil, err
	}

	row := 2
	for _, order := range orders {
		for _, p := range order.Parts {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			values := []interface{}{
				order.ID, order.CreatedAt.UTC().Format(time.RFC3339), cellValue(p.PartID), p.ParentProductID,
				p.ProductName, cellValue(p.ProductDrawing), p.Position, p.Name, cellValue(p.Description),
				cellValue(p.Designation), p.Quantity, cellValue(p.Drawing), cellValue(p.AlternativeSetName),
				cellValue(p.PositioningTop), cellValue(p.PositioningLeft),
				cellValue(p.PositioningTop2), cellValue(p.PositioningLeft2),
				cellValue(p.PositioningTop3), cellValue(p.PositioningLeft3),
				cellValue(p.PositioningTop4), cellValue(p.PositioningLeft4),
				cellValue(p.PositioningTop5), cellValue(p.PositioningLeft5),
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, err
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue turns nil pointers into empty cells.
func cellValue[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
