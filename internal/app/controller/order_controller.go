package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/internal/app/service"
	apperrors "github.com/ikkim/pumpcatalog-backend/internal/errors"
	"github.com/ikkim/pumpcatalog-backend/internal/middleware"
	"github.com/ikkim/pumpcatalog-backend/internal/websocket"
)

type OrderController struct {
	orderService  service.OrderService
	exportService service.ExportService
	hub           *websocket.Hub
	upgrader      gorillaws.Upgrader
}

func NewOrderController(
	orderService service.OrderService,
	exportService service.ExportService,
	hub *websocket.Hub,
	allowedOrigins []string,
) *OrderController {
	return &OrderController{
		orderService:  orderService,
		exportService: exportService,
		hub:           hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// SelectedPartInput is one part snapshot as sent by the client.
type SelectedPartInput struct {
	ID                 *uint             `json:"id"`
	ParentProductID    uint              `json:"parentProductId"`
	ProductName        string            `json:"productName"`
	ProductDrawing     *model.FlexString `json:"productDrawing"`
	Position           int               `json:"position"`
	Name               string            `json:"name"`
	Description        *string           `json:"description"`
	Designation        *string           `json:"designation"`
	Quantity           int               `json:"quantity"`
	Drawing            *int              `json:"drawing"`
	PositioningTop     *int              `json:"positioningTop"`
	PositioningLeft    *int              `json:"positioningLeft"`
	PositioningTop2    *int              `json:"positioningTop2"`
	PositioningLeft2   *int              `json:"positioningLeft2"`
	PositioningTop3    *int              `json:"positioningTop3"`
	PositioningLeft3   *int              `json:"positioningLeft3"`
	PositioningTop4    *int              `json:"positioningTop4"`
	PositioningLeft4   *int              `json:"positioningLeft4"`
	PositioningTop5    *int              `json:"positioningTop5"`
	PositioningLeft5   *int              `json:"positioningLeft5"`
	AlternativeSetName *string           `json:"alternativeSetName"`
}

type CreateOrderRequest struct {
	Parts []SelectedPartInput `json:"parts" binding:"required"`
}

type createOrderResponse struct {
	OrderID   uint      `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message"`
}

func (in SelectedPartInput) toService() service.SelectedPart {
	return service.SelectedPart{
		PartID:          in.ID,
		ParentProductID: in.ParentProductID,
		ProductName:     in.ProductName,
		ProductDrawing:  in.ProductDrawing.Ptr(),
		Position:        in.Position,
		Name:            in.Name,
		Description:     in.Description,
		Designation:     in.Designation,
		Quantity:        in.Quantity,
		Drawing:         in.Drawing,
		Positioning: model.Positioning{
			PositioningTop:   in.PositioningTop,
			PositioningLeft:  in.PositioningLeft,
			PositioningTop2:  in.PositioningTop2,
			PositioningLeft2: in.PositioningLeft2,
			PositioningTop3:  in.PositioningTop3,
			PositioningLeft3: in.PositioningLeft3,
			PositioningTop4:  in.PositioningTop4,
			PositioningLeft4: in.PositioningLeft4,
			PositioningTop5:  in.PositioningTop5,
			PositioningLeft5: in.PositioningLeft5,
		},
		AlternativeSetName: in.AlternativeSetName,
	}
}

// ListOrders returns every order with its parts
// GET /api/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.ListOrders(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch orders", err)
		apperrors.RespondWithStoreError(c, err, "fetch orders")
		return
	}

	log.Info("Orders fetched successfully", map[string]interface{}{
		"count": len(orders),
	})
	respondJSON(c, http.StatusOK, orders)
}

// CreateOrder stores a snapshot of the selected parts
// POST /api/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Request body must be {\"parts\": [...]}")
		return
	}

	parts := make([]service.SelectedPart, len(req.Parts))
	for i, in := range req.Parts {
		parts[i] = in.toService()
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), parts)
	if err != nil {
		log.Error("Failed to create order", err, map[string]interface{}{
			"part_count": len(parts),
		})
		apperrors.RespondWithStoreError(c, err, "create order")
		return
	}

	respondJSON(c, http.StatusCreated, createOrderResponse{
		OrderID:   order.ID,
		CreatedAt: order.CreatedAt,
		Message:   "Order created",
	})
}

// GetOrder returns one order with its parts
// GET /api/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, valid, ok := parseID(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Order id must be an integer")
		return
	}
	if !valid {
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.RespondWithStoreError(c, err, "fetch order")
		return
	}

	respondJSON(c, http.StatusOK, order)
}

// DeleteOrder removes an order and its parts
// DELETE /api/orders/:id
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, valid, ok := parseID(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Order id must be an integer")
		return
	}
	if !valid {
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		return
	}

	if err := ctrl.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to delete order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.RespondWithStoreError(c, err, "delete order")
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportOrder returns the order as a spreadsheet
// GET /api/orders/:id/export
func (ctrl *OrderController) ExportOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, valid, ok := parseID(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Order id must be an integer")
		return
	}
	if !valid {
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		return
	}

	body, err := ctrl.exportService.ExportOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to export order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.OrderExportFailed, "Failed to export order")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="order-%d.xlsx"`, orderID))
	c.Data(http.StatusOK, service.XLSXContentType, body)
}

// Events upgrades to a websocket that streams order events
// GET /api/orders/events
func (ctrl *OrderController) Events(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ctrl.hub.Serve(&websocket.Conn{Conn: conn})
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
