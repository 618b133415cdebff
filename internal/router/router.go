package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/pumpcatalog-backend/config"
	"github.com/ikkim/pumpcatalog-backend/internal/app/controller"
	"github.com/ikkim/pumpcatalog-backend/internal/middleware"
)

type Router struct {
	catalogController *controller.CatalogController
	orderController   *controller.OrderController
	orderLimiter      *middleware.RateLimiter
	config            *config.Config
}

func NewRouter(
	catalogController *controller.CatalogController,
	orderController *controller.OrderController,
	orderLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		catalogController: catalogController,
		orderController:   orderController,
		orderLimiter:      orderLimiter,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Pump catalog API is running",
		})
	})

	api := router.Group("/api")

	// The event stream is long-lived and must stay outside the query deadline.
	api.GET("/orders/events", r.orderController.Events)

	queries := api.Group("", middleware.QueryTimeout(r.config.Database.QueryTimeout))
	{
		queries.GET("/products", r.catalogController.ListProducts)
		queries.GET("/products/:id/parts", r.catalogController.ListParts)
		queries.GET("/schemes", r.catalogController.ListSchemes)

		orders := queries.Group("/orders")
		{
			orders.GET("", r.orderController.ListOrders)
			orders.POST("", r.orderLimiter.Middleware(), r.orderController.CreateOrder)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.DELETE("/:id", r.orderController.DeleteOrder)
			orders.GET("/:id/export", r.orderController.ExportOrder)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			break
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
