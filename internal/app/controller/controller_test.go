package controller

import (
	"database/sql"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/internal/app/service"
	"github.com/ikkim/pumpcatalog-backend/internal/db"
	"github.com/ikkim/pumpcatalog-backend/internal/storage"
	"github.com/ikkim/pumpcatalog-backend/internal/websocket"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	hub     *websocket.Hub
	catalog *CatalogController
	orders  *OrderController
}

func setupControllerTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	hub := websocket.NewHub()

	orderRepo := repository.NewOrderRepository(testDB)
	catalogService := service.NewCatalogService(
		repository.NewProductRepository(testDB),
		repository.NewPartRepository(testDB),
		repository.NewSchemeRepository(testDB),
		nil,
		time.Minute,
	)
	orderService := service.NewOrderService(orderRepo, testDB, sql.LevelDefault, hub)
	exportService := service.NewExportService(orderRepo, nil, storage.ObjectKey)

	gin.SetMode(gin.TestMode)
	return &testEnv{
		db:      testDB,
		router:  gin.New(),
		hub:     hub,
		catalog: NewCatalogController(catalogService),
		orders:  NewOrderController(orderService, exportService, hub, []string{"*"}),
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
