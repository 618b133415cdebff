package app

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pumpcatalog-backend/config"
	"github.com/ikkim/pumpcatalog-backend/internal/app/controller"
	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/internal/app/repository"
	"github.com/ikkim/pumpcatalog-backend/internal/app/service"
	"github.com/ikkim/pumpcatalog-backend/internal/db"
	"github.com/ikkim/pumpcatalog-backend/internal/middleware"
	"github.com/ikkim/pumpcatalog-backend/internal/router"
	"github.com/ikkim/pumpcatalog-backend/internal/storage"
	"github.com/ikkim/pumpcatalog-backend/internal/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestServer struct {
	Router   *gin.Engine
	DB       *gorm.DB
	Importer service.CatalogImporter
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub()
	go hub.Run(ctx)

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

	cfg := &config.Config{
		Server:   config.ServerConfig{GinMode: gin.TestMode},
		Database: config.DatabaseConfig{QueryTimeout: 5 * time.Second},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	r := router.NewRouter(
		controller.NewCatalogController(catalogService),
		controller.NewOrderController(orderService, exportService, hub, cfg.CORS.AllowedOrigins),
		middleware.NewRateLimiter(ctx, rate.Inf, 1),
		cfg,
	)

	return &TestServer{
		Router:   r.Setup(),
		DB:       testDB,
		Importer: service.NewCatalogImporter(testDB, catalogService),
	}
}

func (s *TestServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func pumpWorkbook(sealName string) *service.CatalogWorkbook {
	drawing := 1200
	return &service.CatalogWorkbook{
		Products: []model.Product{
			{ID: 3, Name: "Pump", Path: "/pump", Src: "pump.png", Width: 600, Drawing: &drawing},
		},
		Parts: map[uint][]model.Part{
			3: {
				{
					PartAttributes: model.PartAttributes{ProductID: 3, Position: 1, Name: sealName, Quantity: 1},
					AlternativeSetRows: []model.PartAlternativeSet{
						{SetName: "EU", Position: 1, Name: sealName + "-EU", Quantity: 2},
					},
				},
				{PartAttributes: model.PartAttributes{ProductID: 3, Position: 2, Name: "Ring", Quantity: 4}},
			},
		},
		Schemes: []model.Scheme{
			{Path: "/pump", Data: datatypes.JSON(`{"areas":[]}`)},
		},
	}
}

func TestIntegration_CatalogToOrderLifecycle(t *testing.T) {
	server := setupIntegrationTest(t)
	ctx := context.Background()

	_, err := server.Importer.Import(ctx, pumpWorkbook("Seal"))
	require.NoError(t, err)

	// 1. Browse parts
	w := server.do(t, http.MethodGet, "/api/products/3/parts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var parts []map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, "Seal", parts[0]["name"])
	assert.Contains(t, parts[0]["alternativeSets"], "EU")
	assert.Empty(t, parts[1]["alternativeSets"])
	sealID := uint(parts[0]["id"].(float64))

	// 2. Place an order referencing the seal in its EU variant
	body := fmt.Sprintf(`{"parts":[{"id":%d,"parentProductId":3,"productName":"Pump","productDrawing":1200,
		"position":1,"name":"Seal-EU","quantity":2,"alternativeSetName":"EU"}]}`, sealID)
	w = server.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &created))
	orderID := uint(created["orderId"].(float64))

	// 3. Re-import with a renamed seal; the order keeps its snapshot
	_, err = server.Importer.Import(ctx, pumpWorkbook("Seal Mk2"))
	require.NoError(t, err)

	w = server.do(t, http.MethodGet, "/api/products/3/parts", "")
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &parts))
	assert.Equal(t, "Seal Mk2", parts[0]["name"])

	w = server.do(t, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	var orders []map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	snapshot := orders[0]["parts"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Seal-EU", snapshot["name"])
	assert.Equal(t, "1200", snapshot["productDrawing"])
	assert.Nil(t, snapshot["partId"])

	// 4. Export, then delete twice
	w = server.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d/export", orderID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = server.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = server.do(t, http.MethodGet, "/api/orders", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestIntegration_SchemesAndProducts(t *testing.T) {
	server := setupIntegrationTest(t)

	_, err := server.Importer.Import(context.Background(), pumpWorkbook("Seal"))
	require.NoError(t, err)

	w := server.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Pump"`)

	w = server.do(t, http.MethodGet, "/api/schemes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"areas":[]`)
}
