package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/pumpcatalog-backend/internal/app/model"
	"github.com/ikkim/pumpcatalog-backend/internal/app/service"
	apperrors "github.com/ikkim/pumpcatalog-backend/internal/errors"
	"github.com/ikkim/pumpcatalog-backend/internal/middleware"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// ListProducts returns every product
// GET /api/products
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch products", err)
		apperrors.RespondWithStoreError(c, err, "fetch products")
		return
	}

	respondJSON(c, http.StatusOK, products)
}

// ListParts returns a product's parts with their alternative sets
// GET /api/products/:id/parts
func (ctrl *CatalogController) ListParts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, valid, ok := parseID(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Product id must be an integer")
		return
	}
	if !valid {
		respondJSON(c, http.StatusOK, []model.Part{})
		return
	}

	parts, err := ctrl.catalogService.ListParts(c.Request.Context(), productID)
	if err != nil {
		log.Error("Failed to fetch parts", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.RespondWithStoreError(c, err, "fetch parts")
		return
	}

	respondJSON(c, http.StatusOK, parts)
}

// ListSchemes returns diagram metadata
// GET /api/schemes
func (ctrl *CatalogController) ListSchemes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	schemes, err := ctrl.catalogService.ListSchemes(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch schemes", err)
		apperrors.RespondWithStoreError(c, err, "fetch schemes")
		return
	}

	respondJSON(c, http.StatusOK, schemes)
}
