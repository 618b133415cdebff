package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/pumpcatalog-backend/internal/errors"
	"github.com/ikkim/pumpcatalog-backend/internal/middleware"
	"github.com/ikkim/pumpcatalog-backend/pkg/casing"
)

// responseCasing keeps alternative-set names as entered and passes scheme
// data through untouched.
var responseCasing = casing.Options{
	PreserveKeys: casing.Keys("alternativeSets"),
	Opaque:       casing.Keys("data"),
}

// respondJSON writes payload with every key in camelCase.
func respondJSON(c *gin.Context, status int, payload interface{}) {
	value, err := casing.ToValue(payload)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to encode response", err)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(status, casing.Normalize(value, responseCasing))
}

// parseID reads a positive integer path parameter. ok is false when the
// value is not an integer at all; a non-positive integer parses but can
// never match a row.
func parseID(c *gin.Context, name string) (id uint, valid bool, ok bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, false, false
	}
	if n <= 0 {
		return 0, false, true
	}
	return uint(n), true, true
}
