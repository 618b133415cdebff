package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Error   string `json:"error"`   // code from codes.go
	Message string `json:"message"` // human readable, never the raw cause
}

// RespondWithError writes the failure body.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests, please slow down"
	}
	RespondWithError(c, http.StatusTooManyRequests, OrderRateLimited, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithStoreError maps a store-level failure to a generic 500 body.
// The underlying cause must be logged by the caller; it is not exposed.
func RespondWithStoreError(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	status := http.StatusInternalServerError
	if info.Code == ResourceNotFound {
		status = http.StatusNotFound
	}
	RespondWithError(c, status, info.Code, info.Message)
}
