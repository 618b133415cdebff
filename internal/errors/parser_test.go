package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{"nil", nil, InternalServerError, "Failed to create order"},
		{"not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), ResourceNotFound, "Resource not found"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), InternalStoreTimeout, "The database did not respond in time"},
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "idx_schemes_path" (SQLSTATE 23505)`), ResourceAlreadyExists, "The resource already exists"},
		{"mysql duplicate", errors.New("Error 1062 (23000): Duplicate entry '/a' for key 'idx_schemes_path'"), ResourceAlreadyExists, "The resource already exists"},
		{"sqlite fk", errors.New("FOREIGN KEY constraint failed"), ResourceConflict, "The request references data that does not exist"},
		{"connection", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), InternalDatabaseError, "The database is unavailable"},
		{"other", errors.New("syntax error at or near \"FROM\""), InternalServerError, "Failed to create order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, "create order")
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, tt.wantMsg, info.Message)
		})
	}
}

func TestRespondWithStoreError_HidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithStoreError(c, errors.New(`pq: relation "order_parts" does not exist`), "list orders")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"INTERNAL_SERVER_ERROR","message":"Failed to list orders"}`, w.Body.String())
}

func TestTooManyRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	TooManyRequests(c, "")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), OrderRateLimited)
}
