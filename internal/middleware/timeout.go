package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// QueryTimeout bounds the request context handed to the store. A zero
// duration disables it.
func QueryTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
