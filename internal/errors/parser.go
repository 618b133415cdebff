package errors

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a client-safe code and message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError classifies a store error without leaking driver details.
// context names the failed operation, e.g. "create order".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: "Resource not found"}
	}
	if isTimeout(err) {
		return ErrorInfo{Code: InternalStoreTimeout, Message: "The database did not respond in time"}
	}

	lower := strings.ToLower(err.Error())

	// Unique violations: postgres 23505, mysql 1062, sqlite UNIQUE.
	if strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique constraint") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "The resource already exists"}
	}
	// Foreign key violations: postgres 23503, mysql 1452/1451, sqlite FOREIGN KEY.
	if strings.Contains(lower, "foreign key") {
		return ErrorInfo{Code: ResourceConflict, Message: "The request references data that does not exist"}
	}
	if strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "bad connection") ||
		strings.Contains(lower, "broken pipe") ||
		strings.Contains(lower, "no such host") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "The database is unavailable"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func defaultMessage(context string) string {
	if context == "" {
		return "Internal server error"
	}
	return "Failed to " + context
}
