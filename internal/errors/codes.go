package errors

// Error codes returned in the "error" field of failure responses.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map on the code, not the message.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed body
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // non-integer path id

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound     = "ORDER_NOT_FOUND"
	OrderExportFailed = "ORDER_EXPORT_FAILED"
	OrderRateLimited  = "ORDER_RATE_LIMITED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalStoreTimeout  = "INTERNAL_STORE_TIMEOUT"
)
