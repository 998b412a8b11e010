package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"
	ErrCodeInvalidID      = "invalid_question_id"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeUnknownTopic  = "unknown_topic"
	ErrCodeEmptyTopic    = "empty_topic"
	ErrCodeAlreadyExists = "already_exists"

	// WebSocket errors
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError     = "internal_error"
	ErrCodePersistenceFailed = "persistence_failed"
)
