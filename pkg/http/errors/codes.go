package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Game errors
	ErrCodeEmptyThemeSelection = "empty_theme_selection"
	ErrCodeInvalidPhase        = "invalid_phase"
	ErrCodeUnknownTheme        = "unknown_theme"
	ErrCodeUnknownOption       = "unknown_option"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)
