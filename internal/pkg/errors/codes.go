package errors

// Error code constants. Codes are stable strings that admin UI and tests
// match on; messages may evolve.

// Event error codes.
const (
	CodeEventNotFound = "EVENT_NOT_FOUND"
	CodeEventNotOpen  = "EVENT_NOT_OPEN"
	CodeSlugExhausted = "SLUG_EXHAUSTED"
)

// Registration error codes.
const (
	CodeRegistrationNotFound  = "REGISTRATION_NOT_FOUND"
	CodeDuplicateRegistration = "DUPLICATE_REGISTRATION"
	CodeInvalidStatus         = "INVALID_STATUS"
)

// User error codes.
const (
	CodeUserNotFound   = "USER_NOT_FOUND"
	CodeDuplicateEmail = "DUPLICATE_EMAIL"
	CodeSelfDelete     = "SELF_DELETE_FORBIDDEN"
)

// Auth error codes.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// Validation and generic codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInternal         = "INTERNAL_ERROR"
)
