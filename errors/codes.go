package errors

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Transient/adversarial conditions
const (
	// ErrCodeRateLimited indicates the client exceeded the attempt cap.
	// Distinguishable from authentication failure so legitimate clients can
	// back off; the reset time travels in the details.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeServiceUnavailable indicates a dependency is temporarily down.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeWeakPassword indicates the password failed strength validation.
	ErrCodeWeakPassword ErrorCode = "WEAK_PASSWORD"
)

// Authentication/Authorization errors
const (
	// ErrCodeUnauthorized indicates authentication is required or failed.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden indicates the principal lacks the required role.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeInvalidToken indicates the token never validated: forged,
	// expired, malformed, or wrong issuer/audience — deliberately one code.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	// ErrCodeTokenRevoked indicates a previously valid token that was
	// deliberately revoked. A different state from never-valid.
	ErrCodeTokenRevoked ErrorCode = "TOKEN_REVOKED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeEmailDelivery indicates the verification email could not be sent.
	ErrCodeEmailDelivery ErrorCode = "EMAIL_DELIVERY_FAILED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeRateLimited:        true,
	ErrCodeServiceUnavailable: true,
	ErrCodeEmailDelivery:      true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
