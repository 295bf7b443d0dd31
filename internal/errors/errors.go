package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a hookcard error code.
type ErrorCode string

const (
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"        // 400
	ErrInvalidToken          ErrorCode = "INVALID_TOKEN"          // 400
	ErrInvalidEndpoint       ErrorCode = "INVALID_ENDPOINT"       // 400
	ErrNotFound              ErrorCode = "NOT_FOUND"              // 404
	ErrFileNotFound          ErrorCode = "FILE_NOT_FOUND"         // 404
	ErrCardInvalid           ErrorCode = "CARD_INVALID"           // 422
	ErrRateLimited           ErrorCode = "RATE_LIMITED"           // 429
	ErrCancelled             ErrorCode = "CANCELLED"              // 499
	ErrGenerationFailed      ErrorCode = "GENERATION_FAILED"      // 502
	ErrMalformedOutput       ErrorCode = "MALFORMED_OUTPUT"       // 502
	ErrDispatchFailed        ErrorCode = "DISPATCH_FAILED"        // upstream status, or 502
	ErrGenerationUnavailable ErrorCode = "GENERATION_UNAVAILABLE" // 503
	ErrInternal              ErrorCode = "INTERNAL"               // 500
)

// StatusClientClosedRequest is the non-standard status used for cancelled requests.
const StatusClientClosedRequest = 499

// HookError represents a structured error with code, status, and details.
type HookError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *HookError {
	return &HookError{
		Code:    ErrInvalidRequest,
		Status:  http.StatusBadRequest,
		Message: msg,
	}
}

// NewInvalidToken creates a 400 error for a share token that cannot be decoded.
func NewInvalidToken(reason string) *HookError {
	return &HookError{
		Code:    ErrInvalidToken,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("invalid share token: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewInvalidEndpoint creates a 400 error for a webhook URL that fails validation.
// The endpoint itself is not echoed back since it embeds a credential.
func NewInvalidEndpoint() *HookError {
	return &HookError{
		Code:    ErrInvalidEndpoint,
		Status:  http.StatusBadRequest,
		Message: "invalid Discord webhook URL",
	}
}

// NewNotFound creates a 404 error for an unknown named resource.
func NewNotFound(kind, name string) *HookError {
	return &HookError{
		Code:    ErrNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, name),
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// NewFileNotFound creates a 404 error for a missing card file.
func NewFileNotFound(path string) *HookError {
	return &HookError{
		Code:    ErrFileNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCardInvalid creates a 422 error when a card breaks destination limits.
func NewCardInvalid(problems []string) *HookError {
	return &HookError{
		Code:    ErrCardInvalid,
		Status:  http.StatusUnprocessableEntity,
		Message: fmt.Sprintf("card rejected by lint: %v", problems),
		Details: map[string]any{"problems": problems},
	}
}

// NewRateLimited creates a 429 error when the generation service throttles us.
func NewRateLimited() *HookError {
	return &HookError{
		Code:    ErrRateLimited,
		Status:  http.StatusTooManyRequests,
		Message: "Rate limited. Try again in a moment.",
	}
}

// NewCancelled creates a 499 error when the caller abandoned the operation.
func NewCancelled(op string) *HookError {
	return &HookError{
		Code:    ErrCancelled,
		Status:  StatusClientClosedRequest,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewGenerationFailed creates a 502 error for a failed generation call.
func NewGenerationFailed(detail string) *HookError {
	msg := "AI generation failed"
	if detail != "" {
		msg = msg + ": " + detail
	}
	return &HookError{
		Code:    ErrGenerationFailed,
		Status:  http.StatusBadGateway,
		Message: msg,
	}
}

// NewMalformedOutput creates a 502 error when generated text is not a card document.
func NewMalformedOutput(detail string) *HookError {
	return &HookError{
		Code:    ErrMalformedOutput,
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("AI returned an unreadable card: %s", detail),
	}
}

// NewGenerationUnavailable creates a 503 error when the generation service
// is not configured or rejects our credentials.
func NewGenerationUnavailable(detail string) *HookError {
	msg := "API key not configured"
	if detail != "" {
		msg = detail
	}
	return &HookError{
		Code:    ErrGenerationUnavailable,
		Status:  http.StatusServiceUnavailable,
		Message: msg,
	}
}

// NewDispatchRejected creates an error carrying the webhook's own status and body.
func NewDispatchRejected(status int, body string) *HookError {
	httpStatus := status
	if httpStatus < 400 || httpStatus > 599 {
		httpStatus = http.StatusBadGateway
	}
	return &HookError{
		Code:    ErrDispatchFailed,
		Status:  httpStatus,
		Message: fmt.Sprintf("Discord API error: %s", body),
		Details: map[string]any{"upstream_status": status, "upstream_body": body},
	}
}

// NewDispatchFailed creates a 502 error when the webhook could not be reached.
func NewDispatchFailed(err error) *HookError {
	msg := "send failed"
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &HookError{
		Code:    ErrDispatchFailed,
		Status:  http.StatusBadGateway,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HookError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HookError{
		Code:    ErrInternal,
		Status:  http.StatusInternalServerError,
		Message: msg,
	}
}

// As extracts a HookError from err, following wrapped errors.
func As(err error) (*HookError, bool) {
	var hErr *HookError
	if stderrors.As(err, &hErr) {
		return hErr, true
	}
	return nil, false
}

// Is checks if an error is (or wraps) a HookError with the given code.
func Is(err error, code ErrorCode) bool {
	if hErr, ok := As(err); ok {
		return hErr.Code == code
	}
	return false
}
