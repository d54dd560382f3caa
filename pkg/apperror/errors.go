package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Transactions (TXN) ----

func ErrTransactionNotFound(id string) *AppError {
	return New("TXN_001", fmt.Sprintf("transaction %s not found", id), http.StatusNotFound)
}

// ErrDuplicateTransactionID signals the store's uniqueness constraint fired
// at creation time. Retryable: the caller regenerates the id and tries again.
func ErrDuplicateTransactionID(id string) *AppError {
	return New("TXN_002", fmt.Sprintf("transaction id %s already exists", id), http.StatusConflict)
}

// ErrConflictRejected marks an attempt to overwrite a terminal state with a
// later conflicting report. Logged as an anomaly for manual audit; the
// external caller gets an acknowledgement, not a failure.
func ErrConflictRejected(id string) *AppError {
	return New("TXN_003", fmt.Sprintf("transaction %s is already in a terminal state", id), http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New("TXN_004", "Invalid amount", http.StatusBadRequest)
}

func ErrUnknownTarget(kind string) *AppError {
	return New("TXN_005", fmt.Sprintf("unknown target type %q", kind), http.StatusBadRequest)
}

// ---- Gateway (GWY) ----

// ErrGatewayFailure propagates a failed or malformed gateway call to the
// checkout-initiation caller, who retries or surfaces failure to the user.
func ErrGatewayFailure(err error) *AppError {
	return Wrap("GWY_001", "Payment gateway call failed", http.StatusBadGateway, err)
}

// ---- Side effects (EFF) ----

// ErrSideEffect records a downstream action failing after a successful state
// transition. The transition is never rolled back; the sweep retries the kind.
func ErrSideEffect(kind string, err error) *AppError {
	return Wrap("EFF_001", fmt.Sprintf("side effect %s failed", kind), http.StatusInternalServerError, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a TXN_004-style validation error.
func Validation(message string) *AppError {
	return New("TXN_004", message, http.StatusBadRequest)
}
