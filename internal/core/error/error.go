package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is the fallback when the cause is not user-facing.
	SystemErrorMessage = "internal error"
	// StorageErrorMessage describes failures of the durable cart storage.
	StorageErrorMessage = "cart storage operation failed"
	// StorageNotFoundMessage describes a missing storage key.
	StorageNotFoundMessage = "cart storage key not found"
	// RemoteErrorMessage describes a non-2xx reply from the shop server.
	RemoteErrorMessage = "shop server request failed"
)

// AppError wraps an underlying error with an HTTP-style status and a safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether the wrapped error matches target.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapHTTP turns a non-2xx reply from the shop server into an AppError.
// It returns nil for 2xx statuses.
func WrapHTTP(method, path string, status int) error {
	if status >= 200 && status < 300 {
		return nil
	}
	return &AppError{
		Err:     fmt.Errorf("%s %s: unexpected status %d", method, path, status),
		Status:  status,
		Message: RemoteErrorMessage,
	}
}

// StatusOf returns the status carried by the first AppError in err's chain,
// or 500 when there is none.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
