package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for the failure taxonomy. Every constructor below wraps one of
// these so callers can branch with errors.Is regardless of the message.
var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidReference = errors.New("invalid reference")
	ErrNotFound         = errors.New("not found")
	ErrStorageWrite     = errors.New("storage write error")
	ErrStorage          = errors.New("storage error")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
)

const (
	CodeValidation       = "validation_error"
	CodeInvalidReference = "invalid_reference"
	CodeNotFound         = "not_found"
	CodeStorageWrite     = "storage_write_error"
	CodeStorage          = "storage_error"
	CodeForbidden        = "forbidden"
	CodeUnauthorized     = "unauthorized"
	CodeInternal         = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func wrap(status int, code string, sentinel error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Status: status, Code: code, Err: fmt.Errorf("%w: %s", sentinel, msg)}
}

func Validation(format string, args ...any) *Error {
	return wrap(http.StatusBadRequest, CodeValidation, ErrValidation, format, args...)
}

func InvalidReference(format string, args ...any) *Error {
	return wrap(http.StatusBadRequest, CodeInvalidReference, ErrInvalidReference, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return wrap(http.StatusNotFound, CodeNotFound, ErrNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return wrap(http.StatusForbidden, CodeForbidden, ErrForbidden, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return wrap(http.StatusUnauthorized, CodeUnauthorized, ErrUnauthorized, format, args...)
}

// StorageWrite reports a failed media write. cause stays reachable via errors.Is/As.
func StorageWrite(cause error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Status: http.StatusInternalServerError,
		Code:   CodeStorageWrite,
		Err:    fmt.Errorf("%w: %s: %w", ErrStorageWrite, msg, cause),
	}
}

// Storage reports a media I/O failure other than absence.
func Storage(cause error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Status: http.StatusInternalServerError,
		Code:   CodeStorage,
		Err:    fmt.Errorf("%w: %s: %w", ErrStorage, msg, cause),
	}
}

// StatusOf returns the HTTP status carried by the first *Error in err's chain.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the stable code carried by the first *Error in err's chain.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return CodeInternal
}

// MessageOf returns the message of the first *Error in err's chain, without
// the context prefixes added while the error travelled up.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
