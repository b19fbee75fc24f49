package errprocess

import (
	"errors"
	"fmt"

	"agri_market_service/pkg/logger"
)

// Kind classifies an error for transport-level mapping.
type Kind int

const (
	// KindUnknown unclassified error
	KindUnknown Kind = iota
	// KindValidation rejected before any side effect
	KindValidation
	// KindNotFound addressed resource does not exist
	KindNotFound
	// KindPersistence store unreachable or write failed
	KindPersistence
	// KindIntegrity invariant violated, treated as a bug
	KindIntegrity
	// KindUnauthorized caller identity rejected
	KindUnauthorized
)

// AppError carries a Kind alongside the message and cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// E build an AppError with the given kind
func E(kind Kind, msg string, cause error) error {
	return &AppError{Kind: kind, Message: msg, Err: cause}
}

// Validation build a validation error
func Validation(msg string) error {
	return &AppError{Kind: KindValidation, Message: msg}
}

// NotFound build a not-found error
func NotFound(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

// Persistence build a persistence error wrapping the store failure
func Persistence(msg string, cause error) error {
	return &AppError{Kind: KindPersistence, Message: msg, Err: cause}
}

// Integrity build an integrity error. These are invariant bugs, so
// they are logged immediately at error level.
func Integrity(msg string) error {
	logger.Log.Error("integrity violation: " + msg)
	return &AppError{Kind: KindIntegrity, Message: msg}
}

// KindOf report the Kind of err, KindUnknown for plain errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Set log the message and return it as a plain error
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}
