package core

import "github.com/pkg/errors"

var (
	// ErrBusy is returned when a store lock could not be acquired in time.
	ErrBusy = errors.New("store busy")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// StorageError reports that a store's backing medium could not be read or written.
type StorageError struct {
	Store string // e.g. "teachers"
	Op    string // e.g. "load", "persist"
	Err   error
}

func NewStorageError(store, op string, err error) error {
	return &StorageError{Store: store, Op: op, Err: err}
}

func (err *StorageError) Error() string {
	return err.Store + " storage unavailable (" + err.Op + "): " + err.Err.Error()
}

func (err *StorageError) Unwrap() error { return err.Err }

// IsStorageUnavailable reports whether err (or any error it wraps) is a *StorageError.
func IsStorageUnavailable(err error) bool {
	var serr *StorageError
	return errors.As(err, &serr)
}

// IsBusy reports whether err was caused by a store lock timeout.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}
