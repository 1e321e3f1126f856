// Package apperr classifies errors produced by the upload path.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of an application error.
type Kind string

const (
	Validation    Kind = "validation"
	Configuration Kind = "configuration"
	Storage       Kind = "storage"
	Unknown       Kind = "unknown"
)

// Error wraps a cause with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error. A nil cause yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// ValidationError reports invalid client input.
func ValidationError(msg string) error {
	return &Error{Kind: Validation, Err: errors.New(msg)}
}

// ConfigurationError reports a missing or invalid environment value.
func ConfigurationError(msg string) error {
	return &Error{Kind: Configuration, Err: errors.New(msg)}
}

// StorageError wraps a failed disk write or remote upload.
func StorageError(op string, err error) error {
	return E(Storage, op, err)
}

// KindOf returns the kind of the outermost *Error in the chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
