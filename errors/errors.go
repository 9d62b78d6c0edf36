// Package errors defines the error kinds reported by drivetree and its remote and local collaborators.
//
// Kinds are sentinel values to be matched with Is. Failures coming from the remote store or the
// local filesystem are wrapped so that both the kind and the underlying cause remain matchable.
package errors

import (
	"errors"
)

var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrTransport             = errors.New("transport error")
	ErrIOError               = errors.New("io error")
	ErrPathNotFound          = errors.New("path not found")
	ErrPathIsFile            = errors.New("path is file")
	ErrPathIsFolder          = errors.New("path is folder")
	ErrLocalPathNotFound     = errors.New("local path not found")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrNoRoleSelected        = errors.New("no role selected")
	ErrNoTargetHost          = errors.New("no target host")
	ErrPermissionNotFound    = errors.New("permission not found")
	ErrAborted               = errors.New("aborted")
)

type wrapError struct {
	underlying error
	msg        string
	cause      error
}

var _ error = (*wrapError)(nil)

// NewTransportError reports a failure of the remote store.
func NewTransportError(msg string, cause error) error {
	return &wrapError{
		underlying: ErrTransport,
		msg:        msg,
		cause:      cause,
	}
}

// NewIOError reports a failure of the local filesystem.
func NewIOError(msg string, cause error) error {
	return &wrapError{
		underlying: ErrIOError,
		msg:        msg,
		cause:      cause,
	}
}

func (err *wrapError) Error() string {
	if err == nil {
		return "(*wrapError)(nil)"
	}
	message := err.underlying.Error() + ": " + err.msg
	if err.cause != nil {
		message += ": " + err.cause.Error()
	}
	return message
}

func (err *wrapError) Unwrap() []error {
	if err.cause == nil {
		return []error{err.underlying}
	}
	return []error{err.underlying, err.cause}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
