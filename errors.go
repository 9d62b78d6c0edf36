package drivetree

import (
	"github.com/Jumpaku/go-drivetree/errors"
)

// Error kinds returned by DriveTree operations. See package errors for details.
var (
	ErrInvalidPath           = errors.ErrInvalidPath
	ErrTransport             = errors.ErrTransport
	ErrIOError               = errors.ErrIOError
	ErrPathNotFound          = errors.ErrPathNotFound
	ErrPathIsFile            = errors.ErrPathIsFile
	ErrPathIsFolder          = errors.ErrPathIsFolder
	ErrLocalPathNotFound     = errors.ErrLocalPathNotFound
	ErrUnsupportedConversion = errors.ErrUnsupportedConversion
	ErrNoRoleSelected        = errors.ErrNoRoleSelected
	ErrNoTargetHost          = errors.ErrNoTargetHost
	ErrPermissionNotFound    = errors.ErrPermissionNotFound
	ErrAborted               = errors.ErrAborted
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrPathNotFound)
}
