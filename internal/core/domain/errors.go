package domain

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNoSession            = errors.New("no active session")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileInactive      = errors.New("profile inactive")
	ErrForbidden            = errors.New("access forbidden")
	ErrUnknownNetwork       = errors.New("unknown share network")
	ErrShareUnsupported     = errors.New("native share unsupported")
	ErrShareCancelled       = errors.New("share cancelled")
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
)
