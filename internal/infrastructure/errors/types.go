// Package errors defines the framework error taxonomy: operation-tagged
// errors with a stable code, plus a retry helper for the network-facing
// paths. Per-tick native failures are deliberately not represented here;
// the event loop logs and discards those.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies framework errors.
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	// CodeSendFailure means the command channel's receiver is gone.
	CodeSendFailure
	// CodeWindowGone means the target window left the live table before
	// the command arrived.
	CodeWindowGone
	// CodeCreateWindow wraps a native window/webview construction failure.
	CodeCreateWindow
	// CodeInvalidIcon wraps an icon load or decode failure.
	CodeInvalidIcon
	// CodeNetwork wraps transport failures when talking to update servers.
	CodeNetwork
	// CodeRemoteMetadata means the release manifest did not match either
	// accepted schema.
	CodeRemoteMetadata
	// CodeSignature means artifact signature verification failed.
	CodeSignature
	// CodeUpToDate means the remote announced no newer version.
	CodeUpToDate
	// CodeUnsupportedPlatform means no updater target exists for this OS.
	CodeUnsupportedPlatform
	// CodeInstall wraps a platform install-procedure failure.
	CodeInstall
	// CodeAssetNotFound means the asset bundle has no entry for a key.
	CodeAssetNotFound
)

// String returns the stable name for an error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeSendFailure:
		return "SEND_FAILURE"
	case CodeWindowGone:
		return "WINDOW_GONE"
	case CodeCreateWindow:
		return "CREATE_WINDOW"
	case CodeInvalidIcon:
		return "INVALID_ICON"
	case CodeNetwork:
		return "NETWORK"
	case CodeRemoteMetadata:
		return "REMOTE_METADATA"
	case CodeSignature:
		return "SIGNATURE"
	case CodeUpToDate:
		return "UP_TO_DATE"
	case CodeUnsupportedPlatform:
		return "UNSUPPORTED_PLATFORM"
	case CodeInstall:
		return "INSTALL"
	case CodeAssetNotFound:
		return "ASSET_NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// FrameworkError is an error with the operation that produced it and a
// classification code. Use New or Wrap to construct one.
type FrameworkError struct {
	// Op is the operation that failed, e.g. "runtime.create_window".
	Op string
	// Code classifies the failure.
	Code ErrorCode
	// Err is the underlying cause, possibly nil.
	Err error
	// Message is an optional human-readable detail.
	Message string
}

func (e *FrameworkError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: [%s] %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *FrameworkError) Unwrap() error { return e.Err }

// Is reports code equality so sentinel FrameworkErrors match wrapped ones
// through errors.Is.
func (e *FrameworkError) Is(target error) bool {
	var fe *FrameworkError
	if errors.As(target, &fe) {
		return e.Code == fe.Code
	}
	return false
}

// New creates a FrameworkError with a message.
func New(op string, code ErrorCode, message string) *FrameworkError {
	return &FrameworkError{Op: op, Code: code, Message: message}
}

// Wrap creates a FrameworkError around an underlying cause.
func Wrap(op string, code ErrorCode, err error) *FrameworkError {
	return &FrameworkError{Op: op, Code: code, Err: err}
}

// CodeOf extracts the classification code from err, or CodeUnknown when
// err carries no FrameworkError.
func CodeOf(err error) ErrorCode {
	var fe *FrameworkError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeUnknown
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
