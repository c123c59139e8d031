package converter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a single item failed.
type ErrorKind int

const (
	KindDecode ErrorKind = iota + 1
	KindUnsupportedFormat
	KindDirectoryCreate
	KindFileCreate
	KindEncode
	KindQuantization
	KindTooManyConflicts
	KindCanceled
	KindInvalidSettings
)

func (k ErrorKind) String() string {
	switch k {
	case KindDecode:
		return "decode failed"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindDirectoryCreate:
		return "cannot create output directory"
	case KindFileCreate:
		return "cannot create output file"
	case KindEncode:
		return "encode failed"
	case KindQuantization:
		return "color quantization failed"
	case KindTooManyConflicts:
		return "too many conflicts"
	case KindCanceled:
		return "canceled"
	case KindInvalidSettings:
		return "invalid settings"
	default:
		return "conversion failed"
	}
}

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrTooManyConflicts  = errors.New("too many conflicts")
	ErrHEICUnsupported   = errors.New("HEIC/HEIF is not supported; convert from or to JPG, PNG, WebP or AVIF instead")
)

// Error is the per-item failure carried into Result.Error.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind-level sentinels so callers need not type-assert.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnsupportedFormat:
		return e.Kind == KindUnsupportedFormat
	case ErrTooManyConflicts:
		return e.Kind == KindTooManyConflicts
	default:
		return false
	}
}

func newError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf returns the ErrorKind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
