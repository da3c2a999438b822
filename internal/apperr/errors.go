// Package apperr defines the error kinds reported by filesystem commands.
//
// Errors keep their kind and the underlying OS error until they reach a
// transport boundary, where they are rendered as text plus a kind string.
package apperr

import (
	"errors"
	"io/fs"
	"syscall"
)

// Kind classifies a command failure.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindNotADirectory    Kind = "not_a_directory"
	KindIsADirectory     Kind = "is_a_directory"
	KindAlreadyExists    Kind = "already_exists"
	KindInvalidEncoding  Kind = "invalid_encoding"
	KindInvalidArgument  Kind = "invalid_argument"
	KindUnknownCommand   Kind = "unknown_command"
	KindUnavailable      Kind = "unavailable"
	KindIO               Kind = "io"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrNotADirectory   = errors.New("not a directory")
	ErrIsADirectory    = errors.New("is a directory")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidEncoding = errors.New("stream did not contain valid UTF-8")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnavailable     = errors.New("unavailable")
)

var sentinels = map[Kind]error{
	KindNotFound:         ErrNotFound,
	KindPermissionDenied: ErrPermission,
	KindNotADirectory:    ErrNotADirectory,
	KindIsADirectory:     ErrIsADirectory,
	KindAlreadyExists:    ErrAlreadyExists,
	KindInvalidEncoding:  ErrInvalidEncoding,
	KindInvalidArgument:  ErrInvalidArgument,
	KindUnknownCommand:   ErrUnknownCommand,
	KindUnavailable:      ErrUnavailable,
}

// Error is a classified command failure. Its text is the text of the
// wrapped error, unchanged.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if s, ok := sentinels[e.Kind]; ok {
		return s.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// E wraps err as an *Error for op on path, classifying it by inspecting the
// chain. A nil err yields nil; an err that is already an *Error is returned
// as is.
func E(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Path: path, Err: err}
}

// New returns an *Error of the given kind wrapping err.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of err. Unclassified errors are KindIO.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidEncoding):
		return KindInvalidEncoding
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, syscall.ENOTDIR):
		return KindNotADirectory
	case errors.Is(err, syscall.EISDIR):
		return KindIsADirectory
	case errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	default:
		return KindIO
	}
}
