package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/GriffinCanCode/glitchly/backend/internal/domain/archive"
)

// Kind classifies lifecycle failures
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindCorruptArchive
	KindIO
	KindValidation
)

// String returns the label used in logs and metrics
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindCorruptArchive:
		return "corrupt_archive"
	case KindIO:
		return "io_failure"
	case KindValidation:
		return "validation_failure"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound means neither an active copy nor an archive exists
	ErrNotFound = errors.New("app not found")
	// ErrCorruptArchive means the archive exists but cannot be decoded
	ErrCorruptArchive = errors.New("archive is corrupt")
	// ErrIO covers disk, permission and other filesystem failures
	ErrIO = errors.New("storage failure")
	// ErrValidation means the app name or content was rejected
	ErrValidation = errors.New("invalid request")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindCorruptArchive:
		return ErrCorruptArchive
	case KindIO:
		return ErrIO
	case KindValidation:
		return ErrValidation
	default:
		return nil
	}
}

// Error is returned by every Manager operation that fails
type Error struct {
	Op   string
	Name string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	cause := e.Err
	if cause == nil {
		cause = e.Kind.sentinel()
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, cause)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf extracts the kind from err, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func notFound(op, name string) error {
	return &Error{Op: op, Name: name, Kind: KindNotFound}
}

func invalid(op, name string, err error) error {
	return &Error{Op: op, Name: name, Kind: KindValidation, Err: err}
}

// storageError wraps a filesystem or codec failure
func storageError(op, name string, err error) error {
	kind := KindIO
	if archive.IsCorrupt(err) {
		kind = KindCorruptArchive
	}
	return &Error{Op: op, Name: name, Kind: kind, Err: err}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
