package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid matches every *ValidationError via errors.Is.
	ErrInvalid = errors.New("archive: invalid archive")

	ErrTooLarge = errors.New("archive: archive exceeds size limit")
	ErrNoRoot   = errors.New("archive: missing root node")
	ErrRootLast = errors.New("archive: root must be the last node written")
	ErrBadRef   = errors.New("archive: reference does not point to an earlier node")
	ErrNotUTF8  = errors.New("archive: string is not valid UTF-8")
)

// ValidationError reports the first structural or shape violation found in an
// untrusted buffer.
type ValidationError struct {
	Offset int
	Reason string
	Err    error // optional underlying cause
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("archive: invalid at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("archive: invalid at offset %d: %s", e.Offset, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(off int, format string, args ...any) error {
	return &ValidationError{Offset: off, Reason: fmt.Sprintf(format, args...)}
}
