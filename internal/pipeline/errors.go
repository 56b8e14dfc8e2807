package pipeline

import (
	"errors"
	"fmt"
)

// ErrResource matches any ResourceError via errors.Is.
var ErrResource = errors.New("resource failure")

// ResourceError reports an input or output file that could not be opened,
// read, written or closed.
type ResourceError struct {
	Op   string // "open", "read", "create", "write", "close"
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrResource.
func (e *ResourceError) Is(target error) bool { return target == ErrResource }
