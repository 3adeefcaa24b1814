package region

import (
	"errors"
	"fmt"
)

var (
	// ErrReadOnly is returned when a mutation is attempted in read-only mode.
	ErrReadOnly = errors.New("region is read-only")

	// ErrOutsideRegion is returned when a create gesture lands outside the map frame.
	ErrOutsideRegion = errors.New("position outside map region")

	// ErrNotCreateGesture is returned when a pointer event is not the create gesture.
	ErrNotCreateGesture = errors.New("not a create gesture")
)

// LoadError reports a document or image that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a failed save. Op is "backup", "encode" or "write".
// A failed backup means the existing file was not touched.
type SaveError struct {
	Path string
	Op   string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s (%s): %v", e.Path, e.Op, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// IndexError reports a point index that does not exist.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("point index %d out of range [0,%d)", e.Index, e.Len)
}
