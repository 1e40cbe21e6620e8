package graph

import (
	"errors"
	"fmt"

	"github.com/signadot/docgraph/parse"
	"github.com/signadot/docgraph/spec"
)

var (
	ErrItemDeleted = errors.New("item deleted")
	// ErrParentLocked is returned when an ancestor could not be locked
	// within the bounded wait. The operation had no effect and may be
	// retried.
	ErrParentLocked = errors.New("parent element locked")

	ErrContentType        = errors.New("incorrect content type")
	ErrInvalidPosition    = errors.New("invalid insertion position")
	ErrInsertionConflict  = errors.New("element insertion conflict")
	ErrInvalidSubElement  = errors.New("invalid sub element")
	ErrItemNameRequired   = errors.New("item name required")
	ErrItemNameNotAllowed = errors.New("item name not allowed")
	ErrDuplicateName      = errors.New("duplicate item name")
	ErrNotIdentifiable    = errors.New("element is not identifiable")
	ErrIdentityChild      = errors.New("identity element cannot be modified this way")

	ErrInvalidReference = errors.New("invalid reference")
	ErrNotReference     = errors.New("element is not a reference")

	ErrVersionMismatch = errors.New("version mismatch")
	ErrForbiddenMove   = errors.New("forbidden move")

	ErrMergeConflict = errors.New("merge conflict")
	ErrDuplicateFile = errors.New("duplicate file name")
	ErrNoFile        = errors.New("file not part of model")

	ErrInvalidValue          = spec.ErrInvalidValue
	ErrInvalidAttribute      = errors.New("invalid attribute")
	ErrRequiredAttribute     = errors.New("required attribute")
	ErrInvalidFileMembership = errors.New("invalid file membership")

	// ErrCacheInconsistent reports a path or reference cache entry that
	// does not match the graph, typically after a concurrent teardown.
	ErrCacheInconsistent = errors.New("cache inconsistent")

	ErrParse = parse.ErrParse
)

// IsRetryable reports whether err is a lock contention failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrParentLocked)
}

// MergeError is returned when a file cannot be merged into a model.
type MergeError struct {
	File string
	// Path is the path of the nearest identifiable ancestor of the
	// divergence, Element the name of the diverging element.
	Path    string
	Element spec.ElementName
	Reason  string
}

func (e *MergeError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s: %s at %s: %s", ErrMergeConflict, e.File, e.Element, path, e.Reason)
}

func (e *MergeError) Unwrap() error { return ErrMergeConflict }
