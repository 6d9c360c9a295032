package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrSnapshotUnavailable is returned when a library listing could not be loaded.
	// No collection is mutated in a run that fails with this error.
	ErrSnapshotUnavailable = errors.New("library snapshot unavailable")

	// ErrUnavailable is wrapped by collaborators when the media server cannot be reached.
	ErrUnavailable = errors.New("media server unavailable")

	// ErrRunInProgress is returned when another run holds the reconciliation lock.
	ErrRunInProgress = errors.New("reconciliation run already in progress")

	// ErrCollectionMutationFailed marks a collection whose add/remove batch failed.
	ErrCollectionMutationFailed = errors.New("collection mutation failed")
)

// SnapshotError reports the library whose listing failed.
type SnapshotError struct {
	Library string
	Err     error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("list library %q: %v", e.Library, e.Err)
}

// Unwrap exposes both the sentinel and the collaborator error.
func (e *SnapshotError) Unwrap() []error {
	return []error{ErrSnapshotUnavailable, e.Err}
}

// PartialFailureError is returned by a CollectionStore when only part of a diff was applied.
type PartialFailureError struct {
	Collection string
	Detail     string
	Err        error
}

func (e *PartialFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("partial failure applying %q: %s: %v", e.Collection, e.Detail, e.Err)
	}
	return fmt.Sprintf("partial failure applying %q: %s", e.Collection, e.Detail)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// CollectionError records a per-collection failure without aborting the run.
type CollectionError struct {
	Library    string
	Collection string
	Op         string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Library, e.Collection, e.Err)
}

func (e *CollectionError) Unwrap() []error {
	if e.Op == opApply {
		return []error{ErrCollectionMutationFailed, e.Err}
	}
	return []error{e.Err}
}

const (
	opSource     = "load desired items"
	opMembership = "load membership"
	opApply      = "apply diff"
)
