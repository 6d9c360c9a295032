package reconcile

import (
	"context"
)

// LibraryReader lists the catalog of a media server library.
// Implementations wrap transport failures with ErrUnavailable.
type LibraryReader interface {
	// ListLibrary returns every entry of the library. The engine calls it once per
	// library per run and never reuses the result across runs.
	ListLibrary(ctx context.Context, library string) ([]LibraryItem, error)
}

// CollectionStore reads and mutates collection membership on the media server.
type CollectionStore interface {
	// GetMembership returns the entry ids currently in the collection.
	// A collection that does not exist yet has an empty membership.
	GetMembership(ctx context.Context, library, collection string) (Membership, error)

	// ApplyDiff adds and removes entries as one batch, creating the collection when
	// needed. When only part of the batch succeeded it returns *PartialFailureError.
	ApplyDiff(ctx context.Context, library, collection string, diff Diff) error
}

// MetadataUpdater is an optional CollectionStore extension that pushes collection
// metadata (summary, sort title) after a membership change.
type MetadataUpdater interface {
	UpdateMetadata(ctx context.Context, library, collection string, metadata CollectionMetadata) error
}

// DesiredItemSource produces the desired items of one collection.
type DesiredItemSource interface {
	DesiredItems(ctx context.Context, library string, target CollectionTarget) ([]DesiredItem, error)
}

// AcquisitionForwarder hands unmatched items to an acquisition manager.
type AcquisitionForwarder interface {
	Request(ctx context.Context, requests []AcquisitionRequest) error
}

// RunReporter delivers the summary of a finished run.
type RunReporter interface {
	Report(ctx context.Context, summary *RunSummary) error
}

// RunStartReporter is an optional RunReporter extension notified when a run starts.
type RunStartReporter interface {
	ReportStart(ctx context.Context, start RunStart) error
}

// Locker is a cross-process run lock, typically a file lock.
type Locker interface {
	TryLock() (bool, error)
	Unlock() error
}
