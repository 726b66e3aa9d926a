package journal

import "context"

// Store persists journal entries.
type Store interface {
	// AppendEntry stores e. Seq must be unique; a repeated Seq fails with
	// ErrDuplicateEntry.
	AppendEntry(ctx context.Context, e *Entry) error
	// ListEntries returns entries in ascending Seq order.
	ListEntries(ctx context.Context, opts ListOpts) ([]*Entry, error)
	// LastEntry returns the entry with the highest Seq or ErrEntryNotFound.
	LastEntry(ctx context.Context) (*Entry, error)
}

// ListOpts filters ListEntries.
type ListOpts struct {
	// AfterSeq returns only entries with Seq greater than this value.
	AfterSeq uint64
	Kind     Kind
	Limit    int
}
