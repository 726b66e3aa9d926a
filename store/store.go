// Package store defines the persistence contract the ledger runs on.
package store

import (
	"context"

	"github.com/xraph/elastic/journal"
)

// Store is the unified storage interface for the ledger. Backends live in
// the memory, postgres, sqlite and mongo subpackages.
type Store interface {
	journal.Store

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
