package elastic

import "github.com/xraph/elastic/id"

// ID is the primary identifier type for all elastic records.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
