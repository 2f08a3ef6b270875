package lifecycle

import "github.com/xraph/lifecycle/id"

// ID is the primary identifier type for all lifecycle entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
