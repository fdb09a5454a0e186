package ports

import (
	"context"
)

// IDGenerator produces globally unique order ids. Implementations must fail
// the call when the shared counter store is unreachable rather than fall back
// to a locally fabricated value.
type IDGenerator interface {
	NextID(ctx context.Context, tag string) (uint64, error)
}
