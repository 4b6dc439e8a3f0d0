package cache

import (
	"context"
	"errors"
)

// ErrInvalidEntry indicates a stored entry could not be decoded.
var ErrInvalidEntry = errors.New("invalid cache entry")

// Backend stores regions. Implementations must be safe for concurrent use
// and must serialize concurrent mutations within a region.
//
// Unlike Manager, backend operations may fail. Get on a region that does
// not exist yet reports a miss, not an error.
type Backend interface {
	Get(ctx context.Context, region Region, key string) (Entry, bool, error)
	Set(ctx context.Context, region Region, key string, entry Entry) error
	Delete(ctx context.Context, region Region, key string) error
	Clear(ctx context.Context, region Region) error
	ClearAll(ctx context.Context) error
	Len(ctx context.Context, region Region) (int, error)
}
