// Package remote defines the read-only remote API contract: the custom
// sort order and the record sets the refresh operations pull down.
package remote

import (
	"context"

	"github.com/IvanBrykalov/livesort/record"
)

// Client is the remote API surface consumed by the repository.
// All operations may fail; none of them retries. Implementations must be
// safe for concurrent use.
type Client interface {
	// FetchOrder returns the custom sort order.
	FetchOrder(ctx context.Context) (record.Order, error)

	// FetchAll returns the full record set.
	FetchAll(ctx context.Context) ([]record.Record, error)

	// FetchZone returns the record set for one zone.
	FetchZone(ctx context.Context, zone string) ([]record.Record, error)
}
