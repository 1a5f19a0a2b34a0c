package aggregate

import (
	"context"

	"github.com/TarasTrach/NexusBot/storage/types"
)

// Adapter is a single exchange P2P order book adapter
type Adapter interface {
	// Source returns the exchange the adapter reads from
	Source() types.Source

	// Fetch translates the query into the exchange request,
	// yielding the normalized orders
	Fetch(context.Context, *types.Query) ([]*types.Order, error)
}
