package ports

import (
	"context"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// Distributor is the sink of the revenue traders.
type Distributor interface {
	// Totals returns the revenue shares of the issued token holders and of
	// the backstop token stakers.
	Totals(ctx context.Context) (issued, backstop fixed.Fix, err error)
	// Distribute moves amount of token from the given account to the
	// destinations of the revenue table.
	Distribute(ctx context.Context, from, token string, amount fixed.Fix) error
}
