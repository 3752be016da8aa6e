package ports

import (
	"context"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// PriceFeed is a single reading of an oracle feed.
type PriceFeed struct {
	Feed      string
	Price     fixed.Fix
	Timestamp int64
}

// Oracle is the price capability consumed by the asset registry.
type Oracle interface {
	// Price returns the latest reading of the given feed.
	Price(ctx context.Context, feed string) (PriceFeed, error)
}

// PriceSource streams prices of the subscribed feeds.
type PriceSource interface {
	Name() string
	SubscribeFeeds(feeds []string) error

	Start() error
	Stop()

	FeedChan() chan PriceFeed
}
