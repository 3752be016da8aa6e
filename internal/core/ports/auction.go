package ports

import (
	"context"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// AuctionParams ...
type AuctionParams struct {
	Sell         string
	Buy          string
	SellAmount   fixed.Fix
	MinBuyAmount fixed.Fix
	BuyDecimals  uint8
	EndTime      int64
}

// AuctionResult is what the seller got back once the auction cleared.
type AuctionResult struct {
	Sold   fixed.Fix
	Bought fixed.Fix
}

// BatchAuctionVenue is the external sealed-bid batch auction mechanism.
type BatchAuctionVenue interface {
	// InitiateAuction takes custody of the sell amount held by seller and
	// returns the id of the new auction.
	InitiateAuction(ctx context.Context, seller string, params AuctionParams) (string, error)
	// PlaceBid commits buyAmount of buy token to get up to sellAmount of
	// sell token.
	PlaceBid(ctx context.Context, auctionID, bidder string, sellAmount, buyAmount fixed.Fix) error
	// CancelAuction returns the lot of an auction without bids to the
	// seller.
	CancelAuction(ctx context.Context, auctionID string) error
	// SettleAuction clears the auction and pays the seller the bought amount
	// plus any unsold amount.
	SettleAuction(ctx context.Context, auctionID string) (AuctionResult, error)
}
