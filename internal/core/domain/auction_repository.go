package domain

import "context"

// AuctionRepository persists the batch auctions of the venue, so that lots
// in custody survive restarts.
type AuctionRepository interface {
	// AddAuction stores a new auction.
	AddAuction(ctx context.Context, auction *Auction) error
	// GetAuction returns the auction with the given id.
	GetAuction(ctx context.Context, id string) (*Auction, error)
	// UpdateAuction allows to commit multiple changes to the same auction in
	// a transactional way.
	UpdateAuction(
		ctx context.Context,
		id string,
		updateFn func(a *Auction) (*Auction, error),
	) error
}
