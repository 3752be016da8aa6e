package dbbadger

import (
	"context"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type auctionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAuctionRepositoryImpl returns a badger implementation of
// domain.AuctionRepository.
func NewAuctionRepositoryImpl(store *badgerhold.Store) domain.AuctionRepository {
	return &auctionRepositoryImpl{store}
}

func (r *auctionRepositoryImpl) AddAuction(
	_ context.Context, auction *domain.Auction,
) error {
	return r.store.Insert(auction.ID, *auction)
}

func (r *auctionRepositoryImpl) GetAuction(
	_ context.Context, id string,
) (*domain.Auction, error) {
	var auction domain.Auction
	if err := r.store.Get(id, &auction); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return &auction, nil
}

func (r *auctionRepositoryImpl) UpdateAuction(
	ctx context.Context,
	id string,
	updateFn func(a *domain.Auction) (*domain.Auction, error),
) error {
	auction, err := r.GetAuction(ctx, id)
	if err != nil {
		return err
	}
	updated, err := updateFn(auction)
	if err != nil {
		return err
	}
	return r.store.Update(id, *updated)
}
