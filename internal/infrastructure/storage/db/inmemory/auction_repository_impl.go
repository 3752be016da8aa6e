package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tdex-network/basketd/internal/core/domain"
)

type auctionRepositoryImpl struct {
	auctions map[string]*domain.Auction
	locker   *sync.Mutex
}

// NewAuctionRepositoryImpl returns a new empty inmemory AuctionRepository.
func NewAuctionRepositoryImpl() domain.AuctionRepository {
	return &auctionRepositoryImpl{
		auctions: make(map[string]*domain.Auction),
		locker:   &sync.Mutex{},
	}
}

func (r *auctionRepositoryImpl) AddAuction(
	_ context.Context, auction *domain.Auction,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.auctions[auction.ID]; ok {
		return fmt.Errorf("auction %s already exists", auction.ID)
	}
	r.auctions[auction.ID] = copyAuction(auction)
	return nil
}

func (r *auctionRepositoryImpl) GetAuction(
	_ context.Context, id string,
) (*domain.Auction, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	a, ok := r.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return copyAuction(a), nil
}

func (r *auctionRepositoryImpl) UpdateAuction(
	_ context.Context,
	id string,
	updateFn func(a *domain.Auction) (*domain.Auction, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	a, ok := r.auctions[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	updated, err := updateFn(copyAuction(a))
	if err != nil {
		return err
	}
	r.auctions[id] = copyAuction(updated)
	return nil
}
