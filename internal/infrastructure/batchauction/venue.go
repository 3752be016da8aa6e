// Package batchauction implements an in-process sealed-bid batch auction:
// bids are collected until the end time and the lot is cleared at a uniform
// price, the lowest price among the filled bids. Lots and bids are
// persisted, so an auction can be settled after a restart.
package batchauction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

var (
	ErrAuctionNotFound = domain.ErrAuctionNotFound
	ErrAuctionClosed   = errors.New("auction closed")
	ErrAuctionNotEnded = errors.New("auction not ended")
	ErrAuctionHasBids  = errors.New("auction has bids")
	ErrBidTooLow       = errors.New("bid below min price")
	ErrInvalidBid      = errors.New("invalid bid")
)

// Venue holds the lots and the committed bids in custody of the batch
// auction account.
type Venue struct {
	ledger ports.TokenLedger
	clock  ports.Clock
	repo   domain.AuctionRepository

	lock *sync.Mutex
}

func NewVenue(
	ledger ports.TokenLedger, clock ports.Clock, repo domain.AuctionRepository,
) *Venue {
	return &Venue{
		ledger: ledger,
		clock:  clock,
		repo:   repo,
		lock:   &sync.Mutex{},
	}
}

func (v *Venue) InitiateAuction(
	ctx context.Context, seller string, params ports.AuctionParams,
) (string, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	if params.SellAmount.IsZero() {
		return "", fmt.Errorf("%w: zero lot", ErrInvalidBid)
	}
	if params.EndTime <= v.clock.Now() {
		return "", fmt.Errorf("%w: end time in the past", ErrInvalidBid)
	}
	if err := v.ledger.Transfer(
		ctx, seller, domain.BatchAuctionAccount, params.Sell, params.SellAmount,
	); err != nil {
		return "", err
	}

	auction := &domain.Auction{
		ID:           uuid.New().String(),
		Seller:       seller,
		Sell:         params.Sell,
		Buy:          params.Buy,
		SellAmount:   params.SellAmount,
		MinBuyAmount: params.MinBuyAmount,
		BuyDecimals:  params.BuyDecimals,
		EndTime:      params.EndTime,
		Bids:         make([]domain.AuctionBid, 0),
	}
	if err := v.repo.AddAuction(ctx, auction); err != nil {
		if rerr := v.release(
			ctx, seller, params.Sell, params.SellAmount,
		); rerr != nil {
			log.WithError(rerr).Warnf("batch auction: failed to return lot to %s", seller)
		}
		return "", err
	}

	log.Debugf("batch auction %s initiated by %s", auction.ID, seller)
	return auction.ID, nil
}

func (v *Venue) PlaceBid(
	ctx context.Context, auctionID, bidder string, sellAmount, buyAmount fixed.Fix,
) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	a, err := v.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if a.Settled || v.clock.Now() >= a.EndTime {
		return ErrAuctionClosed
	}
	if sellAmount.IsZero() || buyAmount.IsZero() || sellAmount.Gt(a.SellAmount) {
		return ErrInvalidBid
	}
	bid := domain.AuctionBid{
		Bidder: bidder, SellAmount: sellAmount, BuyAmount: buyAmount,
	}
	if bid.Price().Lt(a.MinPrice()) {
		return ErrBidTooLow
	}

	if err := v.ledger.Transfer(
		ctx, bidder, domain.BatchAuctionAccount, a.Buy, buyAmount,
	); err != nil {
		return err
	}
	if err := v.repo.UpdateAuction(
		ctx, auctionID, func(a *domain.Auction) (*domain.Auction, error) {
			a.Bids = append(a.Bids, bid)
			return a, nil
		},
	); err != nil {
		if rerr := v.release(ctx, bidder, a.Buy, buyAmount); rerr != nil {
			log.WithError(rerr).Warnf("batch auction: failed to return bid to %s", bidder)
		}
		return err
	}
	return nil
}

func (v *Venue) CancelAuction(ctx context.Context, auctionID string) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	var auction *domain.Auction
	if err := v.repo.UpdateAuction(
		ctx, auctionID, func(a *domain.Auction) (*domain.Auction, error) {
			if a.Settled {
				return nil, ErrAuctionClosed
			}
			if len(a.Bids) > 0 {
				return nil, ErrAuctionHasBids
			}
			a.Settled = true
			a.Sold = fixed.Zero
			a.Bought = fixed.Zero
			auction = a
			return a, nil
		},
	); err != nil {
		return err
	}

	log.Debugf("batch auction %s cancelled", auctionID)
	return v.release(ctx, auction.Seller, auction.Sell, auction.SellAmount)
}

// SettleAuction fills the best bids first and clears them all at the price
// of the last filled one. The seller gets the proceeds and the unsold lot,
// every bidder its fill and the unspent part of its bid.
func (v *Venue) SettleAuction(
	ctx context.Context, auctionID string,
) (ports.AuctionResult, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	a, err := v.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return ports.AuctionResult{}, err
	}
	if a.Settled {
		return ports.AuctionResult{Sold: a.Sold, Bought: a.Bought}, nil
	}
	if v.clock.Now() < a.EndTime {
		return ports.AuctionResult{}, ErrAuctionNotEnded
	}

	payouts, sold, bought := clearAuction(a)

	// Settled is persisted before any release.
	if err := v.repo.UpdateAuction(
		ctx, auctionID, func(a *domain.Auction) (*domain.Auction, error) {
			a.Settled = true
			a.Sold = sold
			a.Bought = bought
			return a, nil
		},
	); err != nil {
		return ports.AuctionResult{}, err
	}

	for _, p := range payouts {
		if err := v.release(ctx, p.to, p.token, p.amount); err != nil {
			return ports.AuctionResult{}, err
		}
	}

	log.Debugf(
		"batch auction %s cleared: sold %s, bought %s", auctionID, sold, bought,
	)
	return ports.AuctionResult{Sold: sold, Bought: bought}, nil
}

// GetAuction returns the auction with the given id.
func (v *Venue) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	return v.repo.GetAuction(ctx, auctionID)
}

type payout struct {
	to     string
	token  string
	amount fixed.Fix
}

// clearAuction computes the fills of the auction and the resulting payouts.
func clearAuction(a *domain.Auction) ([]payout, fixed.Fix, fixed.Fix) {
	bids := append([]domain.AuctionBid{}, a.Bids...)
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Price().Gt(bids[j].Price())
	})

	fills := make([]fixed.Fix, len(bids))
	remaining := a.SellAmount
	clearingPrice := fixed.Zero
	for i, b := range bids {
		fills[i] = fixed.Zero
		if remaining.IsZero() {
			continue
		}
		fills[i] = fixed.Min(b.SellAmount, remaining)
		remaining = remaining.Minus(fills[i])
		clearingPrice = b.Price()
	}

	payouts := make([]payout, 0, 2*len(bids)+2)
	bought := fixed.Zero
	for i, b := range bids {
		payment := fixed.Zero
		if !fills[i].IsZero() {
			payment = fixed.Min(
				fills[i].MulRnd(clearingPrice, fixed.Ceil).
					Quantize(a.BuyDecimals, fixed.Ceil),
				b.BuyAmount,
			)
			payouts = append(payouts, payout{b.Bidder, a.Sell, fills[i]})
		}
		bought = bought.Plus(payment)
		payouts = append(payouts, payout{b.Bidder, a.Buy, b.BuyAmount.Minus(payment)})
	}
	payouts = append(payouts,
		payout{a.Seller, a.Buy, bought},
		payout{a.Seller, a.Sell, remaining},
	)

	return payouts, a.SellAmount.Minus(remaining), bought
}

func (v *Venue) release(
	ctx context.Context, to, token string, amount fixed.Fix,
) error {
	if amount.IsZero() {
		return nil
	}
	return v.ledger.Transfer(ctx, domain.BatchAuctionAccount, to, token, amount)
}
