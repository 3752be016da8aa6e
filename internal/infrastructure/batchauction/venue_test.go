package batchauction_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/internal/infrastructure/batchauction"
	"github.com/tdex-network/basketd/internal/infrastructure/ledger"
	dbbadger "github.com/tdex-network/basketd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/basketd/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const startTime = int64(1700000000)

type clock struct {
	now atomic.Int64
}

func (c *clock) Now() int64 {
	return c.now.Load()
}

func newVenue(t *testing.T) (*batchauction.Venue, *ledger.Ledger, *clock) {
	ctx := context.Background()
	l := ledger.New(inmemory.NewBalanceRepositoryImpl())
	require.NoError(t, l.Mint(ctx, "seller", "USDC", fixed.NewFromInt(100)))
	for _, bidder := range []string{"alice", "bob", "carol"} {
		require.NoError(t, l.Mint(ctx, bidder, "DAI", fixed.NewFromInt(100)))
	}

	c := &clock{}
	c.now.Store(startTime)
	return batchauction.NewVenue(l, c, inmemory.NewAuctionRepositoryImpl()), l, c
}

func params() ports.AuctionParams {
	return ports.AuctionParams{
		Sell:         "USDC",
		Buy:          "DAI",
		SellAmount:   fixed.NewFromInt(100),
		MinBuyAmount: fixed.NewFromInt(90),
		BuyDecimals:  18,
		EndTime:      startTime + 900,
	}
}

func TestInitiateAuction(t *testing.T) {
	t.Parallel()

	zeroLot := params()
	zeroLot.SellAmount = fixed.Zero
	past := params()
	past.EndTime = startTime
	tooBig := params()
	tooBig.SellAmount = fixed.NewFromInt(101)

	tests := []struct {
		name        string
		params      ports.AuctionParams
		expectedErr error
	}{
		{"zero lot", zeroLot, batchauction.ErrInvalidBid},
		{"end time in the past", past, batchauction.ErrInvalidBid},
		{"insufficient balance", tooBig, domain.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			venue, _, _ := newVenue(t)
			_, err := venue.InitiateAuction(context.Background(), "seller", tt.params)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestAuction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	venue, l, c := newVenue(t)

	id, err := venue.InitiateAuction(ctx, "seller", params())
	require.NoError(t, err)
	requireBalance(t, l, domain.BatchAuctionAccount, "USDC", "100")

	require.NoError(t, venue.PlaceBid(ctx, id, "alice", fixed.NewFromInt(60), fixed.NewFromInt(63)))
	require.NoError(t, venue.PlaceBid(ctx, id, "bob", fixed.NewFromInt(60), fixed.NewFromInt(60)))

	bidTests := []struct {
		name        string
		auctionID   string
		sell, buy   fixed.Fix
		expectedErr error
	}{
		{"unknown auction", "nope", fixed.One, fixed.One, batchauction.ErrAuctionNotFound},
		{"price too low", id, fixed.NewFromInt(10), fixed.NewFromInt(8), batchauction.ErrBidTooLow},
		{"zero amount", id, fixed.Zero, fixed.One, batchauction.ErrInvalidBid},
		{"more than the lot", id, fixed.NewFromInt(101), fixed.NewFromInt(101), batchauction.ErrInvalidBid},
	}
	for _, tt := range bidTests {
		err := venue.PlaceBid(ctx, tt.auctionID, "carol", tt.sell, tt.buy)
		require.ErrorIs(t, err, tt.expectedErr, tt.name)
	}

	_, err = venue.SettleAuction(ctx, id)
	require.ErrorIs(t, err, batchauction.ErrAuctionNotEnded)

	c.now.Store(startTime + 900)
	err = venue.PlaceBid(ctx, id, "carol", fixed.NewFromInt(10), fixed.NewFromInt(10))
	require.ErrorIs(t, err, batchauction.ErrAuctionClosed)

	res, err := venue.SettleAuction(ctx, id)
	require.NoError(t, err)
	require.True(t, res.Sold.Eq(fixed.NewFromInt(100)))
	require.True(t, res.Bought.Eq(fixed.NewFromInt(100)))

	// everyone clears at the lowest filled price
	requireBalance(t, l, "seller", "DAI", "100")
	requireBalance(t, l, "seller", "USDC", "0")
	requireBalance(t, l, "alice", "USDC", "60")
	requireBalance(t, l, "alice", "DAI", "40")
	requireBalance(t, l, "bob", "USDC", "40")
	requireBalance(t, l, "bob", "DAI", "60")
	requireBalance(t, l, domain.BatchAuctionAccount, "USDC", "0")
	requireBalance(t, l, domain.BatchAuctionAccount, "DAI", "0")

	again, err := venue.SettleAuction(ctx, id)
	require.NoError(t, err)
	require.True(t, again.Sold.Eq(res.Sold))
	require.True(t, again.Bought.Eq(res.Bought))

	auction, err := venue.GetAuction(ctx, id)
	require.NoError(t, err)
	require.True(t, auction.Settled)
	require.Len(t, auction.Bids, 2)
}

func TestAuctionWithoutBids(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	venue, l, c := newVenue(t)

	id, err := venue.InitiateAuction(ctx, "seller", params())
	require.NoError(t, err)

	c.now.Store(startTime + 900)
	res, err := venue.SettleAuction(ctx, id)
	require.NoError(t, err)
	require.True(t, res.Sold.IsZero())
	require.True(t, res.Bought.IsZero())
	requireBalance(t, l, "seller", "USDC", "100")
}

func TestCancelAuction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	venue, l, c := newVenue(t)

	id, err := venue.InitiateAuction(ctx, "seller", params())
	require.NoError(t, err)
	require.NoError(t, venue.CancelAuction(ctx, id))
	requireBalance(t, l, "seller", "USDC", "100")
	requireBalance(t, l, domain.BatchAuctionAccount, "USDC", "0")

	err = venue.CancelAuction(ctx, id)
	require.ErrorIs(t, err, batchauction.ErrAuctionClosed)
	err = venue.PlaceBid(ctx, id, "alice", fixed.NewFromInt(10), fixed.NewFromInt(10))
	require.ErrorIs(t, err, batchauction.ErrAuctionClosed)

	id, err = venue.InitiateAuction(ctx, "seller", params())
	require.NoError(t, err)
	require.NoError(t, venue.PlaceBid(ctx, id, "alice", fixed.NewFromInt(10), fixed.NewFromInt(10)))
	err = venue.CancelAuction(ctx, id)
	require.ErrorIs(t, err, batchauction.ErrAuctionHasBids)

	err = venue.CancelAuction(ctx, "nope")
	require.ErrorIs(t, err, batchauction.ErrAuctionNotFound)

	c.now.Store(startTime + 900)
	res, err := venue.SettleAuction(ctx, id)
	require.NoError(t, err)
	require.True(t, res.Sold.Eq(fixed.NewFromInt(10)))
}

func TestSettleAuctionAfterRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	datadir := t.TempDir()
	c := &clock{}
	c.now.Store(startTime)

	repo, err := dbbadger.NewRepoManager(datadir, nil)
	require.NoError(t, err)
	l := ledger.New(repo.BalanceRepository())
	require.NoError(t, l.Mint(ctx, "seller", "USDC", fixed.NewFromInt(100)))
	require.NoError(t, l.Mint(ctx, "alice", "DAI", fixed.NewFromInt(100)))

	venue := batchauction.NewVenue(l, c, repo.AuctionRepository())
	id, err := venue.InitiateAuction(ctx, "seller", params())
	require.NoError(t, err)
	require.NoError(t, venue.PlaceBid(ctx, id, "alice", fixed.NewFromInt(100), fixed.NewFromInt(95)))
	repo.Close()

	repo, err = dbbadger.NewRepoManager(datadir, nil)
	require.NoError(t, err)
	defer repo.Close()
	l = ledger.New(repo.BalanceRepository())
	venue = batchauction.NewVenue(l, c, repo.AuctionRepository())

	c.now.Store(startTime + 900)
	res, err := venue.SettleAuction(ctx, id)
	require.NoError(t, err)
	require.True(t, res.Sold.Eq(fixed.NewFromInt(100)))
	require.True(t, res.Bought.Eq(fixed.NewFromInt(95)))

	requireBalance(t, l, "seller", "DAI", "95")
	requireBalance(t, l, "alice", "USDC", "100")
	requireBalance(t, l, "alice", "DAI", "5")
	requireBalance(t, l, domain.BatchAuctionAccount, "USDC", "0")
	requireBalance(t, l, domain.BatchAuctionAccount, "DAI", "0")
}

func requireBalance(t *testing.T, l *ledger.Ledger, account, token, expected string) {
	t.Helper()

	balance, err := l.BalanceOf(context.Background(), account, token)
	require.NoError(t, err)
	require.Truef(
		t, balance.Eq(fixed.MustParse(expected)),
		"%s %s: expected %s, got %s", account, token, expected, balance,
	)
}
