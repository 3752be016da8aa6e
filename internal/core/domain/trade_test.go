package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

var (
	slippage = fixed.MustParse("0.01")
	prices   = domain.TradePrices{
		SellLow:  fixed.MustParse("0.99"),
		SellHigh: fixed.MustParse("1.01"),
		BuyLow:   fixed.MustParse("0.99"),
		BuyHigh:  fixed.MustParse("1.01"),
	}
	request = domain.TradeRequest{
		Sell:         "A",
		Buy:          "B",
		SellDecimals: 18,
		BuyDecimals:  18,
		SellAmount:   fixed.NewFromInt(100),
		MinBuyAmount: fixed.NewFromInt(97),
	}
)

func TestNewTrade(t *testing.T) {
	t.Parallel()

	trade, err := domain.NewTrade("id", "backingManager", domain.DutchAuction, request, prices, slippage)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusNotStarted, trade.Status)
	require.Equal(t, "0.970396039603960396", trade.WorstCasePrice.String())
	require.Equal(t, "1.020202020202020203", trade.BestPrice.String())

	t.Run("unpriced_sell_token_uses_min_buy_amount", func(t *testing.T) {
		unpriced := prices
		unpriced.SellLow = fixed.Zero
		unpriced.SellHigh = fixed.MaxValue
		trade, err := domain.NewTrade("id", "backingManager", domain.BatchAuction, request, unpriced, slippage)
		require.NoError(t, err)
		require.Equal(t, "0.97", trade.WorstCasePrice.String())
	})
}

func TestFailingNewTrade(t *testing.T) {
	t.Parallel()

	unpricedSell := prices
	unpricedSell.SellLow = fixed.Zero
	unpricedBuy := prices
	unpricedBuy.BuyHigh = fixed.MaxValue
	sameTokens := request
	sameTokens.Buy = request.Sell
	zeroAmount := request
	zeroAmount.SellAmount = fixed.Zero

	tests := []struct {
		name          string
		kind          domain.TradeKind
		req           domain.TradeRequest
		prices        domain.TradePrices
		slippage      fixed.Fix
		expectedError error
	}{
		{"unknown_kind", domain.TradeKind(7), request, prices, slippage, domain.ErrUnknownAuctionKind},
		{"same_tokens", domain.DutchAuction, sameTokens, prices, slippage, domain.ErrInvalidTradeRequest},
		{"zero_amount", domain.BatchAuction, zeroAmount, prices, slippage, domain.ErrInvalidTradeRequest},
		{"slippage_too_high", domain.BatchAuction, request, prices, fixed.NewFromInt(2), domain.ErrInvalidTradeRequest},
		{"dutch_unpriced_sell", domain.DutchAuction, request, unpricedSell, slippage, domain.ErrBadSellPricing},
		{"dutch_unpriced_buy", domain.DutchAuction, request, unpricedBuy, slippage, domain.ErrBadBuyPricing},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trade, err := domain.NewTrade("id", "origin", tt.kind, tt.req, tt.prices, tt.slippage)
			require.ErrorIs(t, err, tt.expectedError)
			require.Nil(t, trade)
		})
	}
}

func TestDutchCurve(t *testing.T) {
	t.Parallel()

	trade, err := domain.NewTrade("id", "origin", domain.DutchAuction, request, prices, slippage)
	require.NoError(t, err)
	require.NoError(t, trade.Open(now, 1000))
	require.ErrorIs(t, trade.Open(now, 1000), domain.ErrInvalidTradeState)

	pricing := domain.DutchPricing{}
	start := pricing.Price(trade, now)
	require.True(t, start.Eq(trade.BestPrice.MulRnd(fixed.MustParse("1.5"), fixed.Ceil)))
	require.True(t, pricing.Price(trade, now+200).Eq(trade.BestPrice))
	middle := trade.BestPrice.Plus(trade.WorstCasePrice).DivRnd(fixed.NewFromInt(2), fixed.Floor)
	require.True(t, pricing.Price(trade, now+450).Eq(middle))
	require.True(t, pricing.Price(trade, now+950).Gt(trade.WorstCasePrice))
	require.True(t, pricing.Price(trade, now+950).Lt(middle))
	require.True(t, pricing.Price(trade, now+1000).Eq(trade.WorstCasePrice))

	prev := fixed.MaxValue
	for ts := now; ts <= now+1000; ts += 10 {
		p := pricing.Price(trade, ts)
		require.True(t, p.Lte(prev), "price increased at %d", ts-now)
		if ts > now+200 && ts < now+1000 {
			require.True(t, p.Lt(prev), "price flat at %d", ts-now)
		}
		require.True(t, p.Gte(trade.WorstCasePrice))
		prev = p
	}

	amount, err := trade.BidAmount(now + 200)
	require.NoError(t, err)
	require.True(t, amount.Eq(request.SellAmount.MulRnd(trade.BestPrice, fixed.Ceil)))

	_, err = trade.BidAmount(now + 1001)
	require.ErrorIs(t, err, domain.ErrAuctionNotOngoing)
}

func TestDutchBid(t *testing.T) {
	t.Parallel()

	trade, err := domain.NewTrade("id", "origin", domain.DutchAuction, request, prices, slippage)
	require.NoError(t, err)

	_, err = trade.Bid(now, "bidder")
	require.ErrorIs(t, err, domain.ErrInvalidTradeState)

	require.NoError(t, trade.Open(now, 1000))
	require.False(t, trade.CanSettle(now+1000))
	require.True(t, trade.CanSettle(now+1001))

	amount, err := trade.Bid(now+500, "bidder")
	require.NoError(t, err)
	require.True(t, trade.IsClosed())
	require.Equal(t, "bidder", trade.Bidder)
	require.True(t, trade.SoldAmount.Eq(request.SellAmount))
	require.True(t, trade.BoughtAmount.Eq(amount))
	require.False(t, trade.IsViolation())
	require.False(t, trade.IsStranded())

	_, err = trade.Bid(now+501, "other")
	require.ErrorIs(t, err, domain.ErrInvalidTradeState)

	require.ErrorIs(t, trade.RevertBid("other"), domain.ErrInvalidTradeState)
	require.NoError(t, trade.RevertBid("bidder"))
	require.True(t, trade.IsOpen())
	require.Empty(t, trade.Bidder)
	require.True(t, trade.SoldAmount.IsZero())
	require.True(t, trade.BoughtAmount.IsZero())
	require.False(t, trade.EscrowReleased)

	_, err = trade.Bid(now+502, "other")
	require.NoError(t, err)
	require.Equal(t, "other", trade.Bidder)
}

func TestIsEscrowAccount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		account  string
		expected bool
	}{
		{domain.BatchAuctionAccount, true},
		{domain.TradeAccount("id"), true},
		{domain.BackingManagerAccount, false},
		{"bob", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.account, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, domain.IsEscrowAccount(tt.account))
		})
	}
}

func TestBatchSettlement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bought    string
		violation bool
	}{
		{"cleared_above_worst_price", "99", false},
		{"cleared_at_worst_price", "97.0396039603960396", false},
		{"cleared_below_worst_price", "80", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trade, err := domain.NewTrade("id", "origin", domain.BatchAuction, request, prices, slippage)
			require.NoError(t, err)
			require.NoError(t, trade.Open(now, 1000))

			_, err = trade.Settle(now+999, request.SellAmount, fixed.Zero)
			require.ErrorIs(t, err, domain.ErrAuctionNotOver)

			done, err := trade.Settle(now+1000, request.SellAmount, fixed.MustParse(tt.bought))
			require.NoError(t, err)
			require.True(t, done)
			require.Equal(t, tt.violation, trade.IsViolation())

			done, err = trade.Settle(now+1001, fixed.Zero, fixed.Zero)
			require.NoError(t, err)
			require.True(t, done)
			require.True(t, trade.BoughtAmount.Eq(fixed.MustParse(tt.bought)))
		})
	}
}
