package domain

import (
	"fmt"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// NewTrade validates the request and computes the price bounds of the
// auction. The worst case price accounts for the trader's max slippage.
func NewTrade(
	id, origin string, kind TradeKind, req TradeRequest, prices TradePrices,
	maxTradeSlippage fixed.Fix,
) (*Trade, error) {
	if kind != DutchAuction && kind != BatchAuction {
		return nil, ErrUnknownAuctionKind
	}
	if req.Sell == "" || req.Buy == "" || req.Sell == req.Buy {
		return nil, fmt.Errorf("%w: invalid tokens", ErrInvalidTradeRequest)
	}
	if req.SellAmount.IsZero() {
		return nil, fmt.Errorf("%w: zero sell amount", ErrInvalidTradeRequest)
	}
	if maxTradeSlippage.Gt(MaxTradeSlippage) {
		return nil, fmt.Errorf("%w: invalid maxTradeSlippage", ErrInvalidTradeRequest)
	}
	if kind == DutchAuction {
		if prices.SellLow.IsZero() || prices.SellHigh.IsMax() ||
			prices.SellLow.Gt(prices.SellHigh) {
			return nil, ErrBadSellPricing
		}
		if prices.BuyLow.IsZero() || prices.BuyHigh.IsMax() ||
			prices.BuyLow.Gt(prices.BuyHigh) {
			return nil, ErrBadBuyPricing
		}
	}

	worst := prices.SellLow.
		MulDiv(fixed.One.Minus(maxTradeSlippage), prices.BuyHigh, fixed.Floor)
	if worst.IsZero() || prices.BuyHigh.IsZero() {
		worst = req.MinBuyAmount.Div(req.SellAmount)
	}
	best := prices.SellHigh.DivRnd(prices.BuyLow, fixed.Ceil)
	if best.Lt(worst) {
		best = worst
	}

	return &Trade{
		ID:             id,
		Origin:         origin,
		Kind:           kind,
		Status:         TradeStatusNotStarted,
		Sell:           req.Sell,
		Buy:            req.Buy,
		SellDecimals:   req.SellDecimals,
		BuyDecimals:    req.BuyDecimals,
		SellAmount:     req.SellAmount,
		MinBuyAmount:   req.MinBuyAmount,
		WorstCasePrice: worst,
		BestPrice:      best,
	}, nil
}

// Open brings the trade from NOT_STARTED to OPEN.
func (t *Trade) Open(now, auctionLength int64) error {
	if t.Status != TradeStatusNotStarted {
		return ErrInvalidTradeState
	}
	if auctionLength <= 0 {
		return fmt.Errorf("%w: invalid auction length", ErrInvalidTradeRequest)
	}

	t.StartTime = now
	t.EndTime = now + auctionLength
	t.Status = TradeStatusOpen
	return nil
}

// BidAmount returns the amount of buy tokens a bidder has to pay at the
// given time to take the whole lot of a dutch auction.
func (t *Trade) BidAmount(now int64) (fixed.Fix, error) {
	if t.Kind != DutchAuction {
		return fixed.Zero, ErrInvalidTradeState
	}
	if now < t.StartTime || now > t.EndTime {
		return fixed.Zero, ErrAuctionNotOngoing
	}
	price := StrategyForKind(t.Kind).Price(t, now)
	return t.SellAmount.MulRnd(price, fixed.Ceil).Quantize(t.BuyDecimals, fixed.Ceil), nil
}

// Bid closes a dutch auction in favour of the given bidder, who pays the
// returned amount of buy tokens and receives the whole lot.
func (t *Trade) Bid(now int64, bidder string) (fixed.Fix, error) {
	if t.Status != TradeStatusOpen {
		return fixed.Zero, ErrInvalidTradeState
	}
	amount, err := t.BidAmount(now)
	if err != nil {
		return fixed.Zero, err
	}

	t.Bidder = bidder
	t.SoldAmount = t.SellAmount
	t.BoughtAmount = amount
	t.SettledAt = now
	t.Status = TradeStatusClosed
	// the whole lot goes to the bidder
	t.EscrowReleased = true
	return amount, nil
}

// RevertBid reopens a dutch auction closed by Bid whose payment did not go
// through.
func (t *Trade) RevertBid(bidder string) error {
	if t.Status != TradeStatusClosed || t.Bidder != bidder {
		return ErrInvalidTradeState
	}

	t.Bidder = ""
	t.SoldAmount = fixed.Zero
	t.BoughtAmount = fixed.Zero
	t.SettledAt = 0
	t.Status = TradeStatusOpen
	t.EscrowReleased = false
	return nil
}

// CanSettle returns whether the trade can be settled at the given time.
func (t *Trade) CanSettle(now int64) bool {
	if t.Status != TradeStatusOpen {
		return false
	}
	if t.Kind == DutchAuction {
		return now > t.EndTime
	}
	return now >= t.EndTime
}

// Settle brings the trade to CLOSED recording the realized amounts. Settling
// an already closed trade is a no-op.
func (t *Trade) Settle(now int64, sold, bought fixed.Fix) (bool, error) {
	if t.Status == TradeStatusClosed {
		return true, nil
	}
	if t.Status != TradeStatusOpen {
		return false, ErrInvalidTradeState
	}
	if !t.CanSettle(now) {
		return false, ErrAuctionNotOver
	}

	t.SoldAmount = sold
	t.BoughtAmount = bought
	t.SettledAt = now
	t.Status = TradeStatusClosed
	return true, nil
}

// ClearingPrice returns the realized price in buy tokens per sell token.
func (t *Trade) ClearingPrice() fixed.Fix {
	if t.SoldAmount.IsZero() {
		return fixed.Zero
	}
	return t.BoughtAmount.Div(t.SoldAmount)
}

// IsViolation tells whether the realized price breaches the worst case
// price in a way that must trip the circuit breaker of the trade kind.
func (t *Trade) IsViolation() bool {
	return StrategyForKind(t.Kind).IsViolation(t)
}

// IsStranded tells whether the trade is closed but its escrow still holds
// value owed to the origin.
func (t *Trade) IsStranded() bool {
	return t.Status == TradeStatusClosed && !t.EscrowReleased
}

func (t *Trade) IsOpen() bool {
	return t.Status == TradeStatusOpen
}

func (t *Trade) IsClosed() bool {
	return t.Status == TradeStatusClosed
}
