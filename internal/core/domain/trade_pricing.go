package domain

import (
	"github.com/shopspring/decimal"
	"github.com/tdex-network/basketd/pkg/fixed"
)

var (
	// DutchGeometricPhase is the fraction of the auction during which the
	// price decays geometrically from DutchStartMultiplier×best to best.
	DutchGeometricPhase = fixed.MustParse("0.2")
	// DutchKneePoint is the fraction of the auction at which the price is
	// halfway between best and worst case. The price then keeps descending
	// linearly until it reaches the worst case price at the end time.
	DutchKneePoint = fixed.MustParse("0.45")
	// DutchStartMultiplier is applied to the best price when the auction
	// opens.
	DutchStartMultiplier = fixed.MustParse("1.5")
)

const (
	expPrecision        = 18
	multiplierPrecision = 12
)

// PricingStrategy holds the kind-specific pricing rules of a trade.
type PricingStrategy interface {
	// Price returns the price, in buy tokens per sell token, at which the
	// trade can be taken at the given time.
	Price(t *Trade, now int64) fixed.Fix
	// IsViolation tells whether a settled trade cleared at a price that the
	// mechanism should have made impossible.
	IsViolation(t *Trade) bool
}

// StrategyForKind returns the pricing strategy of the given trade kind.
func StrategyForKind(kind TradeKind) PricingStrategy {
	if kind == BatchAuction {
		return BatchPricing{}
	}
	return DutchPricing{}
}

// lnStartMultiplier is ln(1.5).
var lnStartMultiplier = decimal.RequireFromString(
	"0.405465108108164381978013115464349137",
)

// DutchPricing is the descending price curve of a dutch auction.
type DutchPricing struct{}

func (DutchPricing) Price(t *Trade, now int64) fixed.Fix {
	progression := auctionProgression(t.StartTime, t.EndTime, now)

	if progression.Lt(DutchGeometricPhase) {
		remaining := DutchGeometricPhase.Minus(progression).Div(DutchGeometricPhase)
		multiplier := fixed.Max(startMultiplier(remaining), fixed.One)
		return t.BestPrice.MulRnd(multiplier, fixed.Ceil)
	}

	middlePrice := t.BestPrice.Plus(t.WorstCasePrice).DivRnd(
		fixed.NewFromInt(2), fixed.Floor,
	)
	if progression.Lt(DutchKneePoint) {
		return linearDecay(
			t.BestPrice, middlePrice, progression, DutchGeometricPhase, DutchKneePoint,
		)
	}
	return linearDecay(
		middlePrice, t.WorstCasePrice, progression, DutchKneePoint, fixed.One,
	)
}

// startMultiplier returns DutchStartMultiplier^remaining, computed as
// e^(remaining·ln(DutchStartMultiplier)) since decimal powers are integer only.
func startMultiplier(remaining fixed.Fix) fixed.Fix {
	exponent := remaining.Decimal().Mul(lnStartMultiplier).Round(expPrecision)
	exp, err := exponent.ExpTaylor(expPrecision)
	if err != nil {
		return DutchStartMultiplier
	}
	return fixed.FromDecimal(exp.Round(multiplierPrecision), fixed.Ceil)
}

// linearDecay interpolates between from and to as progression moves from
// start to end.
func linearDecay(from, to, progression, start, end fixed.Fix) fixed.Fix {
	if progression.Gte(end) {
		return to
	}
	elapsed := progression.Minus(start)
	drop := from.Minus(to).MulDiv(elapsed, end.Minus(start), fixed.Floor)
	return from.Minus(drop)
}

// IsViolation is always false since the curve never goes below the worst
// case price.
func (DutchPricing) IsViolation(_ *Trade) bool {
	return false
}

// BatchPricing delegates price discovery to the batch auction venue.
type BatchPricing struct{}

// Price returns the min acceptable price, the only one known in advance.
func (BatchPricing) Price(t *Trade, _ int64) fixed.Fix {
	return t.WorstCasePrice
}

func (BatchPricing) IsViolation(t *Trade) bool {
	if !t.IsClosed() || t.SoldAmount.IsZero() {
		return false
	}
	return t.ClearingPrice().Lt(t.WorstCasePrice)
}

func auctionProgression(start, end, now int64) fixed.Fix {
	if end <= start || now >= end {
		return fixed.One
	}
	if now <= start {
		return fixed.Zero
	}
	return fixed.NewFromInt(now - start).Div(fixed.NewFromInt(end - start))
}
