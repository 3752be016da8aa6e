package domain

import (
	"fmt"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// NextBasket computes the concrete basket satisfying the prime basket with
// the collateral that is currently SOUND. The unsound weight of a target unit
// is split evenly among the first SOUND entries of its backup config. The
// returned flag is false if any target unit could not be satisfied or the
// result is empty.
func NextBasket(
	prime *PrimeBasket, backups map[string]*BackupConfig,
	assets AssetSet, now int64,
) ([]string, []fixed.Fix, bool) {
	acc := newRefAccumulator()
	unsound := make(map[string]fixed.Fix)

	for _, e := range prime.Entries {
		a, ok := goodCollateral(assets, e.ERC20, e.TargetName, now)
		if !ok {
			unsound[e.TargetName] = unsound[e.TargetName].Plus(e.TargetAmt)
			continue
		}
		acc.add(e.ERC20, e.TargetAmt.DivRnd(a.Collateral.TargetPerRef, fixed.Ceil))
	}

	complete := true
	for _, name := range prime.TargetNames() {
		weight, ok := unsound[name]
		if !ok {
			continue
		}

		substitutes := make([]*Asset, 0)
		if cfg := backups[name]; cfg != nil {
			for _, erc20 := range cfg.ERC20s {
				if len(substitutes) >= cfg.Max {
					break
				}
				if a, ok := goodCollateral(assets, erc20, name, now); ok {
					substitutes = append(substitutes, a)
				}
			}
		}
		if len(substitutes) == 0 {
			complete = false
			continue
		}

		share := weight.DivRnd(fixed.NewFromInt(int64(len(substitutes))), fixed.Ceil)
		for _, a := range substitutes {
			acc.add(a.ERC20, share.DivRnd(a.Collateral.TargetPerRef, fixed.Ceil))
		}
	}

	if len(acc.erc20s) == 0 {
		complete = false
	}
	return acc.erc20s, acc.amounts(), complete
}

func goodCollateral(
	assets AssetSet, erc20, targetName string, now int64,
) (*Asset, bool) {
	a, ok := assets.Collateral(erc20)
	if !ok {
		return nil, false
	}
	c := a.Collateral
	if c.TargetName != targetName || c.Status(now) != CollateralStatusSound {
		return nil, false
	}
	if c.RefPerTok.IsZero() || c.TargetPerRef.IsZero() {
		return nil, false
	}
	return a, true
}

// IsEmpty ...
func (b *Basket) IsEmpty() bool {
	return len(b.ERC20s) == 0
}

// RefAmount returns the reference amount of the given erc20 per basket unit.
func (b *Basket) RefAmount(erc20 string) (fixed.Fix, bool) {
	for i, e := range b.ERC20s {
		if e == erc20 {
			return b.RefAmts[i], true
		}
	}
	return fixed.Zero, false
}

// Contains ...
func (b *Basket) Contains(erc20 string) bool {
	_, ok := b.RefAmount(erc20)
	return ok
}

// Status returns the worst status among the constituents. A disabled or empty
// basket, or one with an unregistered constituent, is DISABLED.
func (b *Basket) Status(assets AssetSet, now int64) CollateralStatus {
	if b.Disabled || b.IsEmpty() {
		return CollateralStatusDisabled
	}

	status := CollateralStatusSound
	for _, erc20 := range b.ERC20s {
		a, ok := assets.Collateral(erc20)
		if !ok {
			return CollateralStatusDisabled
		}
		status = WorseStatus(status, a.Status(now))
	}
	return status
}

// Quantity returns the whole-token amount of erc20 per basket unit. It
// saturates to MaxValue if the constituent's refPerTok is zero and returns
// zero for tokens not in the basket.
func (b *Basket) Quantity(
	erc20 string, assets AssetSet, rnd fixed.RoundingMode,
) fixed.Fix {
	refAmt, ok := b.RefAmount(erc20)
	if !ok {
		return fixed.Zero
	}
	a, ok := assets.Collateral(erc20)
	if !ok {
		return fixed.MaxValue
	}
	return refAmt.DivRnd(a.Collateral.RefPerTok, rnd)
}

// Quote returns the token quantities needed for, or due to, the given amount
// of basket units. CEIL is for inflows, FLOOR for outflows.
func (b *Basket) Quote(
	amount fixed.Fix, rnd fixed.RoundingMode, useIssuancePremium bool,
	assets AssetSet,
) ([]string, []fixed.Fix) {
	erc20s := make([]string, 0, len(b.ERC20s))
	quantities := make([]fixed.Fix, 0, len(b.ERC20s))

	for i, erc20 := range b.ERC20s {
		erc20s = append(erc20s, erc20)

		a, ok := assets.Collateral(erc20)
		if !ok {
			quantities = append(quantities, fixed.Zero)
			continue
		}

		q := amount.MulDiv(b.RefAmts[i], a.Collateral.RefPerTok, rnd)
		if useIssuancePremium {
			q = q.MulRnd(a.Collateral.IssuancePremium(), fixed.Ceil)
		}
		if !q.IsMax() {
			q = a.ToTokenAmount(q, rnd)
		}
		quantities = append(quantities, q)
	}

	return erc20s, quantities
}

// Price returns the low and high value of one basket unit. DISABLED
// constituents count zero in the low estimate but their full value in the
// high one. Unregistered constituents count zero in both, as in Quote. An
// empty basket is unpriced.
func (b *Basket) Price(
	assets AssetSet, now int64, useIssuancePremium bool,
) Price {
	if b.IsEmpty() {
		return Unpriced()
	}

	low, high := fixed.Zero, fixed.Zero
	for i, erc20 := range b.ERC20s {
		a, ok := assets.Collateral(erc20)
		if !ok {
			continue
		}

		q := b.RefAmts[i].DivRnd(a.Collateral.RefPerTok, fixed.Ceil)
		if useIssuancePremium {
			q = q.MulRnd(a.Collateral.IssuancePremium(), fixed.Ceil)
		}
		p := a.Price(now)
		if a.Status(now) != CollateralStatusDisabled {
			low = low.Plus(q.Mul(p.Low))
		}
		high = high.Plus(q.MulRnd(p.High, fixed.Ceil))
	}

	return Price{Low: low, High: high}
}

// BasketsHeldBy returns how many basket units the given balances can
// assemble.
func (b *Basket) BasketsHeldBy(
	balanceOf BalanceFunc, assets AssetSet,
) BasketRange {
	if b.Disabled || b.IsEmpty() {
		return BasketRange{fixed.Zero, fixed.Zero}
	}

	bottom, top := fixed.MaxValue, fixed.Zero
	for _, erc20 := range b.ERC20s {
		q := b.Quantity(erc20, assets, fixed.Ceil)
		if q.IsZero() {
			continue
		}
		if q.IsMax() {
			bottom = fixed.Zero
			continue
		}

		bal := balanceOf(erc20)
		bottom = fixed.Min(bottom, bal.Div(q))
		top = fixed.Max(top, bal.DivRnd(q, fixed.Ceil))
	}

	if bottom.IsMax() {
		bottom = fixed.Zero
	}
	return BasketRange{bottom, top}
}

// QuoteCustomRedemption blends the quantities of historical baskets weighted
// by portions, which must add up to exactly one. Constituents that are no
// longer registered collateral contribute zero.
func QuoteCustomRedemption(
	baskets []*Basket, portions []fixed.Fix, amount fixed.Fix, assets AssetSet,
) ([]string, []fixed.Fix, error) {
	if len(baskets) != len(portions) {
		return nil, nil, fmt.Errorf("%w: must be same length", ErrInvalidPortions)
	}
	total := fixed.Zero
	for _, p := range portions {
		total = total.Plus(p)
	}
	if !total.Eq(fixed.One) {
		return nil, nil, ErrInvalidPortions
	}

	acc := newRefAccumulator()
	for i, b := range baskets {
		for j, erc20 := range b.ERC20s {
			a, ok := assets.Collateral(erc20)
			if !ok || a.Collateral.RefPerTok.IsZero() {
				acc.add(erc20, fixed.Zero)
				continue
			}
			q := b.RefAmts[j].Mul(portions[i]).Div(a.Collateral.RefPerTok)
			acc.add(erc20, q)
		}
	}

	quantities := make([]fixed.Fix, 0, len(acc.erc20s))
	for _, erc20 := range acc.erc20s {
		q := amount.Mul(acc.byERC20[erc20])
		if a := assets.Get(erc20); a != nil {
			q = a.ToTokenAmount(q, fixed.Floor)
		}
		quantities = append(quantities, q)
	}
	return acc.erc20s, quantities, nil
}

type refAccumulator struct {
	erc20s  []string
	byERC20 map[string]fixed.Fix
}

func newRefAccumulator() *refAccumulator {
	return &refAccumulator{
		erc20s:  make([]string, 0),
		byERC20: make(map[string]fixed.Fix),
	}
}

func (r *refAccumulator) add(erc20 string, amount fixed.Fix) {
	if _, ok := r.byERC20[erc20]; !ok {
		r.erc20s = append(r.erc20s, erc20)
	}
	r.byERC20[erc20] = r.byERC20[erc20].Plus(amount)
}

func (r *refAccumulator) amounts() []fixed.Fix {
	amounts := make([]fixed.Fix, 0, len(r.erc20s))
	for _, erc20 := range r.erc20s {
		amounts = append(amounts, r.byERC20[erc20])
	}
	return amounts
}
