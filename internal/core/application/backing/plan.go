package backing

import (
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

// PlanInput is the snapshot the rebalancing decision is taken on.
type PlanInput struct {
	Assets        domain.AssetSet
	Basket        *domain.Basket
	BasketsNeeded fixed.Fix
	Balances      domain.BalanceFunc
	Config        domain.BackingConfig
	IssuedToken   string
	Now           int64
}

type candidate struct {
	asset  *domain.Asset
	amount fixed.Fix
	value  fixed.Fix
	price  domain.Price
}

// PlanRebalance picks the single best trade restoring the backing: the
// largest surplus is sold for the largest deficit. It returns false if
// there's nothing worth trading.
func PlanRebalance(in PlanInput) (domain.TradeRequest, domain.TradePrices, bool) {
	surplus, deficit := surplusAndDeficit(in)
	if surplus == nil || deficit == nil {
		return domain.TradeRequest{}, domain.TradePrices{}, false
	}

	slippage := in.Config.MaxTradeSlippage
	sell, buy := surplus.asset, deficit.asset
	prices := domain.TradePrices{
		SellLow:  surplus.price.Low,
		SellHigh: surplus.price.High,
		BuyLow:   deficit.price.Low,
		BuyHigh:  deficit.price.High,
	}

	// sell enough to cover the deficit in the worst case
	toCover := deficit.amount.
		MulDiv(prices.BuyHigh, prices.SellLow, fixed.Ceil).
		DivRnd(fixed.One.Minus(slippage), fixed.Ceil)
	maxVolume := fixed.Min(sell.MaxTradeVolume, buy.MaxTradeVolume).
		Div(prices.SellHigh)

	sellAmount := fixed.Min(surplus.amount, fixed.Min(toCover, maxVolume))
	sellAmount = sell.ToTokenAmount(sellAmount, fixed.Floor)
	if sellAmount.IsZero() {
		return domain.TradeRequest{}, domain.TradePrices{}, false
	}

	minBuyAmount := MinBuyAmount(sellAmount, prices, slippage)
	minBuyAmount = buy.ToTokenAmount(minBuyAmount, fixed.Ceil)

	return domain.TradeRequest{
		Sell:         sell.ERC20,
		Buy:          buy.ERC20,
		SellDecimals: sell.Decimals,
		BuyDecimals:  buy.Decimals,
		SellAmount:   sellAmount,
		MinBuyAmount: minBuyAmount,
	}, prices, true
}

// MinBuyAmount is the amount of buy tokens sellAmount is worth in the worst
// case, net of the max slippage.
func MinBuyAmount(
	sellAmount fixed.Fix, prices domain.TradePrices, slippage fixed.Fix,
) fixed.Fix {
	if prices.BuyHigh.IsZero() || prices.BuyHigh.IsMax() {
		return fixed.Zero
	}
	return sellAmount.
		MulDiv(prices.SellLow, prices.BuyHigh, fixed.Ceil).
		MulRnd(fixed.One.Minus(slippage), fixed.Ceil)
}

// surplusAndDeficit scans the registered assets in registration order, so
// that ties are won by the earliest registered.
func surplusAndDeficit(in PlanInput) (*candidate, *candidate) {
	buffer := fixed.One.Plus(in.Config.BackingBuffer)

	surpluses := make([]*candidate, 0)
	var deficit *candidate
	for _, a := range in.Assets.List() {
		if a.ERC20 == in.IssuedToken {
			continue
		}
		price := a.Price(in.Now)
		held := in.Balances(a.ERC20)
		needed := fixed.Zero
		if in.Basket != nil && in.Basket.Contains(a.ERC20) {
			needed = in.Basket.Quantity(a.ERC20, in.Assets, fixed.Ceil).
				MulRnd(in.BasketsNeeded, fixed.Ceil)
		}

		if threshold := needed.MulRnd(buffer, fixed.Ceil); held.Gt(threshold) {
			if price.Low.IsZero() {
				continue
			}
			amount := held.Minus(threshold)
			surpluses = append(surpluses, &candidate{
				asset:  a,
				amount: amount,
				value:  amount.Mul(price.Low),
				price:  price,
			})
			continue
		}

		if held.Lt(needed) && !price.High.IsMax() && !price.Low.IsZero() {
			amount := needed.Minus(held)
			value := amount.MulRnd(price.High, fixed.Ceil)
			if deficit == nil || value.Gt(deficit.value) {
				deficit = &candidate{a, amount, value, price}
			}
		}
	}

	return bestSurplus(surpluses, in.Config.MinTradeVolume), deficit
}

// bestSurplus picks the largest surplus at or above the min trade volume.
// When every surplus is dust the largest dust one is sold, otherwise it
// would be stuck forever.
func bestSurplus(surpluses []*candidate, minTradeVolume fixed.Fix) *candidate {
	var best, bestDust *candidate
	for _, c := range surpluses {
		if c.value.Lt(minTradeVolume) {
			if bestDust == nil || c.value.Gt(bestDust.value) {
				bestDust = c
			}
			continue
		}
		if best == nil || c.value.Gt(best.value) {
			best = c
		}
	}
	if best == nil {
		return bestDust
	}
	return best
}
