package domain_test

import (
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const now = int64(1700000000)

var (
	one  = fixed.One
	half = fixed.MustParse("0.5")
)

func newCollateral(erc20, target string, index int) *domain.Asset {
	return &domain.Asset{
		ERC20:          erc20,
		Symbol:         erc20,
		Decimals:       18,
		MaxTradeVolume: fixed.NewFromInt(1000000),
		Feed:           erc20,
		OracleError:    fixed.MustParse("0.01"),
		OracleTimeout:  3600,
		PriceTimeout:   3600,
		Index:          index,
		Collateral: &domain.Collateral{
			TargetName:        target,
			RefPerTok:         fixed.One,
			TargetPerRef:      fixed.One,
			PegBottom:         fixed.MustParse("0.95"),
			PegTop:            fixed.MustParse("1.05"),
			DelayUntilDefault: 86400,
			WhenDefault:       domain.NeverDefault,
		},
	}
}

func newPlainAsset(erc20 string, index int) *domain.Asset {
	return &domain.Asset{
		ERC20:          erc20,
		Symbol:         erc20,
		Decimals:       18,
		MaxTradeVolume: fixed.NewFromInt(1000000),
		Feed:           erc20,
		OracleError:    fixed.MustParse("0.01"),
		OracleTimeout:  3600,
		PriceTimeout:   3600,
		Index:          index,
	}
}

func observe(price string, ts int64) *domain.Observation {
	return &domain.Observation{
		RefPrice:  fixed.MustParse(price),
		Timestamp: ts,
	}
}

func refreshAll(ts int64, price string, assets ...*domain.Asset) {
	for _, a := range assets {
		a.Refresh(ts, observe(price, ts))
	}
}
