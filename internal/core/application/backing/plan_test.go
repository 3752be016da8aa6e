package backing_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/application/backing"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const now = int64(1700000000)

func pricedAsset(erc20 string, index int, collateral bool) *domain.Asset {
	a := &domain.Asset{
		ERC20:          erc20,
		Symbol:         erc20,
		Decimals:       18,
		MaxTradeVolume: fixed.NewFromInt(1000000),
		Feed:           erc20,
		OracleError:    fixed.MustParse("0.01"),
		OracleTimeout:  3600,
		PriceTimeout:   3600,
		Index:          index,
		SavedLow:       fixed.MustParse("0.99"),
		SavedHigh:      fixed.MustParse("1.01"),
		LastSave:       now,
	}
	if collateral {
		a.Collateral = &domain.Collateral{
			TargetName:        "USD",
			RefPerTok:         fixed.One,
			TargetPerRef:      fixed.One,
			PegBottom:         fixed.MustParse("0.95"),
			PegTop:            fixed.MustParse("1.05"),
			DelayUntilDefault: 86400,
			WhenDefault:       domain.NeverDefault,
		}
	}
	return a
}

func planInput(balances map[string]string, extra ...*domain.Asset) backing.PlanInput {
	assets := append([]*domain.Asset{pricedAsset("USDC", 0, true)}, extra...)
	return backing.PlanInput{
		Assets: domain.NewAssetSet(assets),
		Basket: &domain.Basket{
			Nonce:   1,
			ERC20s:  []string{"USDC"},
			RefAmts: []fixed.Fix{fixed.One},
		},
		BasketsNeeded: fixed.NewFromInt(100),
		Balances: func(erc20 string) fixed.Fix {
			if b, ok := balances[erc20]; ok {
				return fixed.MustParse(b)
			}
			return fixed.Zero
		},
		Config: domain.BackingConfig{
			MaxTradeSlippage: fixed.MustParse("0.01"),
			BackingBuffer:    fixed.Zero,
			MinTradeVolume:   fixed.One,
		},
		IssuedToken: "RSV",
		Now:         now,
	}
}

func TestPlanRebalance(t *testing.T) {
	t.Parallel()

	unpriced := pricedAsset("USDC", 0, true)
	unpriced.LastSave = 0

	tests := []struct {
		name         string
		in           backing.PlanInput
		expectedOk   bool
		expectedSell string
		expectedAmt  string
	}{
		{
			name:         "surplus for deficit",
			in:           planInput(map[string]string{"COMP": "30"}, pricedAsset("COMP", 1, false)),
			expectedOk:   true,
			expectedSell: "COMP",
			expectedAmt:  "30",
		},
		{
			name: "largest surplus wins",
			in: planInput(
				map[string]string{"COMP": "30", "AAVE": "40"},
				pricedAsset("COMP", 1, false), pricedAsset("AAVE", 2, false),
			),
			expectedOk:   true,
			expectedSell: "AAVE",
			expectedAmt:  "40",
		},
		{
			name: "dust surplus is skipped",
			in: planInput(
				map[string]string{"COMP": "30", "AAVE": "0.5"},
				pricedAsset("AAVE", 1, false), pricedAsset("COMP", 2, false),
			),
			expectedOk:   true,
			expectedSell: "COMP",
			expectedAmt:  "30",
		},
		{
			name:         "dust surplus is sold if it's the only one",
			in:           planInput(map[string]string{"AAVE": "0.5"}, pricedAsset("AAVE", 1, false)),
			expectedOk:   true,
			expectedSell: "AAVE",
			expectedAmt:  "0.5",
		},
		{
			name: "largest dust surplus is sold if all are dust",
			in: planInput(
				map[string]string{"AAVE": "0.5", "COMP": "0.4"},
				pricedAsset("AAVE", 1, false), pricedAsset("COMP", 2, false),
			),
			expectedOk:   true,
			expectedSell: "AAVE",
			expectedAmt:  "0.5",
		},
		{
			name:         "sell amount covers at most the deficit",
			in:           planInput(map[string]string{"USDC": "90", "COMP": "1000"}, pricedAsset("COMP", 1, false)),
			expectedOk:   true,
			expectedSell: "COMP",
			expectedAmt:  "10.305070911131517193",
		},
		{
			name:       "issued token is never sold",
			in:         planInput(map[string]string{"RSV": "30"}, pricedAsset("RSV", 1, false)),
			expectedOk: false,
		},
		{
			name:       "no deficit",
			in:         planInput(map[string]string{"USDC": "100", "COMP": "30"}, pricedAsset("COMP", 1, false)),
			expectedOk: false,
		},
		{
			name: "unpriced deficit",
			in: func() backing.PlanInput {
				in := planInput(map[string]string{"COMP": "30"}, pricedAsset("COMP", 1, false))
				in.Assets = domain.NewAssetSet([]*domain.Asset{
					unpriced, pricedAsset("COMP", 1, false),
				})
				return in
			}(),
			expectedOk: false,
		},
		{
			name: "held within buffer",
			in: func() backing.PlanInput {
				in := planInput(map[string]string{"USDC": "105"})
				in.BasketsNeeded = fixed.NewFromInt(100)
				in.Config.BackingBuffer = fixed.MustParse("0.1")
				return in
			}(),
			expectedOk: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, prices, ok := backing.PlanRebalance(tt.in)
			require.Equal(t, tt.expectedOk, ok)
			if !tt.expectedOk {
				return
			}

			require.Equal(t, tt.expectedSell, req.Sell)
			require.Equal(t, "USDC", req.Buy)
			require.Truef(
				t, req.SellAmount.Eq(fixed.MustParse(tt.expectedAmt)),
				"expected sell amount %s, got %s", tt.expectedAmt, req.SellAmount,
			)
			require.True(t, req.MinBuyAmount.Lt(req.SellAmount))
			require.True(t, prices.SellLow.Eq(fixed.MustParse("0.99")))
			require.True(t, prices.BuyHigh.Eq(fixed.MustParse("1.01")))
		})
	}
}

func TestMinBuyAmount(t *testing.T) {
	t.Parallel()

	prices := domain.TradePrices{
		SellLow:  fixed.MustParse("2"),
		SellHigh: fixed.MustParse("2.02"),
		BuyLow:   fixed.MustParse("0.99"),
		BuyHigh:  fixed.One,
	}
	slippage := fixed.MustParse("0.01")

	amount := backing.MinBuyAmount(fixed.NewFromInt(10), prices, slippage)
	require.True(t, amount.Eq(fixed.MustParse("19.8")))

	prices.BuyHigh = fixed.MaxValue
	amount = backing.MinBuyAmount(fixed.NewFromInt(10), prices, slippage)
	require.True(t, amount.IsZero())
}
