package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

func TestAssetValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(a *domain.Asset)
	}{
		{"missing_erc20", func(a *domain.Asset) { a.ERC20 = "" }},
		{"too_many_decimals", func(a *domain.Asset) { a.Decimals = 19 }},
		{"zero_max_trade_volume", func(a *domain.Asset) { a.MaxTradeVolume = fixed.Zero }},
		{"oracle_error_too_high", func(a *domain.Asset) { a.OracleError = fixed.One }},
		{"zero_oracle_timeout", func(a *domain.Asset) { a.OracleTimeout = 0 }},
		{"missing_target", func(a *domain.Asset) { a.Collateral.TargetName = "" }},
		{"zero_target_per_ref", func(a *domain.Asset) { a.Collateral.TargetPerRef = fixed.Zero }},
		{"inverted_peg", func(a *domain.Asset) { a.Collateral.PegBottom = fixed.NewFromInt(2) }},
		{"zero_default_delay", func(a *domain.Asset) { a.Collateral.DelayUntilDefault = 0 }},
	}

	require.NoError(t, newCollateral("A", "USD", 0).Validate())
	require.NoError(t, newPlainAsset("P", 0).Validate())

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newCollateral("A", "USD", 0)
			tt.mutate(a)
			require.ErrorIs(t, a.Validate(), domain.ErrInvalidAsset)
		})
	}
}

func TestAssetRefreshPrice(t *testing.T) {
	t.Parallel()

	a := newCollateral("A", "USD", 0)
	require.False(t, a.Price(now).IsPriced())

	a.Refresh(now, observe("1", now))
	p := a.Price(now)
	require.Equal(t, "0.99", p.Low.String())
	require.Equal(t, "1.01", p.High.String())
	require.Equal(t, domain.CollateralStatusSound, a.Status(now))

	// The oracle fails: the saved price is served until it times out.
	a.Refresh(now+60, nil)
	require.True(t, a.Price(now+60).IsPriced())
	require.Equal(t, domain.CollateralStatusIffy, a.Status(now+60))
	require.False(t, a.Price(now+a.OracleTimeout+a.PriceTimeout+1).IsPriced())
}

func TestCollateralDefault(t *testing.T) {
	t.Parallel()

	t.Run("peg_deviation_becomes_disabled_after_delay", func(t *testing.T) {
		t.Parallel()

		a := newCollateral("B", "USD", 0)
		a.Refresh(now, observe("0.5", now))
		require.Equal(t, domain.CollateralStatusIffy, a.Status(now))

		delay := a.Collateral.DelayUntilDefault
		require.Equal(t, domain.CollateralStatusIffy, a.Status(now+delay-1))
		require.Equal(t, domain.CollateralStatusDisabled, a.Status(now+delay))

		// Once disabled a recovery has no effect.
		a.Refresh(now+delay, observe("1", now+delay))
		require.Equal(t, domain.CollateralStatusDisabled, a.Status(now+delay+1))
	})

	t.Run("recovery_while_iffy", func(t *testing.T) {
		t.Parallel()

		a := newCollateral("B", "USD", 0)
		a.Refresh(now, observe("0.5", now))
		a.Refresh(now+100, observe("0.5", now+100))
		// A later iffy refresh doesn't postpone the default.
		require.Equal(t, now+a.Collateral.DelayUntilDefault, a.Collateral.WhenDefault)

		a.Refresh(now+200, observe("1", now+200))
		require.Equal(t, domain.CollateralStatusSound, a.Status(now+200))
		require.Equal(t, domain.NeverDefault, a.Collateral.WhenDefault)
	})

	t.Run("ref_per_tok_decrease_is_immediate", func(t *testing.T) {
		t.Parallel()

		a := newCollateral("C", "USD", 0)
		a.Collateral.RefPerTok = fixed.NewFromInt(2)
		obs := observe("1", now)
		obs.RefPerTok = fixed.MustParse("1.99")
		a.Refresh(now, obs)
		require.Equal(t, domain.CollateralStatusDisabled, a.Status(now))
	})

	t.Run("stale_observation_is_iffy", func(t *testing.T) {
		t.Parallel()

		a := newCollateral("D", "USD", 0)
		a.Refresh(now, observe("1", now-a.OracleTimeout-1))
		require.Equal(t, domain.CollateralStatusIffy, a.Status(now))
	})

	t.Run("plain_assets_are_always_sound", func(t *testing.T) {
		t.Parallel()

		a := newPlainAsset("P", 0)
		a.Refresh(now, nil)
		require.Equal(t, domain.CollateralStatusSound, a.Status(now))
	})
}
