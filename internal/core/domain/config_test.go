package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

func TestBrokerState(t *testing.T) {
	t.Parallel()

	_, err := domain.NewBrokerState(0, 600)
	require.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = domain.NewBrokerState(600, domain.MaxAuctionLength+1)
	require.ErrorIs(t, err, domain.ErrOutOfRange)

	s, err := domain.NewBrokerState(900, 1800)
	require.NoError(t, err)
	require.Equal(t, int64(900), s.AuctionLength(domain.BatchAuction))
	require.Equal(t, int64(1800), s.AuctionLength(domain.DutchAuction))

	s.SetBatchAuctionDisabled(true)
	require.True(t, s.IsKindDisabled(domain.BatchAuction, "A", "B"))
	require.False(t, s.IsKindDisabled(domain.DutchAuction, "A", "B"))

	s.SetDutchAuctionDisabled("B", true)
	require.True(t, s.IsKindDisabled(domain.DutchAuction, "A", "B"))
	require.True(t, s.IsKindDisabled(domain.DutchAuction, "B", "C"))
	require.False(t, s.IsKindDisabled(domain.DutchAuction, "A", "C"))

	s.SetDutchAuctionDisabled("B", false)
	require.False(t, s.IsKindDisabled(domain.DutchAuction, "A", "B"))
}

func TestBackingConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		tradingDelay  int64
		slippage      fixed.Fix
		buffer        fixed.Fix
		minVolume     fixed.Fix
		expectedError string
	}{
		{"negative_trading_delay", -1, fixed.Zero, fixed.Zero, fixed.Zero, "invalid tradingDelay"},
		{"trading_delay_too_long", domain.MaxTradingDelay + 1, fixed.Zero, fixed.Zero, fixed.Zero, "invalid tradingDelay"},
		{"slippage_too_high", 0, fixed.MustParse("1.01"), fixed.Zero, fixed.Zero, "invalid maxTradeSlippage"},
		{"buffer_too_high", 0, fixed.Zero, fixed.NewFromInt(2), fixed.Zero, "invalid backingBuffer"},
		{"min_volume_too_high", 0, fixed.Zero, fixed.Zero, fixed.MustParse("1e30"), "invalid minTradeVolume"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := domain.NewBackingConfig(tt.tradingDelay, tt.slippage, tt.buffer, tt.minVolume)
			require.ErrorIs(t, err, domain.ErrOutOfRange)
			require.Contains(t, err.Error(), tt.expectedError)
			require.Nil(t, cfg)
		})
	}
}

func TestProtocolState(t *testing.T) {
	t.Parallel()

	_, err := domain.NewProtocolState("", "RTOKEN", "RSR")
	require.Error(t, err)
	_, err = domain.NewProtocolState("gov", "RSR", "RSR")
	require.Error(t, err)

	s, err := domain.NewProtocolState("gov", "RTOKEN", "RSR")
	require.NoError(t, err)
	require.True(t, s.IsGovernance("gov"))
	require.False(t, s.IsGovernance(""))
	require.False(t, s.IsTradingPausedOrFrozen(now))

	require.NoError(t, s.Freeze(now, 100))
	require.True(t, s.IsTradingPausedOrFrozen(now+99))
	require.True(t, s.IsIssuancePausedOrFrozen(now+99))
	require.False(t, s.IsFrozen(now+100))

	// A shorter freeze doesn't cut a longer one.
	require.NoError(t, s.Freeze(now, 10))
	require.True(t, s.IsFrozen(now+50))

	s.Unfreeze()
	s.TradingPaused = true
	require.True(t, s.IsTradingPausedOrFrozen(now))
	require.False(t, s.IsIssuancePausedOrFrozen(now))
	require.Equal(t, []string{"RTOKEN", "RSR"}, s.DisallowedCollateral())
}
