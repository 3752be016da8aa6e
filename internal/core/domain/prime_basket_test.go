package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

func TestFailingNewPrimeBasket(t *testing.T) {
	t.Parallel()

	assets := domain.NewAssetSet([]*domain.Asset{
		newCollateral("A", "USD", 0),
		newCollateral("B", "EUR", 1),
		newPlainAsset("P", 2),
		newCollateral("RSR", "RSR", 3),
	})

	tests := []struct {
		name       string
		erc20s     []string
		targetAmts []fixed.Fix
	}{
		{"length_mismatch", []string{"A", "B"}, []fixed.Fix{one}},
		{"empty", []string{}, []fixed.Fix{}},
		{"duplicate", []string{"A", "A"}, []fixed.Fix{one, one}},
		{"not_collateral", []string{"P"}, []fixed.Fix{one}},
		{"unregistered", []string{"Z"}, []fixed.Fix{one}},
		{"disallowed", []string{"RSR"}, []fixed.Fix{one}},
		{"zero_target_amount", []string{"A"}, []fixed.Fix{fixed.Zero}},
		{"target_amount_too_high", []string{"A"}, []fixed.Fix{fixed.NewFromInt(1001)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			basket, err := domain.NewPrimeBasket(tt.erc20s, tt.targetAmts, assets, "RSR")
			require.ErrorIs(t, err, domain.ErrInvalidBasket)
			require.Nil(t, basket)
		})
	}
}

func TestPrimeBasketSuccessor(t *testing.T) {
	t.Parallel()

	assets := domain.NewAssetSet([]*domain.Asset{
		newCollateral("A", "USD", 0),
		newCollateral("B", "USD", 1),
		newCollateral("C", "EUR", 2),
	})
	prev, err := domain.NewPrimeBasket([]string{"A", "B"}, []fixed.Fix{half, half}, assets)
	require.NoError(t, err)

	reweighted, err := domain.NewPrimeBasket([]string{"A", "B"}, []fixed.Fix{one, half}, assets)
	require.NoError(t, err)
	swapped, err := domain.NewPrimeBasket(
		[]string{"B", "A"}, []fixed.Fix{fixed.MustParse("0.7"), fixed.MustParse("0.3")}, assets,
	)
	require.NoError(t, err)
	newUnit, err := domain.NewPrimeBasket([]string{"A", "C"}, []fixed.Fix{half, half}, assets)
	require.NoError(t, err)

	tests := []struct {
		name          string
		next          *domain.PrimeBasket
		reweightable  bool
		force         bool
		expectedError string
	}{
		{"same_totals", swapped, false, false, ""},
		{"changed_totals", reweighted, false, false, "target weight of USD changed"},
		{"changed_totals_reweightable", reweighted, true, false, ""},
		{"changed_totals_forced", reweighted, false, true, ""},
		{"new_target_unit", newUnit, false, false, "new target weights"},
		{"new_target_unit_forced", newUnit, true, true, "new target weights"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := prev.ValidateSuccessor(tt.next, tt.reweightable, tt.force)
			if tt.expectedError == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrInvalidBasket)
			require.Contains(t, err.Error(), tt.expectedError)
		})
	}

	var empty *domain.PrimeBasket
	require.NoError(t, empty.ValidateSuccessor(newUnit, false, false))

	err = newUnit.ValidateSuccessor(prev, true, true)
	require.ErrorIs(t, err, domain.ErrInvalidBasket)
	require.Contains(t, err.Error(), "missing target weights")
}

func TestFailingNewBackupConfig(t *testing.T) {
	t.Parallel()

	assets := domain.NewAssetSet([]*domain.Asset{
		newCollateral("A", "USD", 0),
		newCollateral("B", "EUR", 1),
		newPlainAsset("P", 2),
	})
	tooMany := make([]string, domain.MaxBackupERC20s+1)
	for i := range tooMany {
		tooMany[i] = "A"
	}

	tests := []struct {
		name       string
		targetName string
		max        int
		erc20s     []string
	}{
		{"missing_target", "", 1, []string{"A"}},
		{"negative_max", "USD", -1, []string{"A"}},
		{"too_many", "USD", 1, tooMany},
		{"duplicate", "USD", 1, []string{"A", "A"}},
		{"not_collateral", "USD", 1, []string{"P"}},
		{"wrong_target", "USD", 1, []string{"B"}},
		{"disallowed", "USD", 1, []string{"A"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			disallowed := []string{}
			if tt.name == "disallowed" {
				disallowed = []string{"A"}
			}
			cfg, err := domain.NewBackupConfig(tt.targetName, tt.max, tt.erc20s, assets, disallowed...)
			require.ErrorIs(t, err, domain.ErrInvalidBackupConfig)
			require.Nil(t, cfg)
		})
	}
}
