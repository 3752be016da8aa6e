package distributor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/infrastructure/distributor"
	"github.com/tdex-network/basketd/internal/infrastructure/ledger"
	"github.com/tdex-network/basketd/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/basketd/pkg/fixed"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	l := ledger.New(inmemory.NewBalanceRepositoryImpl())

	tests := []struct {
		name         string
		destinations []distributor.Destination
		expectedErr  error
	}{
		{"empty", nil, distributor.ErrEmptyTable},
		{
			"missing account",
			[]distributor.Destination{{IssuedShare: fixed.One}},
			distributor.ErrInvalidDestination,
		},
		{
			"duplicates",
			[]distributor.Destination{
				{Account: "furnace", IssuedShare: fixed.One},
				{Account: "furnace", BackstopShare: fixed.One},
			},
			distributor.ErrDuplicateAccount,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := distributor.NewTable(l, "RSV", "RSR", tt.destinations)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	_, err := distributor.NewTable(nil, "RSV", "RSR", []distributor.Destination{
		{Account: "furnace", IssuedShare: fixed.One},
	})
	require.Error(t, err)
}

func TestDistribute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := ledger.New(inmemory.NewBalanceRepositoryImpl())
	require.NoError(t, l.Mint(ctx, "trader", "RSR", fixed.NewFromInt(10)))
	require.NoError(t, l.Mint(ctx, "trader", "RSV", fixed.NewFromInt(10)))
	require.NoError(t, l.Mint(ctx, "trader", "USDC", fixed.NewFromInt(10)))

	table, err := distributor.NewTable(l, "RSV", "RSR", []distributor.Destination{
		{Account: "a", IssuedShare: fixed.One, BackstopShare: fixed.NewFromInt(2)},
		{Account: "b", IssuedShare: fixed.Zero, BackstopShare: fixed.One},
	})
	require.NoError(t, err)

	issued, backstop, err := table.Totals(ctx)
	require.NoError(t, err)
	require.True(t, issued.Eq(fixed.One))
	require.True(t, backstop.Eq(fixed.NewFromInt(3)))

	require.NoError(t, table.Distribute(ctx, "trader", "RSR", fixed.NewFromInt(10)))
	requireBalance(t, l, "a", "RSR", "6.666666666666666666")
	requireBalance(t, l, "b", "RSR", "3.333333333333333334")

	require.NoError(t, table.Distribute(ctx, "trader", "RSV", fixed.NewFromInt(10)))
	requireBalance(t, l, "a", "RSV", "10")
	requireBalance(t, l, "b", "RSV", "0")

	err = table.Distribute(ctx, "trader", "USDC", fixed.NewFromInt(10))
	require.ErrorIs(t, err, distributor.ErrUnsupportedToken)

	require.NoError(t, table.SetDestinations([]distributor.Destination{
		{Account: "a", IssuedShare: fixed.One},
	}))
	require.Len(t, table.Destinations(), 1)

	err = table.Distribute(ctx, "a", "RSR", fixed.One)
	require.ErrorIs(t, err, distributor.ErrZeroShares)

	err = table.SetDestinations(nil)
	require.ErrorIs(t, err, distributor.ErrEmptyTable)
	require.Len(t, table.Destinations(), 1)
}

func requireBalance(t *testing.T, l *ledger.Ledger, account, token, expected string) {
	t.Helper()

	balance, err := l.BalanceOf(context.Background(), account, token)
	require.NoError(t, err)
	require.Truef(
		t, balance.Eq(fixed.MustParse(expected)),
		"%s %s: expected %s, got %s", account, token, expected, balance,
	)
}
