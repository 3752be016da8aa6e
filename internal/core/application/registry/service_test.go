package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/application/apptest"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		env := apptest.NewEnv(t)
		env.Register(t, apptest.Plain("RSR"), apptest.Collateral("USDC", "USD"))

		svc := env.Engine.Registry()
		ctx := context.Background()

		erc20s, err := svc.ERC20s(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"RSR", "USDC"}, erc20s)

		usdc, err := svc.ToColl(ctx, "USDC")
		require.NoError(t, err)
		require.Equal(t, 1, usdc.Index)
		require.Equal(t, domain.NeverDefault, usdc.Collateral.WhenDefault)

		price, err := svc.Price(ctx, "USDC")
		require.NoError(t, err)
		require.True(t, price.Low.Eq(fixed.MustParse("0.99")))
		require.True(t, price.High.Eq(fixed.MustParse("1.01")))

		status, err := svc.Status(ctx, "USDC")
		require.NoError(t, err)
		require.Equal(t, domain.CollateralStatusSound, status)

		_, err = svc.ToColl(ctx, "RSR")
		require.ErrorIs(t, err, domain.ErrNotCollateral)
		_, err = svc.ToAsset(ctx, "DAI")
		require.ErrorIs(t, err, domain.ErrAssetNotFound)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		env := apptest.NewEnv(t)
		env.Register(t, apptest.Collateral("USDC", "USD"))

		noTarget := apptest.Collateral("DAI", "")
		noVolume := apptest.Plain("COMP")
		noVolume.MaxTradeVolume = fixed.Zero

		tests := []struct {
			name        string
			ctx         context.Context
			asset       domain.Asset
			expectedErr error
		}{
			{
				name:        "not governance",
				ctx:         apptest.As("alice"),
				asset:       apptest.Collateral("DAI", "USD"),
				expectedErr: domain.ErrGovernanceOnly,
			},
			{
				name:        "already registered",
				ctx:         apptest.Gov(),
				asset:       apptest.Collateral("USDC", "USD"),
				expectedErr: domain.ErrAssetAlreadyRegistered,
			},
			{
				name:        "missing target",
				ctx:         apptest.Gov(),
				asset:       noTarget,
				expectedErr: domain.ErrInvalidAsset,
			},
			{
				name:        "zero max trade volume",
				ctx:         apptest.Gov(),
				asset:       noVolume,
				expectedErr: domain.ErrInvalidAsset,
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				err := env.Engine.Registry().Register(tt.ctx, tt.asset)
				require.ErrorIs(t, err, tt.expectedErr)
			})
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("oracle failure", func(t *testing.T) {
		t.Parallel()

		env := apptest.NewEnv(t)
		env.Register(t, apptest.Collateral("USDC", "USD"))
		svc := env.Engine.Registry()
		ctx := apptest.As("keeper")

		env.Oracle.Fail("USDC")
		require.NoError(t, svc.Refresh(ctx))
		requireStatus(t, svc.Status, "USDC", domain.CollateralStatusIffy)

		// the saved price survives until the price timeout
		price, err := svc.Price(ctx, "USDC")
		require.NoError(t, err)
		require.True(t, price.IsPriced())

		env.Clock.Advance(86400)
		require.NoError(t, svc.Refresh(ctx))
		requireStatus(t, svc.Status, "USDC", domain.CollateralStatusDisabled)

		price, err = svc.Price(ctx, "USDC")
		require.NoError(t, err)
		require.False(t, price.IsPriced())

		// defaults are final
		env.Oracle.Set("USDC", "1")
		require.NoError(t, svc.Refresh(ctx))
		requireStatus(t, svc.Status, "USDC", domain.CollateralStatusDisabled)
	})

	t.Run("depeg and recovery", func(t *testing.T) {
		t.Parallel()

		env := apptest.NewEnv(t)
		env.Register(t, apptest.Collateral("USDC", "USD"))
		svc := env.Engine.Registry()
		ctx := apptest.As("keeper")

		env.Oracle.Set("USDC", "0.9")
		require.NoError(t, svc.Refresh(ctx))
		requireStatus(t, svc.Status, "USDC", domain.CollateralStatusIffy)

		env.Clock.Advance(3600)
		env.Oracle.Set("USDC", "1.01")
		require.NoError(t, svc.Refresh(ctx))
		requireStatus(t, svc.Status, "USDC", domain.CollateralStatusSound)
	})

	t.Run("exchange rate drop", func(t *testing.T) {
		t.Parallel()

		env := apptest.NewEnv(t)
		cusdc := apptest.Collateral("cUSDC", "USD")
		cusdc.Feed = "USDC"
		cusdc.Collateral.RateFeed = "cUSDC-rate"
		env.Oracle.Set("cUSDC-rate", "1.1")
		env.Register(t, cusdc)

		svc := env.Engine.Registry()
		ctx := apptest.As("keeper")

		a, err := svc.ToColl(ctx, "cUSDC")
		require.NoError(t, err)
		require.True(t, a.Collateral.RefPerTok.Eq(fixed.MustParse("1.1")))

		env.Oracle.Set("cUSDC-rate", "1.2")
		require.NoError(t, svc.Refresh(ctx))
		requireStatus(t, svc.Status, "cUSDC", domain.CollateralStatusSound)

		env.Oracle.Set("cUSDC-rate", "1.15")
		require.NoError(t, svc.Refresh(ctx))
		requireStatus(t, svc.Status, "cUSDC", domain.CollateralStatusDisabled)
	})
}

func TestSwapRegistered(t *testing.T) {
	t.Parallel()

	env := apptest.NewEnv(t)
	env.SetupBasket(t, []string{"USDC", "DAI"}, []string{"0.5", "0.5"})
	svc := env.Engine.Registry()
	ctx := apptest.Gov()

	dai, err := svc.ToAsset(ctx, "DAI")
	require.NoError(t, err)

	swapped := apptest.Collateral("DAI", "USD")
	swapped.MaxTradeVolume = fixed.NewFromInt(10)
	require.NoError(t, svc.SwapRegistered(ctx, swapped))

	got, err := svc.ToAsset(ctx, "DAI")
	require.NoError(t, err)
	require.Equal(t, dai.Index, got.Index)
	require.True(t, got.MaxTradeVolume.Eq(fixed.NewFromInt(10)))

	err = svc.SwapRegistered(ctx, apptest.Collateral("DAI", "EUR"))
	require.ErrorIs(t, err, domain.ErrInvalidAsset)

	err = svc.SwapRegistered(ctx, apptest.Plain("DAI"))
	require.ErrorIs(t, err, domain.ErrInvalidAsset)

	err = svc.SwapRegistered(ctx, apptest.Collateral("TUSD", "USD"))
	require.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestUnregister(t *testing.T) {
	t.Parallel()

	t.Run("not a constituent", func(t *testing.T) {
		t.Parallel()

		env := apptest.NewEnv(t)
		env.SetupBasket(t, []string{"USDC"}, []string{"1"})
		env.Register(t, apptest.Plain("COMP"))
		ctx := apptest.Gov()

		require.NoError(t, env.Engine.Registry().Unregister(ctx, "COMP"))

		nonce, err := env.Engine.Basket().Nonce(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), nonce)

		err = env.Engine.Registry().Unregister(ctx, "COMP")
		require.ErrorIs(t, err, domain.ErrAssetNotFound)
	})

	t.Run("constituent with backup", func(t *testing.T) {
		t.Parallel()

		env := apptest.NewEnv(t)
		env.SetupBasket(t, []string{"USDC", "DAI"}, []string{"0.5", "0.5"})
		env.Register(t, apptest.Collateral("TUSD", "USD"))
		ctx := apptest.Gov()

		require.NoError(t, env.Engine.Basket().SetBackupConfig(
			ctx, "USD", 1, []string{"TUSD"},
		))
		require.NoError(t, env.Engine.Registry().Unregister(ctx, "USDC"))

		b, state, err := env.Engine.Basket().Current(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(2), state.Nonce)
		require.False(t, b.Disabled)
		require.Equal(t, []string{"DAI", "TUSD"}, b.ERC20s)

		status, err := env.Engine.Basket().Status(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.CollateralStatusSound, status)
	})

	t.Run("constituent without backup", func(t *testing.T) {
		t.Parallel()

		env := apptest.NewEnv(t)
		env.SetupBasket(t, []string{"USDC", "DAI"}, []string{"0.5", "0.5"})
		ctx := apptest.Gov()

		require.NoError(t, env.Engine.Registry().Unregister(ctx, "USDC"))

		b, _, err := env.Engine.Basket().Current(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(2), b.Nonce)
		require.True(t, b.Disabled)

		status, err := env.Engine.Basket().Status(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.CollateralStatusDisabled, status)
	})
}

func requireStatus(
	t *testing.T,
	statusOf func(ctx context.Context, erc20 string) (domain.CollateralStatus, error),
	erc20 string, expected domain.CollateralStatus,
) {
	t.Helper()

	status, err := statusOf(context.Background(), erc20)
	require.NoError(t, err)
	require.Equal(t, expected, status)
}
