package backing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/application/apptest"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const manager = domain.BackingManagerAccount

func newEnv(t *testing.T) *apptest.Env {
	env := apptest.NewEnv(t)
	env.SetupBasket(t, []string{"USDC", "DAI"}, []string{"0.5", "0.5"})
	env.SetBasketsNeeded(t, "100")
	return env
}

func TestRebalance(t *testing.T) {
	t.Parallel()

	t.Run("dutch auction restores backing", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t)
		env.Mint(t, manager, "USDC", "100")
		env.Mint(t, "bob", "DAI", "100")
		svc := env.Engine.Backing()
		ctx := apptest.As("keeper")

		trade, err := svc.Rebalance(ctx, domain.DutchAuction)
		require.NoError(t, err)
		require.NotNil(t, trade)
		require.Equal(t, manager, trade.Origin)
		require.Equal(t, "USDC", trade.Sell)
		require.Equal(t, "DAI", trade.Buy)
		require.True(t, trade.SellAmount.Eq(fixed.NewFromInt(50)))
		env.RequireBalance(t, manager, "USDC", "50")

		_, err = svc.Rebalance(ctx, domain.DutchAuction)
		require.ErrorIs(t, err, domain.ErrTradesOpen)

		env.Clock.Advance(apptest.AuctionLength)
		closed, err := env.Engine.Broker().Bid(ctx, trade.ID, "bob")
		require.NoError(t, err)
		require.True(t, env.Balance(t, manager, "DAI").Eq(closed.BoughtAmount))
		require.True(t, closed.BoughtAmount.Gte(trade.MinBuyAmount))

		// the haircut can't be recovered by trading
		collateralized, err := env.Engine.Basket().FullyCollateralized(ctx)
		require.NoError(t, err)
		require.False(t, collateralized)

		again, err := svc.Rebalance(ctx, domain.DutchAuction)
		require.NoError(t, err)
		require.Nil(t, again)

		needed, err := env.Engine.Protocol().BasketsNeeded(ctx)
		require.NoError(t, err)
		require.True(t, needed.Eq(closed.BoughtAmount.MulRnd(fixed.NewFromInt(2), fixed.Floor)))
		collateralized, err = env.Engine.Basket().FullyCollateralized(ctx)
		require.NoError(t, err)
		require.True(t, collateralized)
	})

	t.Run("haircut without surplus", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t)
		env.Mint(t, manager, "USDC", "50")
		env.Mint(t, manager, "DAI", "30")
		svc := env.Engine.Backing()
		ctx := apptest.As("keeper")

		trade, err := svc.Rebalance(ctx, domain.DutchAuction)
		require.NoError(t, err)
		require.Nil(t, trade)

		needed, err := env.Engine.Protocol().BasketsNeeded(ctx)
		require.NoError(t, err)
		require.True(t, needed.Eq(fixed.NewFromInt(60)), needed.String())
		env.RequireBalance(t, manager, "USDC", "50")
		env.RequireBalance(t, manager, "DAI", "30")

		_, err = svc.Rebalance(ctx, domain.DutchAuction)
		require.ErrorIs(t, err, domain.ErrAlreadyCollateralized)

		// baskets needed are never raised by a haircut
		_, lowered, err := env.Engine.Protocol().LowerBasketsNeeded(ctx, fixed.NewFromInt(80))
		require.NoError(t, err)
		require.False(t, lowered)
	})

	t.Run("batch auction", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t)
		env.Mint(t, manager, "USDC", "100")
		env.Mint(t, "bob", "DAI", "100")
		svc := env.Engine.Backing()
		ctx := apptest.As("keeper")

		trade, err := svc.Rebalance(ctx, domain.BatchAuction)
		require.NoError(t, err)
		require.NoError(t, env.Engine.Venue().PlaceBid(
			ctx, trade.AuctionID, "bob", fixed.NewFromInt(50), fixed.NewFromInt(50),
		))

		env.Clock.Advance(apptest.AuctionLength)
		settled, err := svc.SettleTrade(ctx, "USDC")
		require.NoError(t, err)
		require.True(t, settled.IsClosed())

		env.RequireBalance(t, manager, "USDC", "50")
		env.RequireBalance(t, manager, "DAI", "50")

		collateralized, err := env.Engine.Basket().FullyCollateralized(ctx)
		require.NoError(t, err)
		require.True(t, collateralized)

		_, err = svc.Rebalance(ctx, domain.BatchAuction)
		require.ErrorIs(t, err, domain.ErrAlreadyCollateralized)
	})

	t.Run("preconditions", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name        string
			setup       func(t *testing.T, env *apptest.Env)
			expectedErr error
		}{
			{
				name: "paused",
				setup: func(t *testing.T, env *apptest.Env) {
					require.NoError(t, env.Engine.Protocol().PauseTrading(apptest.Gov()))
				},
				expectedErr: domain.ErrPausedOrFrozen,
			},
			{
				name: "frozen",
				setup: func(t *testing.T, env *apptest.Env) {
					require.NoError(t, env.Engine.Protocol().Freeze(apptest.Gov(), 3600))
				},
				expectedErr: domain.ErrPausedOrFrozen,
			},
			{
				name: "trading delay",
				setup: func(t *testing.T, env *apptest.Env) {
					require.NoError(t, env.Engine.Backing().SetTradingDelay(apptest.Gov(), 3600))
				},
				expectedErr: domain.ErrTradingDelay,
			},
			{
				name: "basket not sound",
				setup: func(t *testing.T, env *apptest.Env) {
					env.Oracle.Set("DAI", "0.9")
					require.NoError(t, env.Engine.Registry().Refresh(context.Background()))
				},
				expectedErr: domain.ErrBasketNotReady,
			},
			{
				name: "collateralized",
				setup: func(t *testing.T, env *apptest.Env) {
					env.Mint(t, manager, "DAI", "50")
				},
				expectedErr: domain.ErrAlreadyCollateralized,
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				env := newEnv(t)
				env.Mint(t, manager, "USDC", "100")
				tt.setup(t, env)

				_, err := env.Engine.Backing().Rebalance(context.Background(), domain.DutchAuction)
				require.ErrorIs(t, err, tt.expectedErr)
			})
		}
	})
}

func TestForwardRevenue(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t)
		env.Mint(t, manager, "USDC", "60")
		env.Mint(t, manager, "DAI", "50")
		env.Mint(t, manager, apptest.BackstopToken, "10")
		env.Mint(t, manager, apptest.IssuedToken, "5")

		err := env.Engine.Backing().ForwardRevenue(context.Background(), []string{
			"USDC", "DAI", apptest.BackstopToken, apptest.IssuedToken,
		})
		require.NoError(t, err)

		env.RequireBalance(t, manager, "USDC", "50")
		env.RequireBalance(t, manager, "DAI", "50")
		env.RequireBalance(t, manager, apptest.BackstopToken, "0")
		env.RequireBalance(t, manager, apptest.IssuedToken, "0")

		env.RequireBalance(t, domain.BackstopTraderAccount, "USDC", "5")
		env.RequireBalance(t, domain.BackstopTraderAccount, apptest.BackstopToken, "10")
		env.RequireBalance(t, domain.IssuedTraderAccount, "USDC", "5")
		env.RequireBalance(t, domain.IssuedTraderAccount, apptest.IssuedToken, "5")
	})

	t.Run("buffer is kept", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t)
		require.NoError(t, env.Engine.Backing().SetBackingBuffer(
			apptest.Gov(), fixed.MustParse("0.1"),
		))
		env.Mint(t, manager, "USDC", "60")
		env.Mint(t, manager, "DAI", "50")

		err := env.Engine.Backing().ForwardRevenue(context.Background(), []string{"USDC"})
		require.NoError(t, err)
		env.RequireBalance(t, manager, "USDC", "55")
		env.RequireBalance(t, domain.BackstopTraderAccount, "USDC", "2.5")
		env.RequireBalance(t, domain.IssuedTraderAccount, "USDC", "2.5")
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name        string
			held        map[string]string
			erc20s      []string
			expectedErr error
		}{
			{
				name:        "undercollateralized",
				held:        map[string]string{"USDC": "60"},
				erc20s:      []string{"USDC"},
				expectedErr: domain.ErrUndercollateralized,
			},
			{
				name:        "duplicates",
				held:        map[string]string{"USDC": "60", "DAI": "50"},
				erc20s:      []string{"USDC", "USDC"},
				expectedErr: domain.ErrDuplicateToken,
			},
			{
				name:        "unregistered",
				held:        map[string]string{"USDC": "60", "DAI": "50"},
				erc20s:      []string{"TUSD"},
				expectedErr: domain.ErrAssetNotFound,
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				env := newEnv(t)
				for erc20, amount := range tt.held {
					env.Mint(t, manager, erc20, amount)
				}
				err := env.Engine.Backing().ForwardRevenue(context.Background(), tt.erc20s)
				require.ErrorIs(t, err, tt.expectedErr)
			})
		}
	})
}

func TestBackingConfig(t *testing.T) {
	t.Parallel()

	env := apptest.NewEnv(t)
	svc := env.Engine.Backing()
	gov := apptest.Gov()

	tests := []struct {
		name        string
		ctx         context.Context
		update      func(ctx context.Context) error
		expectedErr error
	}{
		{
			name:   "trading delay",
			ctx:    gov,
			update: func(ctx context.Context) error { return svc.SetTradingDelay(ctx, 600) },
		},
		{
			name: "max trade slippage",
			ctx:  gov,
			update: func(ctx context.Context) error {
				return svc.SetMaxTradeSlippage(ctx, fixed.MustParse("0.02"))
			},
		},
		{
			name: "min trade volume",
			ctx:  gov,
			update: func(ctx context.Context) error {
				return svc.SetMinTradeVolume(ctx, fixed.NewFromInt(100))
			},
		},
		{
			name:        "not governance",
			ctx:         apptest.As("alice"),
			update:      func(ctx context.Context) error { return svc.SetTradingDelay(ctx, 600) },
			expectedErr: domain.ErrGovernanceOnly,
		},
		{
			name:        "delay out of range",
			ctx:         gov,
			update:      func(ctx context.Context) error { return svc.SetTradingDelay(ctx, domain.MaxTradingDelay+1) },
			expectedErr: domain.ErrOutOfRange,
		},
		{
			name: "buffer out of range",
			ctx:  gov,
			update: func(ctx context.Context) error {
				return svc.SetBackingBuffer(ctx, fixed.MustParse("1.1"))
			},
			expectedErr: domain.ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update(tt.ctx)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
		})
	}

	cfg, err := svc.GetConfig(gov)
	require.NoError(t, err)
	require.Equal(t, int64(600), cfg.TradingDelay)
	require.True(t, cfg.MaxTradeSlippage.Eq(fixed.MustParse("0.02")))
	require.True(t, cfg.MinTradeVolume.Eq(fixed.NewFromInt(100)))
}
