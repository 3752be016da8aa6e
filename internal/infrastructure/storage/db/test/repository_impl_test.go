package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/domain"
	dbbadger "github.com/tdex-network/basketd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/basketd/pkg/fixed"
)

func TestRepositoryImplementations(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			t.Run("testAssetRepository", func(t *testing.T) {
				testAssetRepository(t, repo)
			})
			t.Run("testBalanceRepository", func(t *testing.T) {
				testBalanceRepository(t, repo)
			})
			t.Run("testBasketRepository", func(t *testing.T) {
				testBasketRepository(t, repo)
			})
			t.Run("testTradeRepository", func(t *testing.T) {
				testTradeRepository(t, repo)
			})
			t.Run("testConfigRepository", func(t *testing.T) {
				testConfigRepository(t, repo)
			})
			t.Run("testAuctionRepository", func(t *testing.T) {
				testAuctionRepository(t, repo)
			})
		})
	}
}

func testAssetRepository(t *testing.T, repo repoManager) {
	ctx := context.Background()
	assets := repo.AssetRepository()

	first, second := makeRandomAsset(0), makeRandomAsset(1)
	require.NoError(t, assets.AddAsset(ctx, second))
	require.NoError(t, assets.AddAsset(ctx, first))

	err := assets.AddAsset(ctx, first)
	require.ErrorIs(t, err, domain.ErrAssetAlreadyRegistered)

	all, err := assets.GetAllAssets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ERC20, all[0].ERC20)
	require.Equal(t, second.ERC20, all[1].ERC20)

	err = assets.UpdateAsset(ctx, first.ERC20, func(a *domain.Asset) (*domain.Asset, error) {
		a.SavedLow = fixed.MustParse("0.99")
		a.Collateral.WhenDefault = 1700000000
		return a, nil
	})
	require.NoError(t, err)

	// a failing update leaves the asset untouched
	err = assets.UpdateAsset(ctx, first.ERC20, func(a *domain.Asset) (*domain.Asset, error) {
		a.SavedLow = fixed.Zero
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	got, err := assets.GetAsset(ctx, first.ERC20)
	require.NoError(t, err)
	require.True(t, got.SavedLow.Eq(fixed.MustParse("0.99")))
	require.Equal(t, int64(1700000000), got.Collateral.WhenDefault)
	require.True(t, got.MaxTradeVolume.Eq(first.MaxTradeVolume))

	require.NoError(t, assets.DeleteAsset(ctx, first.ERC20))
	_, err = assets.GetAsset(ctx, first.ERC20)
	require.ErrorIs(t, err, domain.ErrAssetNotFound)
	err = assets.DeleteAsset(ctx, first.ERC20)
	require.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func testBalanceRepository(t *testing.T, repo repoManager) {
	ctx := context.Background()
	balances := repo.BalanceRepository()
	alice, bob := randomHex(8), randomHex(8)

	amount, err := balances.GetBalance(ctx, alice, "USDC")
	require.NoError(t, err)
	require.True(t, amount.IsZero())

	require.NoError(t, balances.Mint(ctx, alice, "USDC", fixed.NewFromInt(100)))
	require.NoError(t, balances.Mint(ctx, alice, "DAI", fixed.MustParse("0.5")))

	err = balances.Transfer(ctx, alice, bob, "USDC", fixed.MustParse("100.000001"))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	require.NoError(t, balances.Transfer(ctx, alice, bob, "USDC", fixed.NewFromInt(100)))

	list, err := balances.GetBalances(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "DAI", list[0].Token)

	amount, err = balances.GetBalance(ctx, bob, "USDC")
	require.NoError(t, err)
	require.True(t, amount.Eq(fixed.NewFromInt(100)))
}

func testBasketRepository(t *testing.T, repo repoManager) {
	ctx := context.Background()
	baskets := repo.BasketRepository()

	prime, err := baskets.GetPrimeBasket(ctx)
	require.NoError(t, err)
	require.Nil(t, prime)

	_, err = baskets.GetBasketState(ctx)
	require.ErrorIs(t, err, domain.ErrStateNotFound)

	require.NoError(t, baskets.SetPrimeBasket(ctx, &domain.PrimeBasket{
		Entries: []domain.PrimeEntry{{ERC20: "USDC", TargetName: "USD", TargetAmt: fixed.One}},
	}))
	prime, err = baskets.GetPrimeBasket(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"USDC"}, prime.ERC20s())

	require.NoError(t, baskets.SetBackupConfig(ctx, &domain.BackupConfig{
		TargetName: "USD", Max: 1, ERC20s: []string{"DAI"},
	}))
	require.NoError(t, baskets.SetBackupConfig(ctx, &domain.BackupConfig{
		TargetName: "USD", Max: 2, ERC20s: []string{"DAI", "TUSD"},
	}))
	backups, err := baskets.GetBackupConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	require.Equal(t, 2, backups["USD"].Max)

	for i := 1; i <= 3; i++ {
		nonce, err := baskets.AddBasket(ctx, &domain.Basket{
			ERC20s:    []string{"USDC"},
			RefAmts:   []fixed.Fix{fixed.NewFromInt(int64(i))},
			Timestamp: int64(i),
		})
		require.NoError(t, err)
		require.Equal(t, uint64(i), nonce)
	}

	b, err := baskets.GetBasket(ctx, 2)
	require.NoError(t, err)
	require.True(t, b.RefAmts[0].Eq(fixed.NewFromInt(2)))
	_, err = baskets.GetBasket(ctx, 4)
	require.ErrorIs(t, err, domain.ErrBasketNotFound)

	all, err := baskets.GetAllBaskets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, uint64(3), all[2].Nonce)

	err = baskets.UpdateBasketState(ctx, func(s *domain.BasketState) (*domain.BasketState, error) {
		s.Nonce = 3
		s.WarmupPeriod = 60
		return s, nil
	})
	require.NoError(t, err)
	state, err := baskets.GetBasketState(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), state.Nonce)
	require.Equal(t, int64(60), state.WarmupPeriod)
}

func testTradeRepository(t *testing.T, repo repoManager) {
	ctx := context.Background()
	trades := repo.TradeRepository()
	origin := randomHex(8)

	trade := makeRandomTrade(origin)
	other := makeRandomTrade(randomHex(8))
	require.NoError(t, trades.AddTrade(ctx, trade))
	require.NoError(t, trades.AddTrade(ctx, other))

	open, err := trades.GetOpenTrade(ctx, origin, trade.Sell)
	require.NoError(t, err)
	require.NotNil(t, open)
	require.Equal(t, trade.ID, open.ID)

	open, err = trades.GetOpenTrade(ctx, origin, other.Sell)
	require.NoError(t, err)
	require.Nil(t, open)

	list, err := trades.GetOpenTrades(ctx, origin)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = trades.UpdateTrade(ctx, trade.ID, func(t *domain.Trade) (*domain.Trade, error) {
		t.Status = domain.TradeStatusClosed
		t.SoldAmount = t.SellAmount
		return t, nil
	})
	require.NoError(t, err)

	got, err := trades.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.True(t, got.IsClosed())
	require.True(t, got.SoldAmount.Eq(trade.SellAmount))

	list, err = trades.GetOpenTrades(ctx, origin)
	require.NoError(t, err)
	require.Empty(t, list)

	all, err := trades.GetAllTrades(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 2)

	_, err = trades.GetTrade(ctx, randomId())
	require.ErrorIs(t, err, domain.ErrTradeNotFound)
}

func testConfigRepository(t *testing.T, repo repoManager) {
	ctx := context.Background()
	configs := repo.ConfigRepository()

	_, err := configs.GetProtocolState(ctx)
	require.ErrorIs(t, err, domain.ErrStateNotFound)
	_, err = configs.GetBrokerState(ctx)
	require.ErrorIs(t, err, domain.ErrStateNotFound)
	_, err = configs.GetBackingConfig(ctx)
	require.ErrorIs(t, err, domain.ErrStateNotFound)

	err = configs.UpdateProtocolState(ctx, func(s *domain.ProtocolState) (*domain.ProtocolState, error) {
		s.Governance = "governance"
		s.BasketsNeeded = fixed.NewFromInt(100)
		return s, nil
	})
	require.NoError(t, err)
	state, err := configs.GetProtocolState(ctx)
	require.NoError(t, err)
	require.Equal(t, "governance", state.Governance)
	require.True(t, state.BasketsNeeded.Eq(fixed.NewFromInt(100)))

	err = configs.UpdateBrokerState(ctx, func(s *domain.BrokerState) (*domain.BrokerState, error) {
		s.BatchAuctionLength = 900
		s.DutchAuctionDisabled = map[string]bool{"USDC": true}
		return s, nil
	})
	require.NoError(t, err)
	broker, err := configs.GetBrokerState(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(900), broker.BatchAuctionLength)
	require.True(t, broker.DutchAuctionDisabled["USDC"])

	err = configs.UpdateBackingConfig(ctx, func(c *domain.BackingConfig) (*domain.BackingConfig, error) {
		c.TradingDelay = 60
		c.MaxTradeSlippage = fixed.MustParse("0.01")
		return c, nil
	})
	require.NoError(t, err)
	cfg, err := configs.GetBackingConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(60), cfg.TradingDelay)
	require.True(t, cfg.MaxTradeSlippage.Eq(fixed.MustParse("0.01")))
}

func testAuctionRepository(t *testing.T, repo repoManager) {
	ctx := context.Background()
	auctions := repo.AuctionRepository()

	auction := makeRandomAuction()
	require.NoError(t, auctions.AddAuction(ctx, auction))
	require.Error(t, auctions.AddAuction(ctx, auction))

	bid := domain.AuctionBid{
		Bidder:     randomHex(8),
		SellAmount: auction.SellAmount,
		BuyAmount:  auction.MinBuyAmount,
	}
	err := auctions.UpdateAuction(ctx, auction.ID, func(a *domain.Auction) (*domain.Auction, error) {
		a.Bids = append(a.Bids, bid)
		return a, nil
	})
	require.NoError(t, err)

	got, err := auctions.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.False(t, got.Settled)
	require.Len(t, got.Bids, 1)
	require.Equal(t, bid.Bidder, got.Bids[0].Bidder)
	require.True(t, got.Bids[0].BuyAmount.Eq(bid.BuyAmount))

	err = auctions.UpdateAuction(ctx, auction.ID, func(a *domain.Auction) (*domain.Auction, error) {
		a.Settled = true
		a.Sold = a.SellAmount
		a.Bought = a.Bids[0].BuyAmount
		return a, nil
	})
	require.NoError(t, err)

	got, err = auctions.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.True(t, got.Settled)
	require.True(t, got.Sold.Eq(auction.SellAmount))

	_, err = auctions.GetAuction(ctx, randomId())
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
	err = auctions.UpdateAuction(ctx, randomId(), func(a *domain.Auction) (*domain.Auction, error) {
		return a, nil
	})
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuctionsSurviveRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	datadir := t.TempDir()

	repo, err := dbbadger.NewRepoManager(datadir, nil)
	require.NoError(t, err)
	auction := makeRandomAuction()
	auction.Bids = append(auction.Bids, domain.AuctionBid{
		Bidder:     randomHex(8),
		SellAmount: auction.SellAmount,
		BuyAmount:  auction.MinBuyAmount,
	})
	require.NoError(t, repo.AuctionRepository().AddAuction(ctx, auction))
	repo.Close()

	repo, err = dbbadger.NewRepoManager(datadir, nil)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.AuctionRepository().GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, auction.Seller, got.Seller)
	require.Equal(t, auction.EndTime, got.EndTime)
	require.True(t, got.SellAmount.Eq(auction.SellAmount))
	require.Len(t, got.Bids, 1)
	require.True(t, got.Bids[0].BuyAmount.Eq(auction.MinBuyAmount))
}
