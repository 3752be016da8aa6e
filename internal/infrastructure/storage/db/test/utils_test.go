package db_test

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	dbbadger "github.com/tdex-network/basketd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/basketd/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/basketd/pkg/fixed"
)

type repoManager struct {
	ports.RepoManager
	Name string
}

func createRepoManagers(t *testing.T) []repoManager {
	badgerRepo, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerRepo.Close)

	return []repoManager{
		{inmemory.NewRepoManager(), "inmemory"},
		{badgerRepo, "badger"},
	}
}

func makeRandomAsset(index int) *domain.Asset {
	erc20 := randomHex(20)
	return &domain.Asset{
		ERC20:          erc20,
		Symbol:         erc20[:4],
		Decimals:       18,
		MaxTradeVolume: fixed.NewFromInt(int64(randomIntInRange(1, 1000000))),
		Feed:           erc20,
		OracleError:    fixed.MustParse("0.01"),
		OracleTimeout:  3600,
		PriceTimeout:   3600,
		Index:          index,
		Collateral: &domain.Collateral{
			TargetName:        "USD",
			RefPerTok:         fixed.One,
			TargetPerRef:      fixed.One,
			PegBottom:         fixed.MustParse("0.95"),
			PegTop:            fixed.MustParse("1.05"),
			DelayUntilDefault: 86400,
			WhenDefault:       domain.NeverDefault,
		},
	}
}

func makeRandomTrade(origin string) *domain.Trade {
	return &domain.Trade{
		ID:             randomId(),
		Origin:         origin,
		Kind:           domain.BatchAuction,
		Status:         domain.TradeStatusOpen,
		Sell:           randomHex(20),
		Buy:            randomHex(20),
		SellDecimals:   18,
		BuyDecimals:    6,
		SellAmount:     fixed.NewFromInt(int64(randomIntInRange(1, 1000))),
		MinBuyAmount:   fixed.One,
		WorstCasePrice: fixed.MustParse("0.98"),
		BestPrice:      fixed.MustParse("1.02"),
		StartTime:      randomTimestamp(),
	}
}

func makeRandomAuction() *domain.Auction {
	return &domain.Auction{
		ID:           randomId(),
		Seller:       randomHex(8),
		Sell:         randomHex(20),
		Buy:          randomHex(20),
		SellAmount:   fixed.NewFromInt(int64(randomIntInRange(1, 1000))),
		MinBuyAmount: fixed.One,
		BuyDecimals:  6,
		EndTime:      randomTimestamp(),
		Bids:         make([]domain.AuctionBid, 0),
	}
}

func randomTimestamp() int64 {
	return int64(randomIntInRange(1000000000, 1662688000))
}

func randomHex(len int) string {
	return hex.EncodeToString(randomBytes(len))
}

func randomId() string {
	return uuid.New().String()
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}

func randomIntInRange(min, max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	return int(n.Int64()) + min
}
