package inmemory

import (
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
)

type repoManager struct {
	assetRepository   domain.AssetRepository
	basketRepository  domain.BasketRepository
	tradeRepository   domain.TradeRepository
	configRepository  domain.ConfigRepository
	balanceRepository domain.BalanceRepository
	auctionRepository domain.AuctionRepository
}

func NewRepoManager() ports.RepoManager {
	return &repoManager{
		assetRepository:   NewAssetRepositoryImpl(),
		basketRepository:  NewBasketRepositoryImpl(),
		tradeRepository:   NewTradeRepositoryImpl(),
		configRepository:  NewConfigRepositoryImpl(),
		balanceRepository: NewBalanceRepositoryImpl(),
		auctionRepository: NewAuctionRepositoryImpl(),
	}
}

func (r *repoManager) AssetRepository() domain.AssetRepository {
	return r.assetRepository
}

func (r *repoManager) BasketRepository() domain.BasketRepository {
	return r.basketRepository
}

func (r *repoManager) TradeRepository() domain.TradeRepository {
	return r.tradeRepository
}

func (r *repoManager) ConfigRepository() domain.ConfigRepository {
	return r.configRepository
}

func (r *repoManager) BalanceRepository() domain.BalanceRepository {
	return r.balanceRepository
}

func (r *repoManager) AuctionRepository() domain.AuctionRepository {
	return r.auctionRepository
}

func (r *repoManager) Close() {}
