package ports

import "github.com/tdex-network/basketd/internal/core/domain"

// RepoManager interface defines the methods to access every repository.
type RepoManager interface {
	AssetRepository() domain.AssetRepository
	BasketRepository() domain.BasketRepository
	TradeRepository() domain.TradeRepository
	ConfigRepository() domain.ConfigRepository
	BalanceRepository() domain.BalanceRepository
	AuctionRepository() domain.AuctionRepository

	Close()
}
