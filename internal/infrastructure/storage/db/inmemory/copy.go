package inmemory

import (
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

// Stored values are copied in and out so that callers can never alter the
// store without going through an update.

func copyAsset(a *domain.Asset) *domain.Asset {
	cp := *a
	if a.Collateral != nil {
		c := *a.Collateral
		cp.Collateral = &c
	}
	return &cp
}

func copyBasket(b *domain.Basket) *domain.Basket {
	cp := *b
	cp.ERC20s = append([]string{}, b.ERC20s...)
	cp.RefAmts = append([]fixed.Fix{}, b.RefAmts...)
	return &cp
}

func copyPrimeBasket(p *domain.PrimeBasket) *domain.PrimeBasket {
	return &domain.PrimeBasket{
		Entries: append([]domain.PrimeEntry{}, p.Entries...),
	}
}

func copyBackupConfig(c *domain.BackupConfig) *domain.BackupConfig {
	cp := *c
	cp.ERC20s = append([]string{}, c.ERC20s...)
	return &cp
}

func copyTrade(t *domain.Trade) *domain.Trade {
	cp := *t
	return &cp
}

func copyBrokerState(s *domain.BrokerState) *domain.BrokerState {
	cp := *s
	cp.DutchAuctionDisabled = make(map[string]bool, len(s.DutchAuctionDisabled))
	for k, v := range s.DutchAuctionDisabled {
		cp.DutchAuctionDisabled[k] = v
	}
	return &cp
}

func copyAuction(a *domain.Auction) *domain.Auction {
	cp := *a
	cp.Bids = append([]domain.AuctionBid{}, a.Bids...)
	return &cp
}
