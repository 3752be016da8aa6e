package revenue

import (
	"context"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application/backing"
	"github.com/tdex-network/basketd/internal/core/application/basket"
	"github.com/tdex-network/basketd/internal/core/application/broker"
	"github.com/tdex-network/basketd/internal/core/application/protocol"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

// Service is a revenue trader: it sells whatever it holds for its token to
// buy, then hands the proceeds to the distributor.
type Service struct {
	account    string
	tokenToBuy string

	repoManager ports.RepoManager
	ledger      ports.TokenLedger
	distributor ports.Distributor
	protocol    *protocol.Service
	basket      *basket.Service
	broker      *broker.Service
	clock       ports.Clock

	running atomic.Bool
}

func NewService(
	account, tokenToBuy string,
	repoManager ports.RepoManager,
	ledger ports.TokenLedger,
	distributor ports.Distributor,
	protocolSvc *protocol.Service,
	basketSvc *basket.Service,
	brokerSvc *broker.Service,
	clock ports.Clock,
) (*Service, error) {
	if account == "" {
		return nil, fmt.Errorf("missing trader account")
	}
	if tokenToBuy == "" {
		return nil, fmt.Errorf("missing token to buy")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing token ledger")
	}
	if distributor == nil {
		return nil, fmt.Errorf("missing distributor")
	}
	if protocolSvc == nil {
		return nil, fmt.Errorf("missing protocol service")
	}
	if basketSvc == nil {
		return nil, fmt.Errorf("missing basket service")
	}
	if brokerSvc == nil {
		return nil, fmt.Errorf("missing broker service")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	return &Service{
		account:     account,
		tokenToBuy:  tokenToBuy,
		repoManager: repoManager,
		ledger:      ledger,
		distributor: distributor,
		protocol:    protocolSvc,
		basket:      basketSvc,
		broker:      brokerSvc,
		clock:       clock,
	}, nil
}

func (s *Service) Account() string {
	return s.account
}

func (s *Service) TokenToBuy() string {
	return s.tokenToBuy
}

// ManageTokens distributes the held token to buy and opens a trade for any
// other held token, using the auction kind at the same position.
func (s *Service) ManageTokens(
	ctx context.Context, erc20s []string, kinds []domain.TradeKind,
) ([]*domain.Trade, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	if len(erc20s) != len(kinds) {
		return nil, fmt.Errorf("%w: length mismatch", domain.ErrInvalidTradeRequest)
	}
	seen := make(map[string]bool, len(erc20s))
	for _, erc20 := range erc20s {
		if seen[erc20] {
			return nil, domain.ErrDuplicateToken
		}
		seen[erc20] = true
	}
	if err := s.protocol.RequireTradingOpen(ctx); err != nil {
		return nil, err
	}
	ready, err := s.basket.IsReady(ctx)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, domain.ErrBasketNotReady
	}

	cfg, err := s.repoManager.ConfigRepository().GetBackingConfig(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.repoManager.AssetRepository().GetAllAssets(ctx)
	if err != nil {
		return nil, err
	}
	assets := domain.NewAssetSet(all)

	trades := make([]*domain.Trade, 0)
	for i, erc20 := range erc20s {
		if erc20 == s.tokenToBuy {
			if err := s.distribute(ctx); err != nil {
				return nil, err
			}
			continue
		}

		trade, err := s.sell(ctx, erc20, kinds[i], assets, *cfg)
		if err != nil {
			return nil, err
		}
		if trade != nil {
			trades = append(trades, trade)
		}
	}
	return trades, nil
}

// SettleTrade settles the open trade for the given sell token and
// distributes the proceeds.
func (s *Service) SettleTrade(ctx context.Context, sell string) (*domain.Trade, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	trade, err := s.broker.SettleTrade(ctx, s.account, sell)
	if err != nil {
		return nil, err
	}
	if err := s.distribute(ctx); err != nil {
		return nil, err
	}
	return trade, nil
}

func (s *Service) sell(
	ctx context.Context, erc20 string, kind domain.TradeKind,
	assets domain.AssetSet, cfg domain.BackingConfig,
) (*domain.Trade, error) {
	balance, err := s.ledger.BalanceOf(ctx, s.account, erc20)
	if err != nil {
		return nil, err
	}
	if balance.IsZero() {
		return nil, nil
	}
	open, err := s.broker.OpenTrades(ctx, s.account)
	if err != nil {
		return nil, err
	}
	for _, t := range open {
		if t.Sell == erc20 {
			return nil, nil
		}
	}

	sellAsset := assets.Get(erc20)
	if sellAsset == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, erc20)
	}
	buyAsset := assets.Get(s.tokenToBuy)
	if buyAsset == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, s.tokenToBuy)
	}

	now := s.clock.Now()
	sellPrice, buyPrice := sellAsset.Price(now), buyAsset.Price(now)
	prices := domain.TradePrices{
		SellLow:  sellPrice.Low,
		SellHigh: sellPrice.High,
		BuyLow:   buyPrice.Low,
		BuyHigh:  buyPrice.High,
	}

	amount := balance
	if sellPrice.IsPriced() {
		if sellPrice.Low.Mul(balance).Lt(cfg.MinTradeVolume) {
			log.Debugf("%s: %s balance below min trade volume", s.account, erc20)
			return nil, nil
		}
		maxVolume := fixed.Min(sellAsset.MaxTradeVolume, buyAsset.MaxTradeVolume).
			Div(sellPrice.High)
		amount = fixed.Min(amount, maxVolume)
	}
	amount = sellAsset.ToTokenAmount(amount, fixed.Floor)
	if amount.IsZero() {
		return nil, nil
	}

	minBuy := buyAsset.ToTokenAmount(
		backing.MinBuyAmount(amount, prices, cfg.MaxTradeSlippage), fixed.Ceil,
	)
	return s.broker.OpenTrade(ctx, s.account, kind, domain.TradeRequest{
		Sell:         erc20,
		Buy:          s.tokenToBuy,
		SellDecimals: sellAsset.Decimals,
		BuyDecimals:  buyAsset.Decimals,
		SellAmount:   amount,
		MinBuyAmount: minBuy,
	}, prices)
}

func (s *Service) distribute(ctx context.Context) error {
	balance, err := s.ledger.BalanceOf(ctx, s.account, s.tokenToBuy)
	if err != nil {
		return err
	}
	if balance.IsZero() {
		return nil
	}
	if err := s.distributor.Distribute(ctx, s.account, s.tokenToBuy, balance); err != nil {
		return err
	}
	log.Infof("%s: distributed %s %s", s.account, balance, s.tokenToBuy)
	return nil
}

func (s *Service) enter() error {
	if !s.running.CompareAndSwap(false, true) {
		return domain.ErrReentrant
	}
	return nil
}

func (s *Service) exit() {
	s.running.Store(false)
}
