package backing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application/basket"
	"github.com/tdex-network/basketd/internal/core/application/broker"
	"github.com/tdex-network/basketd/internal/core/application/protocol"
	"github.com/tdex-network/basketd/internal/core/application/pubsub"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

// Service is the backing manager. It holds the collateral and restores full
// backing, one trade at a time.
type Service struct {
	repoManager ports.RepoManager
	ledger      ports.TokenLedger
	distributor ports.Distributor
	protocol    *protocol.Service
	basket      *basket.Service
	broker      *broker.Service
	pubsub      *pubsub.Service
	clock       ports.Clock

	running atomic.Bool
}

func NewService(
	repoManager ports.RepoManager,
	ledger ports.TokenLedger,
	distributor ports.Distributor,
	protocolSvc *protocol.Service,
	basketSvc *basket.Service,
	brokerSvc *broker.Service,
	pubsubSvc *pubsub.Service,
	clock ports.Clock,
) (*Service, error) {
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
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	return &Service{
		repoManager: repoManager,
		ledger:      ledger,
		distributor: distributor,
		protocol:    protocolSvc,
		basket:      basketSvc,
		broker:      brokerSvc,
		pubsub:      pubsubSvc,
		clock:       clock,
	}, nil
}

// Init stores the given config unless one exists already.
func (s *Service) Init(ctx context.Context, cfg domain.BackingConfig) error {
	if _, err := s.repo().GetBackingConfig(ctx); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrStateNotFound) {
		return err
	}

	validated, err := domain.NewBackingConfig(
		cfg.TradingDelay, cfg.MaxTradeSlippage, cfg.BackingBuffer,
		cfg.MinTradeVolume,
	)
	if err != nil {
		return err
	}
	return s.repo().UpdateBackingConfig(
		ctx, func(_ *domain.BackingConfig) (*domain.BackingConfig, error) {
			return validated, nil
		},
	)
}

// Rebalance opens the single best trade towards full backing. It returns a
// nil trade if there's nothing worth trading, in which case the baskets
// needed are cut down to the baskets held.
func (s *Service) Rebalance(
	ctx context.Context, kind domain.TradeKind,
) (*domain.Trade, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	if err := s.requireTradable(ctx); err != nil {
		return nil, err
	}
	collateralized, err := s.basket.FullyCollateralized(ctx)
	if err != nil {
		return nil, err
	}
	if collateralized {
		return nil, domain.ErrAlreadyCollateralized
	}

	in, err := s.planInput(ctx)
	if err != nil {
		return nil, err
	}
	req, prices, ok := PlanRebalance(*in)
	if !ok {
		log.Debug("rebalance: nothing to trade")
		return nil, s.takeHaircut(ctx)
	}

	return s.broker.OpenTrade(
		ctx, domain.BackingManagerAccount, kind, req, prices,
	)
}

// ForwardRevenue moves the excess of the given tokens to the revenue
// traders, split per the distributor's totals.
func (s *Service) ForwardRevenue(ctx context.Context, erc20s []string) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	if hasDuplicates(erc20s) {
		return domain.ErrDuplicateToken
	}
	if err := s.requireTradable(ctx); err != nil {
		return err
	}
	collateralized, err := s.basket.FullyCollateralized(ctx)
	if err != nil {
		return err
	}
	if !collateralized {
		return domain.ErrUndercollateralized
	}

	in, err := s.planInput(ctx)
	if err != nil {
		return err
	}
	state, err := s.protocol.GetState(ctx)
	if err != nil {
		return err
	}
	issuedTotal, backstopTotal, err := s.distributor.Totals(ctx)
	if err != nil {
		return err
	}
	totals := issuedTotal.Plus(backstopTotal)
	buffer := fixed.One.Plus(in.Config.BackingBuffer)

	for _, erc20 := range erc20s {
		isProtocolToken := erc20 == state.IssuedToken || erc20 == state.BackstopToken
		if in.Assets.Get(erc20) == nil && !isProtocolToken {
			return fmt.Errorf("%w: %s", domain.ErrAssetNotFound, erc20)
		}

		held := in.Balances(erc20)
		kept := fixed.Zero
		if in.Basket.Contains(erc20) {
			kept = in.Basket.Quantity(erc20, in.Assets, fixed.Ceil).
				MulRnd(in.BasketsNeeded, fixed.Ceil).
				MulRnd(buffer, fixed.Ceil)
		}
		excess := held.Minus(kept)
		if excess.IsZero() {
			continue
		}

		toBackstop := fixed.Zero
		switch {
		case erc20 == state.BackstopToken:
			toBackstop = excess
		case erc20 == state.IssuedToken:
		case totals.IsZero():
			continue
		default:
			toBackstop = excess.MulDiv(backstopTotal, totals, fixed.Floor)
		}
		toIssued := excess.Minus(toBackstop)

		if err := s.forward(
			ctx, domain.BackstopTraderAccount, erc20, toBackstop,
		); err != nil {
			return err
		}
		if err := s.forward(
			ctx, domain.IssuedTraderAccount, erc20, toIssued,
		); err != nil {
			return err
		}
	}
	return nil
}

// SettleTrade settles the open trade of the backing manager for the given
// sell token. It's never blocked by pause or freeze.
func (s *Service) SettleTrade(ctx context.Context, sell string) (*domain.Trade, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	return s.broker.SettleTrade(ctx, domain.BackingManagerAccount, sell)
}

func (s *Service) GetConfig(ctx context.Context) (*domain.BackingConfig, error) {
	return s.repo().GetBackingConfig(ctx)
}

func (s *Service) SetTradingDelay(ctx context.Context, delay int64) error {
	return s.update(ctx, func(c *domain.BackingConfig) error {
		return c.SetTradingDelay(delay)
	})
}

func (s *Service) SetMaxTradeSlippage(ctx context.Context, slippage fixed.Fix) error {
	return s.update(ctx, func(c *domain.BackingConfig) error {
		return c.SetMaxTradeSlippage(slippage)
	})
}

func (s *Service) SetBackingBuffer(ctx context.Context, buffer fixed.Fix) error {
	return s.update(ctx, func(c *domain.BackingConfig) error {
		return c.SetBackingBuffer(buffer)
	})
}

func (s *Service) SetMinTradeVolume(ctx context.Context, volume fixed.Fix) error {
	return s.update(ctx, func(c *domain.BackingConfig) error {
		return c.SetMinTradeVolume(volume)
	})
}

// requireTradable checks the preconditions shared by rebalance and revenue
// forwarding.
func (s *Service) requireTradable(ctx context.Context) error {
	if err := s.protocol.RequireTradingOpen(ctx); err != nil {
		return err
	}
	open, err := s.broker.OpenTrades(ctx, domain.BackingManagerAccount)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return domain.ErrTradesOpen
	}
	ready, err := s.basket.IsReady(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return domain.ErrBasketNotReady
	}

	cfg, err := s.repo().GetBackingConfig(ctx)
	if err != nil {
		return err
	}
	timestamp, err := s.basket.Timestamp(ctx)
	if err != nil {
		return err
	}
	if s.clock.Now() < timestamp+cfg.TradingDelay {
		return domain.ErrTradingDelay
	}
	return nil
}

// takeHaircut lowers the baskets needed to the bottom of the baskets held
// by the backing manager.
func (s *Service) takeHaircut(ctx context.Context) error {
	held, err := s.basket.BasketsHeldBy(ctx, domain.BackingManagerAccount)
	if err != nil {
		return err
	}
	previous, lowered, err := s.protocol.LowerBasketsNeeded(ctx, held.Bottom)
	if err != nil {
		return err
	}
	if lowered {
		s.pubsub.PublishBasketsNeededChangedEvent(previous, held.Bottom)
	}
	return nil
}

func (s *Service) planInput(ctx context.Context) (*PlanInput, error) {
	b, _, err := s.basket.Current(ctx)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrBasketNotReady
	}
	all, err := s.repoManager.AssetRepository().GetAllAssets(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.repo().GetBackingConfig(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.protocol.GetState(ctx)
	if err != nil {
		return nil, err
	}
	balances, err := s.ledger.Balances(ctx, domain.BackingManagerAccount)
	if err != nil {
		return nil, err
	}
	byToken := make(map[string]fixed.Fix, len(balances))
	for _, bal := range balances {
		byToken[bal.Token] = bal.Amount
	}

	return &PlanInput{
		Assets:        domain.NewAssetSet(all),
		Basket:        b,
		BasketsNeeded: state.BasketsNeeded,
		Balances:      func(erc20 string) fixed.Fix { return byToken[erc20] },
		Config:        *cfg,
		IssuedToken:   state.IssuedToken,
		Now:           s.clock.Now(),
	}, nil
}

func (s *Service) forward(
	ctx context.Context, trader, erc20 string, amount fixed.Fix,
) error {
	if amount.IsZero() {
		return nil
	}
	if err := s.ledger.Transfer(
		ctx, domain.BackingManagerAccount, trader, erc20, amount,
	); err != nil {
		return err
	}
	log.Debugf("forwarded %s %s to %s", amount, erc20, trader)
	return nil
}

func (s *Service) update(
	ctx context.Context, fn func(c *domain.BackingConfig) error,
) error {
	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	return s.repo().UpdateBackingConfig(
		ctx, func(c *domain.BackingConfig) (*domain.BackingConfig, error) {
			if err := fn(c); err != nil {
				return nil, err
			}
			return c, nil
		},
	)
}

func (s *Service) repo() domain.ConfigRepository {
	return s.repoManager.ConfigRepository()
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

func hasDuplicates(erc20s []string) bool {
	seen := make(map[string]bool, len(erc20s))
	for _, erc20 := range erc20s {
		if seen[erc20] {
			return true
		}
		seen[erc20] = true
	}
	return false
}
