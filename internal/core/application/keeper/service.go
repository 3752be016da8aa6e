package keeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application"
	"github.com/tdex-network/basketd/internal/core/application/caller"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/stats"
	"go.uber.org/ratelimit"
)

// Caller is the identity the keeper acts with.
const Caller = "keeper"

// retryLater are the errors meaning a precondition is not met yet.
var retryLater = []error{
	domain.ErrPausedOrFrozen,
	domain.ErrTradesOpen,
	domain.ErrTradeAlreadyOpen,
	domain.ErrBasketNotReady,
	domain.ErrBasketNotDisabled,
	domain.ErrTradingDelay,
	domain.ErrAlreadyCollateralized,
	domain.ErrUndercollateralized,
	domain.ErrAuctionNotOver,
	domain.ErrAuctionKindDisabled,
}

// Service periodically drives the engine towards full backing: refresh,
// basket switch, settlement, rebalance, revenue forwarding and management.
type Service struct {
	engine      *application.Engine
	auctionKind domain.TradeKind
	interval    time.Duration

	quit chan struct{}
	done chan struct{}
}

func NewService(
	engine *application.Engine, auctionKind domain.TradeKind,
	interval time.Duration,
) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("missing engine")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	return &Service{
		engine:      engine,
		auctionKind: auctionKind,
		interval:    interval,
	}, nil
}

func (s *Service) Start() {
	s.quit = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		limiter := ratelimit.New(1, ratelimit.Per(s.interval))
		for {
			limiter.Take()
			select {
			case <-s.quit:
				return
			default:
			}

			ctx := caller.WithCaller(context.Background(), Caller)
			s.Tick(ctx)
		}
	}()
	log.Infof("keeper started with interval %s", s.interval)
}

func (s *Service) Stop() {
	if s.quit == nil {
		return
	}
	close(s.quit)
	<-s.done
	s.quit = nil
	log.Info("keeper stopped")
}

// Tick runs a single round of automation. Failing steps are logged and don't
// prevent the following ones.
func (s *Service) Tick(ctx context.Context) {
	s.step(ctx, "refresh", s.refresh)
	s.step(ctx, "refresh basket", s.refreshBasket)
	s.step(ctx, "settle trades", s.settleTrades)
	s.step(ctx, "rebalance", s.rebalance)
	s.step(ctx, "manage tokens", s.manageTokens)
}

func (s *Service) step(
	ctx context.Context, name string, fn func(ctx context.Context) error,
) {
	err := s.engine.Do(ctx, fn)
	if err == nil {
		stats.IncKeeperStep(name, "ok")
		return
	}
	if isRetryLater(err) {
		stats.IncKeeperStep(name, "retry")
		log.WithError(err).Debugf("keeper: %s, retry later", name)
		return
	}
	stats.IncKeeperStep(name, "failed")
	log.WithError(err).Warnf("keeper: %s, needs governance", name)
}

func (s *Service) refresh(ctx context.Context) error {
	return s.engine.Registry().Refresh(ctx)
}

func (s *Service) refreshBasket(ctx context.Context) error {
	status, err := s.engine.Basket().Status(ctx)
	if err != nil {
		return err
	}
	if status != domain.CollateralStatusDisabled {
		return nil
	}
	_, err = s.engine.Basket().RefreshBasket(ctx)
	return err
}

func (s *Service) settleTrades(ctx context.Context) error {
	stranded, err := s.engine.Broker().StrandedTrades(ctx)
	if err != nil {
		return err
	}
	for _, t := range stranded {
		if _, err := s.engine.Broker().ReleaseEscrow(ctx, t.ID); err != nil {
			return fmt.Errorf("trade %s: %w", t.ID, err)
		}
		log.Infof("keeper: released escrow of trade %s", t.ID)
	}

	trades, err := s.engine.Broker().SettleableTrades(ctx)
	if err != nil {
		return err
	}

	for _, t := range trades {
		var err error
		switch t.Origin {
		case domain.BackingManagerAccount:
			_, err = s.engine.Backing().SettleTrade(ctx, t.Sell)
		case domain.BackstopTraderAccount:
			_, err = s.engine.BackstopTrader().SettleTrade(ctx, t.Sell)
		case domain.IssuedTraderAccount:
			_, err = s.engine.IssuedTrader().SettleTrade(ctx, t.Sell)
		default:
			err = fmt.Errorf("unknown trade origin %s", t.Origin)
		}
		if err != nil {
			return fmt.Errorf("trade %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *Service) rebalance(ctx context.Context) error {
	collateralized, err := s.engine.Basket().FullyCollateralized(ctx)
	if err != nil {
		return err
	}
	if !collateralized {
		trade, err := s.engine.Backing().Rebalance(ctx, s.auctionKind)
		if err != nil {
			return err
		}
		if trade != nil {
			log.Infof("keeper: rebalance opened trade %s", trade.ID)
		}
		return nil
	}

	held, err := s.heldTokens(ctx, domain.BackingManagerAccount)
	if err != nil || len(held) == 0 {
		return err
	}
	return s.engine.Backing().ForwardRevenue(ctx, held)
}

func (s *Service) manageTokens(ctx context.Context) error {
	for _, trader := range s.engine.RevenueTraders() {
		held, err := s.heldTokens(ctx, trader.Account())
		if err != nil {
			return err
		}
		if len(held) == 0 {
			continue
		}

		kinds := make([]domain.TradeKind, 0, len(held))
		for range held {
			kinds = append(kinds, s.auctionKind)
		}
		if _, err := trader.ManageTokens(ctx, held, kinds); err != nil {
			return fmt.Errorf("%s: %w", trader.Account(), err)
		}
	}
	return nil
}

func (s *Service) heldTokens(ctx context.Context, account string) ([]string, error) {
	balances, err := s.engine.Ledger().Balances(ctx, account)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(balances))
	for _, b := range balances {
		if !b.Amount.IsZero() {
			tokens = append(tokens, b.Token)
		}
	}
	return tokens, nil
}

func isRetryLater(err error) bool {
	for _, e := range retryLater {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
