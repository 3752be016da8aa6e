package broker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application/protocol"
	"github.com/tdex-network/basketd/internal/core/application/pubsub"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
	"github.com/tdex-network/basketd/pkg/stats"
)

// Service is the factory and gatekeeper of trades. Every trader can have at
// most one open trade per sell token.
type Service struct {
	repoManager ports.RepoManager
	ledger      ports.TokenLedger
	venue       ports.BatchAuctionVenue
	protocol    *protocol.Service
	pubsub      *pubsub.Service
	clock       ports.Clock
	traders     map[string]bool

	running atomic.Bool
}

func NewService(
	repoManager ports.RepoManager,
	ledger ports.TokenLedger,
	venue ports.BatchAuctionVenue,
	protocolSvc *protocol.Service,
	pubsubSvc *pubsub.Service,
	clock ports.Clock,
	traders []string,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing token ledger")
	}
	if venue == nil {
		return nil, fmt.Errorf("missing batch auction venue")
	}
	if protocolSvc == nil {
		return nil, fmt.Errorf("missing protocol service")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	if len(traders) == 0 {
		return nil, fmt.Errorf("missing traders")
	}

	traderSet := make(map[string]bool, len(traders))
	for _, t := range traders {
		traderSet[t] = true
	}
	return &Service{
		repoManager: repoManager,
		ledger:      ledger,
		venue:       venue,
		protocol:    protocolSvc,
		pubsub:      pubsubSvc,
		clock:       clock,
		traders:     traderSet,
	}, nil
}

// Init stores the initial broker state unless one exists already.
func (s *Service) Init(
	ctx context.Context, batchAuctionLength, dutchAuctionLength int64,
) error {
	if _, err := s.repo().GetBrokerState(ctx); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrStateNotFound) {
		return err
	}

	state, err := domain.NewBrokerState(batchAuctionLength, dutchAuctionLength)
	if err != nil {
		return err
	}
	return s.repo().UpdateBrokerState(
		ctx, func(_ *domain.BrokerState) (*domain.BrokerState, error) {
			return state, nil
		},
	)
}

// OpenTrade validates the request, moves the sell amount from the origin to
// the escrow of the new trade and starts the auction.
func (s *Service) OpenTrade(
	ctx context.Context, origin string, kind domain.TradeKind,
	req domain.TradeRequest, prices domain.TradePrices,
) (*domain.Trade, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	if !s.traders[origin] {
		return nil, domain.ErrNotTrader
	}
	if err := s.protocol.RequireTradingOpen(ctx); err != nil {
		return nil, err
	}

	state, err := s.repo().GetBrokerState(ctx)
	if err != nil {
		return nil, err
	}
	if state.IsKindDisabled(kind, req.Sell, req.Buy) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAuctionKindDisabled, kind)
	}
	if open, err := s.trades().GetOpenTrade(ctx, origin, req.Sell); err != nil {
		return nil, err
	} else if open != nil {
		return nil, domain.ErrTradeAlreadyOpen
	}

	cfg, err := s.repoManager.ConfigRepository().GetBackingConfig(ctx)
	if err != nil {
		return nil, err
	}
	trade, err := domain.NewTrade(
		uuid.New().String(), origin, kind, req, prices, cfg.MaxTradeSlippage,
	)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := trade.Open(now, state.AuctionLength(kind)); err != nil {
		return nil, err
	}

	escrow := domain.TradeAccount(trade.ID)
	if err := s.ledger.Transfer(
		ctx, origin, escrow, trade.Sell, trade.SellAmount,
	); err != nil {
		return nil, err
	}

	if kind == domain.BatchAuction {
		auctionID, err := s.venue.InitiateAuction(ctx, escrow, ports.AuctionParams{
			Sell:         trade.Sell,
			Buy:          trade.Buy,
			SellAmount:   trade.SellAmount,
			MinBuyAmount: trade.MinBuyAmount,
			BuyDecimals:  trade.BuyDecimals,
			EndTime:      trade.EndTime,
		})
		if err != nil {
			return nil, s.abortOpen(ctx, trade, err)
		}
		trade.AuctionID = auctionID
	}

	if err := s.trades().AddTrade(ctx, trade); err != nil {
		return nil, s.abortOpen(ctx, trade, err)
	}

	log.Infof(
		"opened %s trade %s selling %s %s for %s",
		kind, trade.ID, trade.SellAmount, trade.Sell, trade.Buy,
	)
	s.pubsub.PublishTradeStartedEvent(*trade)
	return trade, nil
}

// SettleTrade closes the open trade of origin for the given sell token and
// returns the proceeds to origin. It is never blocked by pause or freeze.
func (s *Service) SettleTrade(
	ctx context.Context, origin, sell string,
) (*domain.Trade, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	trade, err := s.trades().GetOpenTrade(ctx, origin, sell)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, domain.ErrNoTradeOpen
	}
	if trade.Origin != origin {
		return nil, domain.ErrOnlyOrigin
	}

	now := s.clock.Now()
	if !trade.CanSettle(now) {
		return nil, domain.ErrAuctionNotOver
	}

	sold, bought := fixed.Zero, fixed.Zero
	if trade.Kind == domain.BatchAuction {
		res, err := s.venue.SettleAuction(ctx, trade.AuctionID)
		if err != nil {
			return nil, err
		}
		sold, bought = res.Sold, res.Bought
	}

	if err := s.trades().UpdateTrade(
		ctx, trade.ID, func(t *domain.Trade) (*domain.Trade, error) {
			if _, err := t.Settle(now, sold, bought); err != nil {
				return nil, err
			}
			trade = t
			return t, nil
		},
	); err != nil {
		return nil, err
	}

	if trade.IsViolation() {
		log.Warnf(
			"batch trade %s cleared at %s, below worst case price %s",
			trade.ID, trade.ClearingPrice(), trade.WorstCasePrice,
		)
		if err := s.setBatchAuctionDisabled(ctx, true); err != nil {
			return nil, err
		}
	}

	if err := s.releaseEscrow(ctx, trade); err != nil {
		return nil, fmt.Errorf("trade %s closed, escrow not released: %w", trade.ID, err)
	}

	log.Infof(
		"settled trade %s: sold %s %s, bought %s %s",
		trade.ID, trade.SoldAmount, trade.Sell, trade.BoughtAmount, trade.Buy,
	)
	s.pubsub.PublishTradeSettledEvent(*trade)
	stats.IncTradesSettled(trade.Kind.String())
	return trade, nil
}

// Bid takes the whole lot of an open dutch auction at the current price.
// The trade is closed and persisted before any value moves, and reopened if
// the value can't move.
func (s *Service) Bid(
	ctx context.Context, tradeID, bidder string,
) (*domain.Trade, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	trade, err := s.trades().GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade.Kind != domain.DutchAuction {
		return nil, fmt.Errorf("%w: not a dutch auction", domain.ErrInvalidTradeState)
	}
	if !trade.IsOpen() {
		return nil, domain.ErrInvalidTradeState
	}
	if bidder == "" || bidder == trade.Origin || domain.IsEscrowAccount(bidder) {
		return nil, domain.ErrInvalidBidder
	}

	now := s.clock.Now()
	amount, err := trade.BidAmount(now)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.BalanceOf(ctx, bidder, trade.Buy)
	if err != nil {
		return nil, err
	}
	if balance.Lt(amount) {
		return nil, domain.ErrInsufficientBalance
	}

	if err := s.trades().UpdateTrade(
		ctx, trade.ID, func(t *domain.Trade) (*domain.Trade, error) {
			if _, err := t.Bid(now, bidder); err != nil {
				return nil, err
			}
			trade = t
			return t, nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.ledger.Transfer(
		ctx, bidder, trade.Origin, trade.Buy, trade.BoughtAmount,
	); err != nil {
		return nil, s.revertBid(ctx, trade.ID, bidder, err)
	}
	if err := s.ledger.Transfer(
		ctx, domain.TradeAccount(trade.ID), bidder, trade.Sell, trade.SoldAmount,
	); err != nil {
		if rerr := s.ledger.Transfer(
			ctx, trade.Origin, bidder, trade.Buy, trade.BoughtAmount,
		); rerr != nil {
			return nil, fmt.Errorf("%s, failed to return payment: %s", err, rerr)
		}
		return nil, s.revertBid(ctx, trade.ID, bidder, err)
	}

	log.Infof(
		"dutch trade %s taken by %s for %s %s",
		trade.ID, bidder, trade.BoughtAmount, trade.Buy,
	)
	s.pubsub.PublishTradeSettledEvent(*trade)
	stats.IncTradesSettled(trade.Kind.String())
	return trade, nil
}

// ReleaseEscrow returns what is left in the escrow of a closed trade to its
// origin. Releasing an already released trade is a no-op.
func (s *Service) ReleaseEscrow(ctx context.Context, tradeID string) (*domain.Trade, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	trade, err := s.trades().GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.IsClosed() {
		return nil, domain.ErrInvalidTradeState
	}
	if trade.EscrowReleased {
		return trade, nil
	}
	if err := s.releaseEscrow(ctx, trade); err != nil {
		return nil, err
	}
	return trade, nil
}

// StrandedTrades returns the closed trades whose escrow was not released.
func (s *Service) StrandedTrades(ctx context.Context) ([]*domain.Trade, error) {
	all, err := s.trades().GetAllTrades(ctx)
	if err != nil {
		return nil, err
	}
	stranded := make([]*domain.Trade, 0)
	for _, t := range all {
		if t.IsStranded() {
			stranded = append(stranded, t)
		}
	}
	return stranded, nil
}

// BidAmount returns what a bidder has to pay now to take a dutch auction.
func (s *Service) BidAmount(ctx context.Context, tradeID string) (fixed.Fix, error) {
	trade, err := s.trades().GetTrade(ctx, tradeID)
	if err != nil {
		return fixed.Zero, err
	}
	if !trade.IsOpen() {
		return fixed.Zero, domain.ErrInvalidTradeState
	}
	return trade.BidAmount(s.clock.Now())
}

func (s *Service) GetTrade(ctx context.Context, id string) (*domain.Trade, error) {
	return s.trades().GetTrade(ctx, id)
}

func (s *Service) ListTrades(ctx context.Context) ([]*domain.Trade, error) {
	return s.trades().GetAllTrades(ctx)
}

// OpenTrades returns the open trades of origin, or of every trader if origin
// is empty.
func (s *Service) OpenTrades(ctx context.Context, origin string) ([]*domain.Trade, error) {
	return s.trades().GetOpenTrades(ctx, origin)
}

// SettleableTrades returns the open trades whose auction is over.
func (s *Service) SettleableTrades(ctx context.Context) ([]*domain.Trade, error) {
	open, err := s.trades().GetOpenTrades(ctx, "")
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	settleable := make([]*domain.Trade, 0, len(open))
	for _, t := range open {
		if t.CanSettle(now) {
			settleable = append(settleable, t)
		}
	}
	return settleable, nil
}

func (s *Service) GetState(ctx context.Context) (*domain.BrokerState, error) {
	return s.repo().GetBrokerState(ctx)
}

func (s *Service) SetBatchAuctionDisabled(ctx context.Context, disabled bool) error {
	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	return s.setBatchAuctionDisabled(ctx, disabled)
}

func (s *Service) SetDutchAuctionDisabled(
	ctx context.Context, erc20 string, disabled bool,
) error {
	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	if err := s.repo().UpdateBrokerState(
		ctx, func(st *domain.BrokerState) (*domain.BrokerState, error) {
			st.SetDutchAuctionDisabled(erc20, disabled)
			return st, nil
		},
	); err != nil {
		return err
	}

	log.Infof("dutch auctions of %s disabled: %t", erc20, disabled)
	s.pubsub.PublishDutchAuctionDisabledEvent(erc20, disabled)
	return nil
}

func (s *Service) SetBatchAuctionLength(ctx context.Context, length int64) error {
	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	return s.repo().UpdateBrokerState(
		ctx, func(st *domain.BrokerState) (*domain.BrokerState, error) {
			if err := st.SetBatchAuctionLength(length); err != nil {
				return nil, err
			}
			return st, nil
		},
	)
}

func (s *Service) SetDutchAuctionLength(ctx context.Context, length int64) error {
	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	return s.repo().UpdateBrokerState(
		ctx, func(st *domain.BrokerState) (*domain.BrokerState, error) {
			if err := st.SetDutchAuctionLength(length); err != nil {
				return nil, err
			}
			return st, nil
		},
	)
}

func (s *Service) setBatchAuctionDisabled(ctx context.Context, disabled bool) error {
	if err := s.repo().UpdateBrokerState(
		ctx, func(st *domain.BrokerState) (*domain.BrokerState, error) {
			st.SetBatchAuctionDisabled(disabled)
			return st, nil
		},
	); err != nil {
		return err
	}

	log.Infof("batch auctions disabled: %t", disabled)
	s.pubsub.PublishBatchAuctionDisabledEvent(disabled)
	return nil
}

// refund moves the whole escrow balance of token back to owner.
func (s *Service) refund(ctx context.Context, escrow, owner, token string) error {
	balance, err := s.ledger.BalanceOf(ctx, escrow, token)
	if err != nil {
		return fmt.Errorf("failed to read escrow balance of %s: %w", escrow, err)
	}
	if balance.IsZero() {
		return nil
	}
	if err := s.ledger.Transfer(ctx, escrow, owner, token, balance); err != nil {
		return fmt.Errorf("failed to release escrow of %s: %w", escrow, err)
	}
	return nil
}

func (s *Service) releaseEscrow(ctx context.Context, trade *domain.Trade) error {
	escrow := domain.TradeAccount(trade.ID)
	if err := s.refund(ctx, escrow, trade.Origin, trade.Sell); err != nil {
		return err
	}
	if err := s.refund(ctx, escrow, trade.Origin, trade.Buy); err != nil {
		return err
	}
	return s.trades().UpdateTrade(
		ctx, trade.ID, func(t *domain.Trade) (*domain.Trade, error) {
			t.EscrowReleased = true
			*trade = *t
			return t, nil
		},
	)
}

// abortOpen undoes a trade that could not be opened: the lot is pulled back
// from the venue if it got there and the escrow is returned to the origin.
func (s *Service) abortOpen(ctx context.Context, trade *domain.Trade, cause error) error {
	if trade.AuctionID != "" {
		if err := s.venue.CancelAuction(ctx, trade.AuctionID); err != nil {
			log.WithError(err).Warnf(
				"failed to cancel batch auction %s of trade %s",
				trade.AuctionID, trade.ID,
			)
			return fmt.Errorf("%w, failed to cancel auction: %s", cause, err)
		}
	}
	escrow := domain.TradeAccount(trade.ID)
	if err := s.refund(ctx, escrow, trade.Origin, trade.Sell); err != nil {
		log.WithError(err).Warnf("failed to abort trade %s", trade.ID)
		return fmt.Errorf("%w, %s", cause, err)
	}
	return cause
}

// revertBid reopens the trade closed by a bid that could not be paid.
func (s *Service) revertBid(
	ctx context.Context, tradeID, bidder string, cause error,
) error {
	if err := s.trades().UpdateTrade(
		ctx, tradeID, func(t *domain.Trade) (*domain.Trade, error) {
			if err := t.RevertBid(bidder); err != nil {
				return nil, err
			}
			return t, nil
		},
	); err != nil {
		log.WithError(err).Warnf("failed to reopen trade %s", tradeID)
		return fmt.Errorf("%w, failed to reopen trade: %s", cause, err)
	}
	return cause
}

func (s *Service) repo() domain.ConfigRepository {
	return s.repoManager.ConfigRepository()
}

func (s *Service) trades() domain.TradeRepository {
	return s.repoManager.TradeRepository()
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
