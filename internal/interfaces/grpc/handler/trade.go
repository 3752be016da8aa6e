package grpchandler

import (
	"context"
	"fmt"

	"github.com/tdex-network/basketd/internal/core/application/caller"
	"github.com/tdex-network/basketd/internal/core/application/revenue"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
)

func (h *operatorHandler) Rebalance(
	ctx context.Context, req *operatorv1.RebalanceRequest,
) (*operatorv1.TradeResponse, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	res := &operatorv1.TradeResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		trade, err := h.engine.Backing().Rebalance(ctx, kind)
		res.Trade = trade
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) ForwardRevenue(
	ctx context.Context, req *operatorv1.ForwardRevenueRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		return h.engine.Backing().ForwardRevenue(ctx, req.ERC20s)
	})
}

func (h *operatorHandler) SettleTrade(
	ctx context.Context, req *operatorv1.SettleTradeRequest,
) (*operatorv1.TradeResponse, error) {
	res := &operatorv1.TradeResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		var (
			trade *domain.Trade
			err   error
		)
		switch req.Origin {
		case domain.BackingManagerAccount:
			trade, err = h.engine.Backing().SettleTrade(ctx, req.Sell)
		case domain.BackstopTraderAccount:
			trade, err = h.engine.BackstopTrader().SettleTrade(ctx, req.Sell)
		case domain.IssuedTraderAccount:
			trade, err = h.engine.IssuedTrader().SettleTrade(ctx, req.Sell)
		default:
			err = fmt.Errorf("%w: unknown origin %s", domain.ErrNotTrader, req.Origin)
		}
		res.Trade = trade
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) GetBackingConfig(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.BackingConfigResponse, error) {
	res := &operatorv1.BackingConfigResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		cfg, err := h.engine.Backing().GetConfig(ctx)
		res.Config = cfg
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) UpdateBackingConfig(
	ctx context.Context, req *operatorv1.UpdateBackingConfigRequest,
) (*operatorv1.BackingConfigResponse, error) {
	res := &operatorv1.BackingConfigResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		svc := h.engine.Backing()
		if req.TradingDelay != nil {
			if err := svc.SetTradingDelay(ctx, *req.TradingDelay); err != nil {
				return err
			}
		}
		if req.MaxTradeSlippage != nil {
			if err := svc.SetMaxTradeSlippage(ctx, *req.MaxTradeSlippage); err != nil {
				return err
			}
		}
		if req.BackingBuffer != nil {
			if err := svc.SetBackingBuffer(ctx, *req.BackingBuffer); err != nil {
				return err
			}
		}
		if req.MinTradeVolume != nil {
			if err := svc.SetMinTradeVolume(ctx, *req.MinTradeVolume); err != nil {
				return err
			}
		}
		cfg, err := svc.GetConfig(ctx)
		res.Config = cfg
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) ManageTokens(
	ctx context.Context, req *operatorv1.ManageTokensRequest,
) (*operatorv1.TradesResponse, error) {
	trader, err := h.trader(req.Trader)
	if err != nil {
		return nil, err
	}
	kinds := make([]domain.TradeKind, 0, len(req.Kinds))
	for _, k := range req.Kinds {
		kind, err := parseKind(k)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	res := &operatorv1.TradesResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		trades, err := trader.ManageTokens(ctx, req.ERC20s, kinds)
		res.Trades = trades
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) ListTrades(
	ctx context.Context, req *operatorv1.ListTradesRequest,
) (*operatorv1.TradesResponse, error) {
	res := &operatorv1.TradesResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		if req.OpenOnly {
			trades, err := h.engine.Broker().OpenTrades(ctx, req.Origin)
			res.Trades = trades
			return err
		}
		trades, err := h.engine.Broker().ListTrades(ctx)
		if err != nil {
			return err
		}
		res.Trades = make([]*domain.Trade, 0, len(trades))
		for _, t := range trades {
			if req.Origin == "" || t.Origin == req.Origin {
				res.Trades = append(res.Trades, t)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) GetTrade(
	ctx context.Context, req *operatorv1.GetTradeRequest,
) (*operatorv1.GetTradeResponse, error) {
	res := &operatorv1.GetTradeResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		trade, err := h.engine.Broker().GetTrade(ctx, req.ID)
		if err != nil {
			return err
		}
		res.Trade = trade
		if trade.Kind == domain.DutchAuction && trade.IsOpen() {
			// Out of the auction window there's nothing to bid.
			if amount, err := h.engine.Broker().BidAmount(ctx, trade.ID); err == nil {
				res.BidAmount = amount
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) Bid(
	ctx context.Context, req *operatorv1.BidRequest,
) (*operatorv1.TradeResponse, error) {
	bidder := caller.FromContext(ctx)
	if bidder == "" {
		return nil, ErrMissingCaller
	}

	res := &operatorv1.TradeResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		trade, err := h.engine.Broker().Bid(ctx, req.TradeID, bidder)
		res.Trade = trade
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) PlaceBatchBid(
	ctx context.Context, req *operatorv1.PlaceBatchBidRequest,
) (*operatorv1.Empty, error) {
	bidder := caller.FromContext(ctx)
	if bidder == "" {
		return nil, ErrMissingCaller
	}

	return h.do(ctx, func(ctx context.Context) error {
		trade, err := h.engine.Broker().GetTrade(ctx, req.TradeID)
		if err != nil {
			return err
		}
		if trade.Kind != domain.BatchAuction || !trade.IsOpen() {
			return domain.ErrAuctionNotOngoing
		}
		return h.engine.Venue().PlaceBid(
			ctx, trade.AuctionID, bidder, req.SellAmount, req.BuyAmount,
		)
	})
}

func (h *operatorHandler) GetBrokerState(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.BrokerStateResponse, error) {
	res := &operatorv1.BrokerStateResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		state, err := h.engine.Broker().GetState(ctx)
		res.State = state
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) UpdateBrokerConfig(
	ctx context.Context, req *operatorv1.UpdateBrokerConfigRequest,
) (*operatorv1.BrokerStateResponse, error) {
	res := &operatorv1.BrokerStateResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		svc := h.engine.Broker()
		if req.BatchAuctionLength != nil {
			if err := svc.SetBatchAuctionLength(ctx, *req.BatchAuctionLength); err != nil {
				return err
			}
		}
		if req.DutchAuctionLength != nil {
			if err := svc.SetDutchAuctionLength(ctx, *req.DutchAuctionLength); err != nil {
				return err
			}
		}
		if req.BatchAuctionDisabled != nil {
			if err := svc.SetBatchAuctionDisabled(ctx, *req.BatchAuctionDisabled); err != nil {
				return err
			}
		}
		for erc20, disabled := range req.DutchAuctionDisabled {
			if err := svc.SetDutchAuctionDisabled(ctx, erc20, disabled); err != nil {
				return err
			}
		}
		state, err := svc.GetState(ctx)
		res.State = state
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// trader returns the revenue trader by name or account.
func (h *operatorHandler) trader(name string) (*revenue.Service, error) {
	switch name {
	case "backstop", domain.BackstopTraderAccount:
		return h.engine.BackstopTrader(), nil
	case "issued", domain.IssuedTraderAccount:
		return h.engine.IssuedTrader(), nil
	default:
		return nil, fmt.Errorf("%w: unknown trader %s", domain.ErrNotTrader, name)
	}
}

func parseKind(kind string) (domain.TradeKind, error) {
	if kind == "" {
		return domain.DutchAuction, nil
	}
	return domain.ParseTradeKind(kind)
}
