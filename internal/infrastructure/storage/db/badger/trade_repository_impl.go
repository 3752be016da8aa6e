package dbbadger

import (
	"context"
	"sort"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type tradeRepositoryImpl struct {
	store *badgerhold.Store
}

// NewTradeRepositoryImpl returns a badger implementation of
// domain.TradeRepository.
func NewTradeRepositoryImpl(store *badgerhold.Store) domain.TradeRepository {
	return &tradeRepositoryImpl{store}
}

func (r *tradeRepositoryImpl) AddTrade(_ context.Context, trade *domain.Trade) error {
	if err := r.store.Insert(trade.ID, *trade); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrTradeAlreadyOpen
		}
		return err
	}
	return nil
}

func (r *tradeRepositoryImpl) GetTrade(_ context.Context, id string) (*domain.Trade, error) {
	var trade domain.Trade
	if err := r.store.Get(id, &trade); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}
	return &trade, nil
}

func (r *tradeRepositoryImpl) GetOpenTrade(
	ctx context.Context, origin, sell string,
) (*domain.Trade, error) {
	query := badgerhold.Where("Status").Eq(domain.TradeStatusOpen).
		And("Origin").Eq(origin).
		And("Sell").Eq(sell)

	trades, err := r.findTrades(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, nil
	}
	return trades[0], nil
}

func (r *tradeRepositoryImpl) GetOpenTrades(
	ctx context.Context, origin string,
) ([]*domain.Trade, error) {
	query := badgerhold.Where("Status").Eq(domain.TradeStatusOpen)
	if origin != "" {
		query = query.And("Origin").Eq(origin)
	}
	return r.findTrades(ctx, query)
}

func (r *tradeRepositoryImpl) GetAllTrades(ctx context.Context) ([]*domain.Trade, error) {
	return r.findTrades(ctx, nil)
}

func (r *tradeRepositoryImpl) UpdateTrade(
	ctx context.Context,
	id string,
	updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	trade, err := r.GetTrade(ctx, id)
	if err != nil {
		return err
	}
	updated, err := updateFn(trade)
	if err != nil {
		return err
	}
	return r.store.Update(id, *updated)
}

func (r *tradeRepositoryImpl) findTrades(
	_ context.Context, query *badgerhold.Query,
) ([]*domain.Trade, error) {
	var list []domain.Trade
	if err := r.store.Find(&list, query); err != nil {
		return nil, err
	}

	trades := make([]*domain.Trade, 0, len(list))
	for i := range list {
		trades = append(trades, &list[i])
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].StartTime < trades[j].StartTime
	})
	return trades, nil
}
