package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/basketd/internal/core/domain"
)

type tradeRepositoryImpl struct {
	trades map[string]*domain.Trade
	// order keeps the insertion order of trade ids.
	order  []string
	locker *sync.RWMutex
}

// NewTradeRepositoryImpl returns a new empty inmemory TradeRepository.
func NewTradeRepositoryImpl() domain.TradeRepository {
	return &tradeRepositoryImpl{
		trades: make(map[string]*domain.Trade),
		order:  make([]string, 0),
		locker: &sync.RWMutex{},
	}
}

func (r *tradeRepositoryImpl) AddTrade(_ context.Context, trade *domain.Trade) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.trades[trade.ID]; ok {
		return domain.ErrTradeAlreadyOpen
	}
	r.trades[trade.ID] = copyTrade(trade)
	r.order = append(r.order, trade.ID)
	return nil
}

func (r *tradeRepositoryImpl) GetTrade(_ context.Context, id string) (*domain.Trade, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	t, ok := r.trades[id]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	return copyTrade(t), nil
}

func (r *tradeRepositoryImpl) GetOpenTrade(
	_ context.Context, origin, sell string,
) (*domain.Trade, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	for _, id := range r.order {
		t := r.trades[id]
		if t.IsOpen() && t.Origin == origin && t.Sell == sell {
			return copyTrade(t), nil
		}
	}
	return nil, nil
}

func (r *tradeRepositoryImpl) GetOpenTrades(
	_ context.Context, origin string,
) ([]*domain.Trade, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	trades := make([]*domain.Trade, 0)
	for _, id := range r.order {
		t := r.trades[id]
		if t.IsOpen() && (origin == "" || t.Origin == origin) {
			trades = append(trades, copyTrade(t))
		}
	}
	return trades, nil
}

func (r *tradeRepositoryImpl) GetAllTrades(_ context.Context) ([]*domain.Trade, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	trades := make([]*domain.Trade, 0, len(r.order))
	for _, id := range r.order {
		trades = append(trades, copyTrade(r.trades[id]))
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].StartTime < trades[j].StartTime
	})
	return trades, nil
}

func (r *tradeRepositoryImpl) UpdateTrade(
	_ context.Context,
	id string,
	updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	t, ok := r.trades[id]
	if !ok {
		return domain.ErrTradeNotFound
	}
	updated, err := updateFn(copyTrade(t))
	if err != nil {
		return err
	}
	r.trades[id] = copyTrade(updated)
	return nil
}
