package domain

import "context"

// TradeRepository is the abstraction for any kind of database intended to
// persist Trades.
type TradeRepository interface {
	// AddTrade stores a new trade.
	AddTrade(ctx context.Context, trade *Trade) error
	// GetTrade returns the trade with the given id.
	GetTrade(ctx context.Context, id string) (*Trade, error)
	// GetOpenTrade returns the open trade of the given origin selling the
	// given token, if any.
	GetOpenTrade(ctx context.Context, origin, sell string) (*Trade, error)
	// GetOpenTrades returns the open trades of the given origin, or of
	// everyone if origin is empty.
	GetOpenTrades(ctx context.Context, origin string) ([]*Trade, error)
	// GetAllTrades returns all the trades stored in the repository.
	GetAllTrades(ctx context.Context) ([]*Trade, error)
	// UpdateTrade allows to commit multiple changes to the same trade in a
	// transactional way.
	UpdateTrade(
		ctx context.Context,
		id string,
		updateFn func(t *Trade) (*Trade, error),
	) error
}
