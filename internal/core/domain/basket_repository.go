package domain

import "context"

// BasketRepository is the abstraction for any kind of database intended to
// persist the prime basket, the backup configs and the append-only history
// of concrete baskets.
type BasketRepository interface {
	// GetPrimeBasket returns the current prime basket, or nil if never set.
	GetPrimeBasket(ctx context.Context) (*PrimeBasket, error)
	// SetPrimeBasket replaces the prime basket.
	SetPrimeBasket(ctx context.Context, basket *PrimeBasket) error
	// GetBackupConfigs returns the backup configs indexed by target name.
	GetBackupConfigs(ctx context.Context) (map[string]*BackupConfig, error)
	// SetBackupConfig adds or replaces the backup config of a target unit.
	SetBackupConfig(ctx context.Context, cfg *BackupConfig) error
	// AddBasket appends a snapshot to the history assigning it the next
	// nonce, which is returned.
	AddBasket(ctx context.Context, basket *Basket) (uint64, error)
	// GetBasket returns the snapshot with the given nonce.
	GetBasket(ctx context.Context, nonce uint64) (*Basket, error)
	// GetAllBaskets returns the whole history sorted by nonce.
	GetAllBaskets(ctx context.Context) ([]*Basket, error)
	// GetBasketState returns the state of the current basket.
	GetBasketState(ctx context.Context) (*BasketState, error)
	// UpdateBasketState allows to commit multiple changes to the basket state
	// in a transactional way.
	UpdateBasketState(
		ctx context.Context,
		updateFn func(s *BasketState) (*BasketState, error),
	) error
}
