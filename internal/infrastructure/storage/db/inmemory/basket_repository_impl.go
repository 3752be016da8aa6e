package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/basketd/internal/core/domain"
)

type basketRepositoryImpl struct {
	prime   *domain.PrimeBasket
	backups map[string]*domain.BackupConfig
	history []*domain.Basket
	state   *domain.BasketState

	locker *sync.RWMutex
}

// NewBasketRepositoryImpl returns a new empty inmemory BasketRepository.
func NewBasketRepositoryImpl() domain.BasketRepository {
	return &basketRepositoryImpl{
		backups: make(map[string]*domain.BackupConfig),
		history: make([]*domain.Basket, 0),
		locker:  &sync.RWMutex{},
	}
}

func (r *basketRepositoryImpl) GetPrimeBasket(_ context.Context) (*domain.PrimeBasket, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	if r.prime == nil {
		return nil, nil
	}
	return copyPrimeBasket(r.prime), nil
}

func (r *basketRepositoryImpl) SetPrimeBasket(
	_ context.Context, basket *domain.PrimeBasket,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.prime = copyPrimeBasket(basket)
	return nil
}

func (r *basketRepositoryImpl) GetBackupConfigs(
	_ context.Context,
) (map[string]*domain.BackupConfig, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	configs := make(map[string]*domain.BackupConfig, len(r.backups))
	for name, cfg := range r.backups {
		configs[name] = copyBackupConfig(cfg)
	}
	return configs, nil
}

func (r *basketRepositoryImpl) SetBackupConfig(
	_ context.Context, cfg *domain.BackupConfig,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.backups[cfg.TargetName] = copyBackupConfig(cfg)
	return nil
}

func (r *basketRepositoryImpl) AddBasket(
	_ context.Context, basket *domain.Basket,
) (uint64, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	b := copyBasket(basket)
	b.Nonce = uint64(len(r.history)) + 1
	r.history = append(r.history, b)
	return b.Nonce, nil
}

func (r *basketRepositoryImpl) GetBasket(
	_ context.Context, nonce uint64,
) (*domain.Basket, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	if nonce == 0 || nonce > uint64(len(r.history)) {
		return nil, domain.ErrBasketNotFound
	}
	return copyBasket(r.history[nonce-1]), nil
}

func (r *basketRepositoryImpl) GetAllBaskets(_ context.Context) ([]*domain.Basket, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	baskets := make([]*domain.Basket, 0, len(r.history))
	for _, b := range r.history {
		baskets = append(baskets, copyBasket(b))
	}
	return baskets, nil
}

func (r *basketRepositoryImpl) GetBasketState(
	_ context.Context,
) (*domain.BasketState, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	if r.state == nil {
		return nil, domain.ErrStateNotFound
	}
	st := *r.state
	return &st, nil
}

func (r *basketRepositoryImpl) UpdateBasketState(
	_ context.Context,
	updateFn func(s *domain.BasketState) (*domain.BasketState, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	current := &domain.BasketState{}
	if r.state != nil {
		st := *r.state
		current = &st
	}
	updated, err := updateFn(current)
	if err != nil {
		return err
	}
	st := *updated
	r.state = &st
	return nil
}
