package dbbadger

import (
	"context"
	"sort"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type basketRepositoryImpl struct {
	store *badgerhold.Store
}

// NewBasketRepositoryImpl returns a badger implementation of
// domain.BasketRepository. The history of baskets is keyed by nonce.
func NewBasketRepositoryImpl(store *badgerhold.Store) domain.BasketRepository {
	return &basketRepositoryImpl{store}
}

func (r *basketRepositoryImpl) GetPrimeBasket(_ context.Context) (*domain.PrimeBasket, error) {
	var basket domain.PrimeBasket
	if err := r.store.Get(primeBasketKey, &basket); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &basket, nil
}

func (r *basketRepositoryImpl) SetPrimeBasket(
	_ context.Context, basket *domain.PrimeBasket,
) error {
	return r.store.Upsert(primeBasketKey, *basket)
}

func (r *basketRepositoryImpl) GetBackupConfigs(
	_ context.Context,
) (map[string]*domain.BackupConfig, error) {
	var list []domain.BackupConfig
	if err := r.store.Find(&list, nil); err != nil {
		return nil, err
	}

	configs := make(map[string]*domain.BackupConfig, len(list))
	for i := range list {
		configs[list[i].TargetName] = &list[i]
	}
	return configs, nil
}

func (r *basketRepositoryImpl) SetBackupConfig(
	_ context.Context, cfg *domain.BackupConfig,
) error {
	return r.store.Upsert(cfg.TargetName, *cfg)
}

func (r *basketRepositoryImpl) AddBasket(
	_ context.Context, basket *domain.Basket,
) (uint64, error) {
	count, err := r.store.Count(&domain.Basket{}, nil)
	if err != nil {
		return 0, err
	}

	b := *basket
	b.Nonce = count + 1
	if err := r.store.Insert(b.Nonce, b); err != nil {
		return 0, err
	}
	return b.Nonce, nil
}

func (r *basketRepositoryImpl) GetBasket(
	_ context.Context, nonce uint64,
) (*domain.Basket, error) {
	var basket domain.Basket
	if err := r.store.Get(nonce, &basket); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrBasketNotFound
		}
		return nil, err
	}
	return &basket, nil
}

func (r *basketRepositoryImpl) GetAllBaskets(_ context.Context) ([]*domain.Basket, error) {
	var list []domain.Basket
	if err := r.store.Find(&list, nil); err != nil {
		return nil, err
	}

	baskets := make([]*domain.Basket, 0, len(list))
	for i := range list {
		baskets = append(baskets, &list[i])
	}
	sort.Slice(baskets, func(i, j int) bool {
		return baskets[i].Nonce < baskets[j].Nonce
	})
	return baskets, nil
}

func (r *basketRepositoryImpl) GetBasketState(
	_ context.Context,
) (*domain.BasketState, error) {
	var state domain.BasketState
	if err := r.store.Get(basketStateKey, &state); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrStateNotFound
		}
		return nil, err
	}
	return &state, nil
}

func (r *basketRepositoryImpl) UpdateBasketState(
	ctx context.Context,
	updateFn func(s *domain.BasketState) (*domain.BasketState, error),
) error {
	state, err := r.GetBasketState(ctx)
	if err != nil {
		if err != domain.ErrStateNotFound {
			return err
		}
		state = &domain.BasketState{}
	}

	updated, err := updateFn(state)
	if err != nil {
		return err
	}
	return r.store.Upsert(basketStateKey, *updated)
}
