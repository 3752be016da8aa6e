package dbbadger

import (
	"context"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type configRepositoryImpl struct {
	store *badgerhold.Store
}

// NewConfigRepositoryImpl returns a badger implementation of
// domain.ConfigRepository. Every state is stored as a singleton.
func NewConfigRepositoryImpl(store *badgerhold.Store) domain.ConfigRepository {
	return &configRepositoryImpl{store}
}

func (r *configRepositoryImpl) GetProtocolState(
	_ context.Context,
) (*domain.ProtocolState, error) {
	var state domain.ProtocolState
	if err := r.get(protocolStateKey, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *configRepositoryImpl) UpdateProtocolState(
	ctx context.Context,
	updateFn func(s *domain.ProtocolState) (*domain.ProtocolState, error),
) error {
	state, err := r.GetProtocolState(ctx)
	if err != nil {
		if err != domain.ErrStateNotFound {
			return err
		}
		state = &domain.ProtocolState{}
	}
	updated, err := updateFn(state)
	if err != nil {
		return err
	}
	return r.store.Upsert(protocolStateKey, *updated)
}

func (r *configRepositoryImpl) GetBrokerState(
	_ context.Context,
) (*domain.BrokerState, error) {
	var state domain.BrokerState
	if err := r.get(brokerStateKey, &state); err != nil {
		return nil, err
	}
	if state.DutchAuctionDisabled == nil {
		state.DutchAuctionDisabled = make(map[string]bool)
	}
	return &state, nil
}

func (r *configRepositoryImpl) UpdateBrokerState(
	ctx context.Context,
	updateFn func(s *domain.BrokerState) (*domain.BrokerState, error),
) error {
	state, err := r.GetBrokerState(ctx)
	if err != nil {
		if err != domain.ErrStateNotFound {
			return err
		}
		state = &domain.BrokerState{DutchAuctionDisabled: make(map[string]bool)}
	}
	updated, err := updateFn(state)
	if err != nil {
		return err
	}
	return r.store.Upsert(brokerStateKey, *updated)
}

func (r *configRepositoryImpl) GetBackingConfig(
	_ context.Context,
) (*domain.BackingConfig, error) {
	var cfg domain.BackingConfig
	if err := r.get(backingConfigKey, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *configRepositoryImpl) UpdateBackingConfig(
	ctx context.Context,
	updateFn func(c *domain.BackingConfig) (*domain.BackingConfig, error),
) error {
	cfg, err := r.GetBackingConfig(ctx)
	if err != nil {
		if err != domain.ErrStateNotFound {
			return err
		}
		cfg = &domain.BackingConfig{}
	}
	updated, err := updateFn(cfg)
	if err != nil {
		return err
	}
	return r.store.Upsert(backingConfigKey, *updated)
}

func (r *configRepositoryImpl) get(key string, result interface{}) error {
	if err := r.store.Get(key, result); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ErrStateNotFound
		}
		return err
	}
	return nil
}
