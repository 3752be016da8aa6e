package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/basketd/internal/core/domain"
)

type configRepositoryImpl struct {
	protocol *domain.ProtocolState
	broker   *domain.BrokerState
	backing  *domain.BackingConfig

	locker *sync.RWMutex
}

// NewConfigRepositoryImpl returns a new empty inmemory ConfigRepository.
func NewConfigRepositoryImpl() domain.ConfigRepository {
	return &configRepositoryImpl{locker: &sync.RWMutex{}}
}

func (r *configRepositoryImpl) GetProtocolState(
	_ context.Context,
) (*domain.ProtocolState, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	if r.protocol == nil {
		return nil, domain.ErrStateNotFound
	}
	st := *r.protocol
	return &st, nil
}

func (r *configRepositoryImpl) UpdateProtocolState(
	_ context.Context,
	updateFn func(s *domain.ProtocolState) (*domain.ProtocolState, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	current := &domain.ProtocolState{}
	if r.protocol != nil {
		st := *r.protocol
		current = &st
	}
	updated, err := updateFn(current)
	if err != nil {
		return err
	}
	st := *updated
	r.protocol = &st
	return nil
}

func (r *configRepositoryImpl) GetBrokerState(
	_ context.Context,
) (*domain.BrokerState, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	if r.broker == nil {
		return nil, domain.ErrStateNotFound
	}
	return copyBrokerState(r.broker), nil
}

func (r *configRepositoryImpl) UpdateBrokerState(
	_ context.Context,
	updateFn func(s *domain.BrokerState) (*domain.BrokerState, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	current := &domain.BrokerState{DutchAuctionDisabled: make(map[string]bool)}
	if r.broker != nil {
		current = copyBrokerState(r.broker)
	}
	updated, err := updateFn(current)
	if err != nil {
		return err
	}
	r.broker = copyBrokerState(updated)
	return nil
}

func (r *configRepositoryImpl) GetBackingConfig(
	_ context.Context,
) (*domain.BackingConfig, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	if r.backing == nil {
		return nil, domain.ErrStateNotFound
	}
	cfg := *r.backing
	return &cfg, nil
}

func (r *configRepositoryImpl) UpdateBackingConfig(
	_ context.Context,
	updateFn func(c *domain.BackingConfig) (*domain.BackingConfig, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	current := &domain.BackingConfig{}
	if r.backing != nil {
		cfg := *r.backing
		current = &cfg
	}
	updated, err := updateFn(current)
	if err != nil {
		return err
	}
	cfg := *updated
	r.backing = &cfg
	return nil
}
