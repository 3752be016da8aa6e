package domain

import (
	"context"
	"errors"
)

// ErrStateNotFound is returned when reading a state never initialized.
var ErrStateNotFound = errors.New("state not initialized")

// ConfigRepository is the abstraction for any kind of database intended to
// persist the singleton states of the engine.
type ConfigRepository interface {
	GetProtocolState(ctx context.Context) (*ProtocolState, error)
	UpdateProtocolState(
		ctx context.Context,
		updateFn func(s *ProtocolState) (*ProtocolState, error),
	) error
	GetBrokerState(ctx context.Context) (*BrokerState, error)
	UpdateBrokerState(
		ctx context.Context,
		updateFn func(s *BrokerState) (*BrokerState, error),
	) error
	GetBackingConfig(ctx context.Context) (*BackingConfig, error)
	UpdateBackingConfig(
		ctx context.Context,
		updateFn func(c *BackingConfig) (*BackingConfig, error),
	) error
}
