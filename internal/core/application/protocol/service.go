package protocol

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application/caller"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

// Service owns the global gates of the engine: governance role, pause and
// freeze flags, and the baskets needed by the issued token.
type Service struct {
	repoManager ports.RepoManager
	clock       ports.Clock
}

func NewService(repoManager ports.RepoManager, clock ports.Clock) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	return &Service{repoManager, clock}, nil
}

// Init stores the given state unless one exists already.
func (s *Service) Init(ctx context.Context, state domain.ProtocolState) error {
	_, err := s.repo().GetProtocolState(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrStateNotFound) {
		return err
	}
	return s.repo().UpdateProtocolState(
		ctx, func(_ *domain.ProtocolState) (*domain.ProtocolState, error) {
			return &state, nil
		},
	)
}

func (s *Service) GetState(ctx context.Context) (*domain.ProtocolState, error) {
	return s.repo().GetProtocolState(ctx)
}

// IsGovernance tells whether the caller carried by ctx is governance.
func (s *Service) IsGovernance(ctx context.Context) (bool, error) {
	state, err := s.repo().GetProtocolState(ctx)
	if err != nil {
		return false, err
	}
	return state.IsGovernance(caller.FromContext(ctx)), nil
}

// RequireGovernance fails with ErrGovernanceOnly for any other caller.
func (s *Service) RequireGovernance(ctx context.Context) error {
	ok, err := s.IsGovernance(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrGovernanceOnly
	}
	return nil
}

// RequireTradingOpen is the gate of every entry point that opens trades.
func (s *Service) RequireTradingOpen(ctx context.Context) error {
	state, err := s.repo().GetProtocolState(ctx)
	if err != nil {
		return err
	}
	if state.IsTradingPausedOrFrozen(s.clock.Now()) {
		return domain.ErrPausedOrFrozen
	}
	return nil
}

func (s *Service) IsIssuancePausedOrFrozen(ctx context.Context) (bool, error) {
	state, err := s.repo().GetProtocolState(ctx)
	if err != nil {
		return false, err
	}
	return state.IsIssuancePausedOrFrozen(s.clock.Now()), nil
}

func (s *Service) BasketsNeeded(ctx context.Context) (fixed.Fix, error) {
	state, err := s.repo().GetProtocolState(ctx)
	if err != nil {
		return fixed.Zero, err
	}
	return state.BasketsNeeded, nil
}

func (s *Service) PauseTrading(ctx context.Context) error {
	return s.update(ctx, "trading paused", func(p *domain.ProtocolState) error {
		p.TradingPaused = true
		return nil
	})
}

func (s *Service) UnpauseTrading(ctx context.Context) error {
	return s.update(ctx, "trading unpaused", func(p *domain.ProtocolState) error {
		p.TradingPaused = false
		return nil
	})
}

func (s *Service) PauseIssuance(ctx context.Context) error {
	return s.update(ctx, "issuance paused", func(p *domain.ProtocolState) error {
		p.IssuancePaused = true
		return nil
	})
}

func (s *Service) UnpauseIssuance(ctx context.Context) error {
	return s.update(ctx, "issuance unpaused", func(p *domain.ProtocolState) error {
		p.IssuancePaused = false
		return nil
	})
}

func (s *Service) Freeze(ctx context.Context, duration int64) error {
	now := s.clock.Now()
	return s.update(ctx, "protocol frozen", func(p *domain.ProtocolState) error {
		return p.Freeze(now, duration)
	})
}

func (s *Service) FreezeForever(ctx context.Context) error {
	return s.update(ctx, "protocol frozen forever", func(p *domain.ProtocolState) error {
		p.FreezeForever()
		return nil
	})
}

func (s *Service) Unfreeze(ctx context.Context) error {
	return s.update(ctx, "protocol unfrozen", func(p *domain.ProtocolState) error {
		p.Unfreeze()
		return nil
	})
}

func (s *Service) SetBasketsNeeded(ctx context.Context, amount fixed.Fix) error {
	return s.update(ctx, "baskets needed updated", func(p *domain.ProtocolState) error {
		p.BasketsNeeded = amount
		return nil
	})
}

// LowerBasketsNeeded takes a haircut on the baskets needed by the issued
// token, bringing them down to amount. Raising them is governance only. It
// returns the previous value and whether it changed.
func (s *Service) LowerBasketsNeeded(
	ctx context.Context, amount fixed.Fix,
) (fixed.Fix, bool, error) {
	previous, lowered := fixed.Zero, false
	if err := s.repo().UpdateProtocolState(
		ctx, func(p *domain.ProtocolState) (*domain.ProtocolState, error) {
			previous = p.BasketsNeeded
			if !amount.Lt(p.BasketsNeeded) {
				return p, nil
			}
			p.BasketsNeeded = amount
			lowered = true
			return p, nil
		},
	); err != nil {
		return fixed.Zero, false, err
	}

	if lowered {
		log.Warnf("baskets needed lowered from %s to %s", previous, amount)
	}
	return previous, lowered, nil
}

func (s *Service) update(
	ctx context.Context, msg string, fn func(p *domain.ProtocolState) error,
) error {
	if err := s.RequireGovernance(ctx); err != nil {
		return err
	}
	if err := s.repo().UpdateProtocolState(
		ctx, func(p *domain.ProtocolState) (*domain.ProtocolState, error) {
			if err := fn(p); err != nil {
				return nil, err
			}
			return p, nil
		},
	); err != nil {
		return err
	}
	log.Info(msg)
	return nil
}

func (s *Service) repo() domain.ConfigRepository {
	return s.repoManager.ConfigRepository()
}
