package domain

import (
	"fmt"
	"math"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// ProtocolState holds the global gates, the governance role and the issuance
// figures the engine reads from the issued token.
type ProtocolState struct {
	Governance     string
	TradingPaused  bool
	IssuancePaused bool
	FrozenUntil    int64
	BasketsNeeded  fixed.Fix
	IssuedToken    string
	BackstopToken  string
}

// NewProtocolState ...
func NewProtocolState(governance, issuedToken, backstopToken string) (*ProtocolState, error) {
	if governance == "" {
		return nil, fmt.Errorf("missing governance")
	}
	if issuedToken == "" || backstopToken == "" || issuedToken == backstopToken {
		return nil, fmt.Errorf("invalid protocol tokens")
	}
	return &ProtocolState{
		Governance:    governance,
		IssuedToken:   issuedToken,
		BackstopToken: backstopToken,
	}, nil
}

// IsGovernance ...
func (p *ProtocolState) IsGovernance(caller string) bool {
	return caller != "" && caller == p.Governance
}

// IsFrozen ...
func (p *ProtocolState) IsFrozen(now int64) bool {
	return now < p.FrozenUntil
}

// IsTradingPausedOrFrozen is the gate of every mutating trading entry point.
func (p *ProtocolState) IsTradingPausedOrFrozen(now int64) bool {
	return p.TradingPaused || p.IsFrozen(now)
}

// IsIssuancePausedOrFrozen ...
func (p *ProtocolState) IsIssuancePausedOrFrozen(now int64) bool {
	return p.IssuancePaused || p.IsFrozen(now)
}

// Freeze freezes the protocol for the given duration. A longer running
// freeze is never shortened.
func (p *ProtocolState) Freeze(now, duration int64) error {
	if duration <= 0 {
		return fmt.Errorf("%w: invalid freeze duration", ErrOutOfRange)
	}
	until := now + duration
	if until < now {
		until = math.MaxInt64
	}
	if until > p.FrozenUntil {
		p.FrozenUntil = until
	}
	return nil
}

func (p *ProtocolState) FreezeForever() {
	p.FrozenUntil = math.MaxInt64
}

func (p *ProtocolState) Unfreeze() {
	p.FrozenUntil = 0
}

// DisallowedCollateral returns the tokens that can never be part of a
// basket.
func (p *ProtocolState) DisallowedCollateral() []string {
	return []string{p.IssuedToken, p.BackstopToken}
}
