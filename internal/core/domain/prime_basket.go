package domain

import (
	"fmt"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// NewPrimeBasket validates the given erc20s and target amounts against the
// registered assets. The disallowed erc20s are the protocol's own tokens.
func NewPrimeBasket(
	erc20s []string, targetAmts []fixed.Fix, assets AssetSet,
	disallowed ...string,
) (*PrimeBasket, error) {
	if len(erc20s) != len(targetAmts) {
		return nil, fmt.Errorf("%w: must be same length", ErrInvalidBasket)
	}
	if len(erc20s) == 0 {
		return nil, fmt.Errorf("%w: empty basket", ErrInvalidBasket)
	}

	seen := make(map[string]bool, len(erc20s))
	entries := make([]PrimeEntry, 0, len(erc20s))
	for i, erc20 := range erc20s {
		if seen[erc20] {
			return nil, fmt.Errorf("%w: duplicate ERC20 detected", ErrInvalidBasket)
		}
		seen[erc20] = true

		if contains(disallowed, erc20) {
			return nil, fmt.Errorf("%w: invalid collateral %s", ErrInvalidBasket, erc20)
		}
		a, ok := assets.Collateral(erc20)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidBasket, ErrNotCollateral, erc20)
		}
		amt := targetAmts[i]
		if amt.IsZero() || amt.Gt(MaxTargetAmt) {
			return nil, fmt.Errorf("%w: invalid target amount", ErrInvalidBasket)
		}

		entries = append(entries, PrimeEntry{
			ERC20:      erc20,
			TargetName: a.Collateral.TargetName,
			TargetAmt:  amt,
		})
	}

	return &PrimeBasket{entries}, nil
}

// IsEmpty ...
func (p *PrimeBasket) IsEmpty() bool {
	return p == nil || len(p.Entries) == 0
}

// TargetNames returns the target units in order of first appearance.
func (p *PrimeBasket) TargetNames() []string {
	names := make([]string, 0)
	for _, e := range p.Entries {
		if !contains(names, e.TargetName) {
			names = append(names, e.TargetName)
		}
	}
	return names
}

// TargetTotals returns the total weight of every target unit.
func (p *PrimeBasket) TargetTotals() map[string]fixed.Fix {
	totals := make(map[string]fixed.Fix)
	for _, e := range p.Entries {
		totals[e.TargetName] = totals[e.TargetName].Plus(e.TargetAmt)
	}
	return totals
}

// ERC20s ...
func (p *PrimeBasket) ERC20s() []string {
	erc20s := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		erc20s = append(erc20s, e.ERC20)
	}
	return erc20s
}

// ValidateSuccessor checks that next can replace p. Target units must be
// preserved in any case. Unless the deployment is reweightable or the update
// is forced, the total weight of every target unit must not change either.
func (p *PrimeBasket) ValidateSuccessor(
	next *PrimeBasket, reweightable, force bool,
) error {
	if p.IsEmpty() {
		return nil
	}

	prev := p.TargetTotals()
	curr := next.TargetTotals()
	for name := range curr {
		if _, ok := prev[name]; !ok {
			return fmt.Errorf("%w: new target weights", ErrInvalidBasket)
		}
	}
	for name := range prev {
		if _, ok := curr[name]; !ok {
			return fmt.Errorf("%w: missing target weights", ErrInvalidBasket)
		}
	}

	if reweightable || force {
		return nil
	}
	for name, total := range prev {
		if !curr[name].Eq(total) {
			return fmt.Errorf(
				"%w: target weight of %s changed from %s to %s",
				ErrInvalidBasket, name, total, curr[name],
			)
		}
	}
	return nil
}

// NewBackupConfig validates a backup config for the given target unit.
func NewBackupConfig(
	targetName string, max int, erc20s []string, assets AssetSet,
	disallowed ...string,
) (*BackupConfig, error) {
	if targetName == "" {
		return nil, fmt.Errorf("%w: missing target name", ErrInvalidBackupConfig)
	}
	if max < 0 {
		return nil, fmt.Errorf("%w: invalid max", ErrInvalidBackupConfig)
	}
	if len(erc20s) > MaxBackupERC20s {
		return nil, fmt.Errorf("%w: too large", ErrInvalidBackupConfig)
	}

	seen := make(map[string]bool, len(erc20s))
	for _, erc20 := range erc20s {
		if seen[erc20] {
			return nil, fmt.Errorf("%w: duplicate ERC20 detected", ErrInvalidBackupConfig)
		}
		seen[erc20] = true

		if contains(disallowed, erc20) {
			return nil, fmt.Errorf("%w: invalid collateral %s", ErrInvalidBackupConfig, erc20)
		}
		a, ok := assets.Collateral(erc20)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidBackupConfig, ErrNotCollateral, erc20)
		}
		if a.Collateral.TargetName != targetName {
			return nil, fmt.Errorf(
				"%w: %s has target %s", ErrInvalidBackupConfig, erc20,
				a.Collateral.TargetName,
			)
		}
	}

	list := make([]string, len(erc20s))
	copy(list, erc20s)
	return &BackupConfig{targetName, max, list}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
