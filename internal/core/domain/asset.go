package domain

import (
	"fmt"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// Validate makes sure the descriptor can be registered.
func (a *Asset) Validate() error {
	if a.ERC20 == "" {
		return fmt.Errorf("%w: missing erc20", ErrInvalidAsset)
	}
	if a.Decimals > fixed.Decimals {
		return fmt.Errorf("%w: decimals must be at most %d", ErrInvalidAsset, fixed.Decimals)
	}
	if a.MaxTradeVolume.IsZero() {
		return fmt.Errorf("%w: max trade volume must be positive", ErrInvalidAsset)
	}
	if a.OracleError.Gte(MaxOracleError) {
		return fmt.Errorf("%w: oracle error must be lower than 1", ErrInvalidAsset)
	}
	if a.OracleTimeout <= 0 || a.PriceTimeout < 0 {
		return fmt.Errorf("%w: invalid timeouts", ErrInvalidAsset)
	}

	c := a.Collateral
	if c == nil {
		return nil
	}
	if c.TargetName == "" {
		return fmt.Errorf("%w: missing target name", ErrInvalidAsset)
	}
	if c.TargetPerRef.IsZero() {
		return fmt.Errorf("%w: target per ref must be positive", ErrInvalidAsset)
	}
	if c.PegBottom.Gt(c.PegTop) {
		return fmt.Errorf("%w: peg bottom above peg top", ErrInvalidAsset)
	}
	if c.DelayUntilDefault <= 0 {
		return fmt.Errorf("%w: delay until default must be positive", ErrInvalidAsset)
	}
	return nil
}

// IsCollateral returns whether the asset can be part of a basket.
func (a *Asset) IsCollateral() bool {
	return a.Collateral != nil
}

// Refresh updates the saved price and, for collateral, runs default
// detection. A nil observation means the oracle could not be read.
func (a *Asset) Refresh(now int64, obs *Observation) {
	c := a.Collateral
	if c != nil && obs != nil && !obs.RefPerTok.IsZero() {
		if obs.RefPerTok.Lt(c.RefPerTok) {
			c.markStatus(now, CollateralStatusDisabled)
		}
		c.RefPerTok = obs.RefPerTok
	}

	fresh := obs != nil && !obs.RefPrice.IsZero() &&
		now-obs.Timestamp <= a.OracleTimeout
	if fresh {
		price := obs.RefPrice
		if c != nil {
			price = price.Mul(c.RefPerTok)
		}
		a.SavedLow = price.Mul(fixed.One.Minus(a.OracleError))
		a.SavedHigh = price.MulRnd(fixed.One.Plus(a.OracleError), fixed.Ceil)
		a.LastSave = now
	}

	if c == nil {
		return
	}
	if !fresh {
		c.markStatus(now, CollateralStatusIffy)
		return
	}

	targetPrice := obs.TargetPrice
	if targetPrice.IsZero() {
		targetPrice = fixed.One
	}
	c.PegPrice = obs.RefPrice.Div(targetPrice)
	if c.PegPrice.Lt(c.PegBottom) || c.PegPrice.Gt(c.PegTop) {
		c.markStatus(now, CollateralStatusIffy)
		return
	}
	c.markStatus(now, CollateralStatusSound)
}

// Price returns the last saved price as long as it's not older than the
// price timeout, otherwise the asset is unpriced.
func (a *Asset) Price(now int64) Price {
	if a.LastSave == 0 || a.SavedLow.IsZero() {
		return Unpriced()
	}
	if now-a.LastSave > a.OracleTimeout+a.PriceTimeout {
		return Unpriced()
	}
	return Price{Low: a.SavedLow, High: a.SavedHigh}
}

// Status returns the status of the asset. Plain assets are always SOUND.
func (a *Asset) Status(now int64) CollateralStatus {
	if a.Collateral == nil {
		return CollateralStatusSound
	}
	return a.Collateral.Status(now)
}

// ToTokenAmount rounds a whole-unit amount to the token decimals.
func (a *Asset) ToTokenAmount(amount fixed.Fix, rnd fixed.RoundingMode) fixed.Fix {
	return amount.Quantize(a.Decimals, rnd)
}

// Status derives the status from the scheduled default time.
func (c *Collateral) Status(now int64) CollateralStatus {
	if c.WhenDefault == NeverDefault {
		return CollateralStatusSound
	}
	if c.WhenDefault > now {
		return CollateralStatusIffy
	}
	return CollateralStatusDisabled
}

// IssuancePremium returns the factor by which quantities of a collateral
// trading below its peg are scaled up on issuance.
func (c *Collateral) IssuancePremium() fixed.Fix {
	if c.PegPrice.IsZero() || c.PegPrice.Gte(c.TargetPerRef) {
		return fixed.One
	}
	return c.TargetPerRef.DivRnd(c.PegPrice, fixed.Ceil)
}

func (c *Collateral) markStatus(now int64, status CollateralStatus) {
	switch status {
	case CollateralStatusSound:
		if c.WhenDefault > now {
			c.WhenDefault = NeverDefault
		}
	case CollateralStatusIffy:
		deadline := now + c.DelayUntilDefault
		if deadline < c.WhenDefault {
			c.WhenDefault = deadline
		}
	case CollateralStatusDisabled:
		if now < c.WhenDefault {
			c.WhenDefault = now
		}
	}
}
