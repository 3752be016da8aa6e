package domain

import "github.com/tdex-network/basketd/pkg/fixed"

// CollateralStatus is the health classification of a collateral.
type CollateralStatus int

const (
	CollateralStatusSound CollateralStatus = iota
	CollateralStatusIffy
	CollateralStatusDisabled
)

func (s CollateralStatus) String() string {
	switch s {
	case CollateralStatusSound:
		return "SOUND"
	case CollateralStatusIffy:
		return "IFFY"
	case CollateralStatusDisabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// WorseStatus returns the least healthy of the given statuses.
func WorseStatus(a, b CollateralStatus) CollateralStatus {
	if b > a {
		return b
	}
	return a
}

// Price is the pair of low and high estimates of an asset price, expressed
// in unit of account per whole token.
type Price struct {
	Low  fixed.Fix
	High fixed.Fix
}

// Unpriced is the price of an asset whose oracle can't be trusted.
func Unpriced() Price {
	return Price{Low: fixed.Zero, High: fixed.MaxValue}
}

// IsPriced returns whether both the bounds are meaningful.
func (p Price) IsPriced() bool {
	return !p.Low.IsZero() && !p.High.IsMax()
}

// Observation is the set of oracle readings fed into a refresh.
type Observation struct {
	// RefPrice is the unit of account price of the reference unit (or of the
	// whole token for plain assets).
	RefPrice fixed.Fix
	// TargetPrice is the unit of account price of the target unit. Zero
	// means the target is the unit of account itself.
	TargetPrice fixed.Fix
	// RefPerTok is the exchange rate of the token for its reference unit.
	// Zero means the rate is not tracked by any feed.
	RefPerTok fixed.Fix
	Timestamp int64
}

// Asset is the descriptor of a registered token.
type Asset struct {
	ERC20          string
	Symbol         string
	Decimals       uint8
	MaxTradeVolume fixed.Fix
	Feed           string
	OracleError    fixed.Fix
	OracleTimeout  int64
	PriceTimeout   int64
	Index          int

	SavedLow  fixed.Fix
	SavedHigh fixed.Fix
	LastSave  int64

	Collateral *Collateral
}

// Collateral extends an Asset with the data needed to back the issued token.
type Collateral struct {
	TargetName        string
	TargetFeed        string
	RateFeed          string
	RefPerTok         fixed.Fix
	TargetPerRef      fixed.Fix
	PegBottom         fixed.Fix
	PegTop            fixed.Fix
	PegPrice          fixed.Fix
	DelayUntilDefault int64
	WhenDefault       int64
}
