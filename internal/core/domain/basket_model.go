package domain

import "github.com/tdex-network/basketd/pkg/fixed"

// PrimeEntry is one weighted entry of the prime basket.
type PrimeEntry struct {
	ERC20      string
	TargetName string
	TargetAmt  fixed.Fix
}

// PrimeBasket is the governance-declared target composition.
type PrimeBasket struct {
	Entries []PrimeEntry
}

// BackupConfig lists the substitutes of a target unit, in preference order.
type BackupConfig struct {
	TargetName string
	Max        int
	ERC20s     []string
}

// Basket is an immutable snapshot of a concrete basket, identified by its
// nonce. RefAmts are expressed in reference units per basket unit.
type Basket struct {
	Nonce     uint64
	ERC20s    []string
	RefAmts   []fixed.Fix
	Disabled  bool
	Timestamp int64
}

// BasketState is the mutable bookkeeping of the current basket.
type BasketState struct {
	Nonce               uint64
	Disabled            bool
	Timestamp           int64
	LastStatus          CollateralStatus
	LastStatusTimestamp int64
	WarmupPeriod        int64
	Reweightable        bool
}

// BasketRange is the number of basket units an account could assemble with
// its balances, rounded down and up.
type BasketRange struct {
	Bottom fixed.Fix
	Top    fixed.Fix
}

// BalanceFunc returns the balance of a token held by some account.
type BalanceFunc func(erc20 string) fixed.Fix
