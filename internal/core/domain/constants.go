package domain

import (
	"math"

	"github.com/tdex-network/basketd/pkg/fixed"
)

const (
	// NeverDefault is the whenDefault value of a collateral that is not
	// scheduled to default.
	NeverDefault int64 = math.MaxInt64

	// MaxBackupERC20s is the max length of a backup config list.
	MaxBackupERC20s = 64

	// MinWarmupPeriod ...
	MinWarmupPeriod int64 = 60
	// MaxWarmupPeriod ...
	MaxWarmupPeriod int64 = 60 * 60 * 24 * 365

	// MaxTradingDelay ...
	MaxTradingDelay int64 = 60 * 60 * 24 * 365

	// MinAuctionLength ...
	MinAuctionLength int64 = 60
	// MaxAuctionLength ...
	MaxAuctionLength int64 = 60 * 60 * 24 * 7
)

var (
	// MaxTargetAmt is the max target amount of a single prime basket entry.
	MaxTargetAmt = fixed.NewFromInt(1000)
	// MaxTradeSlippage ...
	MaxTradeSlippage = fixed.One
	// MaxBackingBuffer ...
	MaxBackingBuffer = fixed.One
	// MaxMinTradeVolume ...
	MaxMinTradeVolume = fixed.MustParse("1e29")
	// MaxOracleError ...
	MaxOracleError = fixed.One
)
