package domain

import "errors"

var (
	// ErrInvalidBasket is returned for malformed prime basket updates.
	ErrInvalidBasket = errors.New("invalid basket")
	// ErrInvalidBackupConfig is returned for malformed backup configs.
	ErrInvalidBackupConfig = errors.New("invalid backup config")
	// ErrOutOfRange is returned when a governance parameter is out of bounds.
	ErrOutOfRange = errors.New("parameter out of range")
	// ErrInvalidPortions is returned when custom redemption portions do not
	// sum up to one.
	ErrInvalidPortions = errors.New("portions do not add up to 1")
	// ErrInvalidNonce is returned when referring to a basket nonce that was
	// never published.
	ErrInvalidNonce = errors.New("invalid basket nonce")
	// ErrBasketNotFound ...
	ErrBasketNotFound = errors.New("basket not found")
	// ErrNoPrimeBasket is returned when refreshing before a prime basket is set.
	ErrNoPrimeBasket = errors.New("prime basket not set")

	// ErrInvalidAsset ...
	ErrInvalidAsset = errors.New("invalid asset")
	// ErrAssetNotFound ...
	ErrAssetNotFound = errors.New("asset not registered")
	// ErrAssetAlreadyRegistered ...
	ErrAssetAlreadyRegistered = errors.New("asset already registered")
	// ErrNotCollateral ...
	ErrNotCollateral = errors.New("erc20 is not collateral")

	// ErrAuctionNotFound ...
	ErrAuctionNotFound = errors.New("auction not found")
	// ErrTradeNotFound ...
	ErrTradeNotFound = errors.New("trade not found")
	// ErrTradeAlreadyOpen is returned when the origin has already an open
	// trade for the same sell token.
	ErrTradeAlreadyOpen = errors.New("trade already open")
	// ErrNoTradeOpen is returned when settling a token without open trades.
	ErrNoTradeOpen = errors.New("no trade open")
	// ErrInvalidTradeState is returned for any forbidden status transition.
	ErrInvalidTradeState = errors.New("invalid trade state")
	// ErrAuctionNotOver is returned when settling before the end time.
	ErrAuctionNotOver = errors.New("auction not over")
	// ErrInvalidBidder is returned when the origin of a trade or an escrow
	// account tries to take a dutch auction.
	ErrInvalidBidder = errors.New("invalid bidder")
	// ErrAuctionNotOngoing is returned when bidding outside the auction window.
	ErrAuctionNotOngoing = errors.New("auction not ongoing")
	// ErrAuctionKindDisabled is returned when the circuit breaker of the
	// requested auction kind is tripped.
	ErrAuctionKindDisabled = errors.New("auction kind disabled")
	// ErrUnknownAuctionKind ...
	ErrUnknownAuctionKind = errors.New("unknown auction kind")
	// ErrInvalidTradeRequest is returned for zero amounts, same tokens and
	// similar malformed requests.
	ErrInvalidTradeRequest = errors.New("invalid trade request")
	// ErrBadSellPricing ...
	ErrBadSellPricing = errors.New("bad sell pricing")
	// ErrBadBuyPricing ...
	ErrBadBuyPricing = errors.New("bad buy pricing")
	// ErrOnlyOrigin is returned when a trade is settled by a component other
	// than the one that opened it.
	ErrOnlyOrigin = errors.New("only origin can settle")

	// ErrPausedOrFrozen ...
	ErrPausedOrFrozen = errors.New("paused or frozen")
	// ErrFrozen ...
	ErrFrozen = errors.New("frozen")
	// ErrGovernanceOnly ...
	ErrGovernanceOnly = errors.New("governance only")
	// ErrReentrant is returned when a component is entered again before its
	// running operation completed.
	ErrReentrant = errors.New("reentrant call")

	// ErrNotTrader is returned when a trade is requested by an account that
	// is not a registered trader.
	ErrNotTrader = errors.New("only traders")
	// ErrBasketNotReady is returned when the basket is not SOUND or still
	// warming up.
	ErrBasketNotReady = errors.New("basket not ready")
	// ErrBasketNotDisabled is returned when anyone but governance tries to
	// refresh a basket that is not DISABLED.
	ErrBasketNotDisabled = errors.New("basket not disabled")
	// ErrTradesOpen is returned when rebalancing with trades still open.
	ErrTradesOpen = errors.New("trade open")
	// ErrTradingDelay is returned when trading before the delay since the
	// last basket switch elapsed.
	ErrTradingDelay = errors.New("trading delayed")
	// ErrAlreadyCollateralized is returned when rebalancing a fully
	// collateralized system.
	ErrAlreadyCollateralized = errors.New("already collateralized")
	// ErrUndercollateralized is returned when forwarding revenue of a system
	// that is not fully collateralized.
	ErrUndercollateralized = errors.New("undercollateralized")
	// ErrDuplicateToken ...
	ErrDuplicateToken = errors.New("duplicate tokens")
)
