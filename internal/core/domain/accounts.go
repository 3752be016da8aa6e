package domain

import "strings"

const (
	// BackingManagerAccount holds the collateral backing the issued token.
	BackingManagerAccount = "backing-manager"
	// BackstopTraderAccount holds the revenue to be converted to the
	// backstop token.
	BackstopTraderAccount = "backstop-trader"
	// IssuedTraderAccount holds the revenue to be converted to the issued
	// token.
	IssuedTraderAccount = "issued-trader"
	// BatchAuctionAccount is the custody account of the batch auction venue.
	BatchAuctionAccount = "batch-auction"

	tradeAccountPrefix = "trade/"
)

// TradeAccount returns the escrow account of a trade.
func TradeAccount(tradeID string) string {
	return tradeAccountPrefix + tradeID
}

// IsEscrowAccount tells whether the account holds value in custody for a
// trade or for the batch auction venue.
func IsEscrowAccount(account string) bool {
	return account == BatchAuctionAccount ||
		strings.HasPrefix(account, tradeAccountPrefix)
}
