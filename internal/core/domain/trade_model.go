package domain

import "github.com/tdex-network/basketd/pkg/fixed"

// TradeKind is the auction mechanism of a trade.
type TradeKind int

const (
	DutchAuction TradeKind = iota
	BatchAuction
)

func (k TradeKind) String() string {
	switch k {
	case DutchAuction:
		return "DUTCH_AUCTION"
	case BatchAuction:
		return "BATCH_AUCTION"
	default:
		return "UNKNOWN"
	}
}

// ParseTradeKind ...
func ParseTradeKind(s string) (TradeKind, error) {
	switch s {
	case "DUTCH_AUCTION", "DUTCH", "dutch":
		return DutchAuction, nil
	case "BATCH_AUCTION", "BATCH", "batch":
		return BatchAuction, nil
	default:
		return 0, ErrUnknownAuctionKind
	}
}

// TradeStatus is the lifecycle status of a trade. It only moves forward.
type TradeStatus int

const (
	TradeStatusNotStarted TradeStatus = iota
	TradeStatusOpen
	TradeStatusClosed
)

func (s TradeStatus) String() string {
	switch s {
	case TradeStatusNotStarted:
		return "NOT_STARTED"
	case TradeStatusOpen:
		return "OPEN"
	case TradeStatusClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// TradeRequest describes what a trader wants to sell.
type TradeRequest struct {
	Sell         string
	Buy          string
	SellDecimals uint8
	BuyDecimals  uint8
	SellAmount   fixed.Fix
	MinBuyAmount fixed.Fix
}

// TradePrices are the oracle bounds of the two tokens at request time.
type TradePrices struct {
	SellLow  fixed.Fix
	SellHigh fixed.Fix
	BuyLow   fixed.Fix
	BuyHigh  fixed.Fix
}

// Trade is a single auction selling SellAmount of Sell for Buy.
type Trade struct {
	ID     string
	Origin string
	Kind   TradeKind
	Status TradeStatus

	Sell         string
	Buy          string
	SellDecimals uint8
	BuyDecimals  uint8
	SellAmount   fixed.Fix
	MinBuyAmount fixed.Fix

	// Prices are expressed in buy tokens per sell token.
	WorstCasePrice fixed.Fix
	BestPrice      fixed.Fix

	StartTime int64
	EndTime   int64
	AuctionID string

	Bidder       string
	SoldAmount   fixed.Fix
	BoughtAmount fixed.Fix
	SettledAt    int64
	// EscrowReleased is set once nothing is left in the escrow of a closed
	// trade.
	EscrowReleased bool
}
