package domain

import "github.com/tdex-network/basketd/pkg/fixed"

// AuctionBid is a sealed offer of BuyAmount for up to SellAmount of a lot.
type AuctionBid struct {
	Bidder     string
	SellAmount fixed.Fix
	BuyAmount  fixed.Fix
}

// Price is the bid price in buy tokens per sell token.
func (b AuctionBid) Price() fixed.Fix {
	return b.BuyAmount.Div(b.SellAmount)
}

// Auction is a batch auction lot in custody of the venue, with the bids
// committed so far and, once settled, its clearing result.
type Auction struct {
	ID     string
	Seller string

	Sell         string
	Buy          string
	SellAmount   fixed.Fix
	MinBuyAmount fixed.Fix
	BuyDecimals  uint8
	EndTime      int64

	Bids    []AuctionBid
	Settled bool
	Sold    fixed.Fix
	Bought  fixed.Fix
}

// MinPrice is the lowest acceptable bid price.
func (a *Auction) MinPrice() fixed.Fix {
	return a.MinBuyAmount.Div(a.SellAmount)
}
