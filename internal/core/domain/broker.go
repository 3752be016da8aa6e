package domain

import "fmt"

// BrokerState holds the auction settings and the per-kind circuit breakers.
// The breakers are tripped by the broker and reset only by governance.
type BrokerState struct {
	BatchAuctionDisabled bool
	DutchAuctionDisabled map[string]bool
	BatchAuctionLength   int64
	DutchAuctionLength   int64
}

// NewBrokerState ...
func NewBrokerState(batchAuctionLength, dutchAuctionLength int64) (*BrokerState, error) {
	s := &BrokerState{DutchAuctionDisabled: make(map[string]bool)}
	if err := s.SetBatchAuctionLength(batchAuctionLength); err != nil {
		return nil, err
	}
	if err := s.SetDutchAuctionLength(dutchAuctionLength); err != nil {
		return nil, err
	}
	return s, nil
}

// IsKindDisabled returns whether trades of the given kind between the two
// tokens are currently forbidden.
func (s *BrokerState) IsKindDisabled(kind TradeKind, sell, buy string) bool {
	if kind == BatchAuction {
		return s.BatchAuctionDisabled
	}
	return s.DutchAuctionDisabled[sell] || s.DutchAuctionDisabled[buy]
}

// AuctionLength ...
func (s *BrokerState) AuctionLength(kind TradeKind) int64 {
	if kind == BatchAuction {
		return s.BatchAuctionLength
	}
	return s.DutchAuctionLength
}

func (s *BrokerState) SetBatchAuctionLength(length int64) error {
	if err := validateAuctionLength(length); err != nil {
		return fmt.Errorf("%w: invalid batchAuctionLength", err)
	}
	s.BatchAuctionLength = length
	return nil
}

func (s *BrokerState) SetDutchAuctionLength(length int64) error {
	if err := validateAuctionLength(length); err != nil {
		return fmt.Errorf("%w: invalid dutchAuctionLength", err)
	}
	s.DutchAuctionLength = length
	return nil
}

func (s *BrokerState) SetBatchAuctionDisabled(disabled bool) {
	s.BatchAuctionDisabled = disabled
}

func (s *BrokerState) SetDutchAuctionDisabled(erc20 string, disabled bool) {
	if s.DutchAuctionDisabled == nil {
		s.DutchAuctionDisabled = make(map[string]bool)
	}
	if !disabled {
		delete(s.DutchAuctionDisabled, erc20)
		return
	}
	s.DutchAuctionDisabled[erc20] = true
}

func validateAuctionLength(length int64) error {
	if length < MinAuctionLength || length > MaxAuctionLength {
		return ErrOutOfRange
	}
	return nil
}
