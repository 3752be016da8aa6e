package domain

import (
	"context"
	"errors"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// ErrInsufficientBalance ...
var ErrInsufficientBalance = errors.New("insufficient balance")

// Balance is the amount of a token held by an account.
type Balance struct {
	Account string
	Token   string
	Amount  fixed.Fix
}

// BalanceRepository is the abstraction for any kind of database intended to
// persist token balances.
type BalanceRepository interface {
	// GetBalance returns the balance, zero if the account never held the token.
	GetBalance(ctx context.Context, account, token string) (fixed.Fix, error)
	// GetBalances returns the non-zero balances of an account.
	GetBalances(ctx context.Context, account string) ([]Balance, error)
	// Transfer atomically moves amount from one account to another.
	Transfer(ctx context.Context, from, to, token string, amount fixed.Fix) error
	// Mint credits an account out of thin air.
	Mint(ctx context.Context, to, token string, amount fixed.Fix) error
}
