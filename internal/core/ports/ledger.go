package ports

import (
	"context"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

// TokenLedger moves tokens between accounts.
type TokenLedger interface {
	BalanceOf(ctx context.Context, account, token string) (fixed.Fix, error)
	Balances(ctx context.Context, account string) ([]domain.Balance, error)
	Transfer(ctx context.Context, from, to, token string, amount fixed.Fix) error
	Mint(ctx context.Context, to, token string, amount fixed.Fix) error
}
