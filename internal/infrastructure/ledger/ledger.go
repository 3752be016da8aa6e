// Package ledger implements the token ledger on top of the balance
// repository.
package ledger

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

// TransferHook is invoked after every successful transfer, the way a token
// contract would call back the receiver.
type TransferHook func(ctx context.Context, from, to, token string, amount fixed.Fix)

// Ledger moves tokens between accounts.
type Ledger struct {
	repo domain.BalanceRepository

	lock  *sync.RWMutex
	hooks []TransferHook
}

func New(repo domain.BalanceRepository) *Ledger {
	return &Ledger{
		repo: repo,
		lock: &sync.RWMutex{},
	}
}

// OnTransfer registers a hook called after every transfer.
func (l *Ledger) OnTransfer(hook TransferHook) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.hooks = append(l.hooks, hook)
}

func (l *Ledger) BalanceOf(ctx context.Context, account, token string) (fixed.Fix, error) {
	return l.repo.GetBalance(ctx, account, token)
}

func (l *Ledger) Balances(ctx context.Context, account string) ([]domain.Balance, error) {
	return l.repo.GetBalances(ctx, account)
}

func (l *Ledger) Transfer(
	ctx context.Context, from, to, token string, amount fixed.Fix,
) error {
	if from == to {
		return fmt.Errorf("cannot transfer to the same account")
	}
	if amount.IsZero() {
		return nil
	}
	if err := l.repo.Transfer(ctx, from, to, token, amount); err != nil {
		return fmt.Errorf("transfer of %s %s from %s: %w", amount, token, from, err)
	}
	log.Debugf("ledger: %s %s moved from %s to %s", amount, token, from, to)

	l.lock.RLock()
	hooks := append([]TransferHook{}, l.hooks...)
	l.lock.RUnlock()
	for _, hook := range hooks {
		hook(ctx, from, to, token, amount)
	}
	return nil
}

func (l *Ledger) Mint(ctx context.Context, to, token string, amount fixed.Fix) error {
	if err := l.repo.Mint(ctx, to, token, amount); err != nil {
		return err
	}
	log.Debugf("ledger: %s %s minted to %s", amount, token, to)
	return nil
}
