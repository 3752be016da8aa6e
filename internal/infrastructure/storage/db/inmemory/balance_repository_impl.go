package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
)

type balanceRepositoryImpl struct {
	// balances are indexed by account and then by token.
	balances map[string]map[string]fixed.Fix
	locker   *sync.RWMutex
}

// NewBalanceRepositoryImpl returns a new empty inmemory BalanceRepository.
func NewBalanceRepositoryImpl() domain.BalanceRepository {
	return &balanceRepositoryImpl{
		balances: make(map[string]map[string]fixed.Fix),
		locker:   &sync.RWMutex{},
	}
}

func (r *balanceRepositoryImpl) GetBalance(
	_ context.Context, account, token string,
) (fixed.Fix, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	return r.balances[account][token], nil
}

func (r *balanceRepositoryImpl) GetBalances(
	_ context.Context, account string,
) ([]domain.Balance, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	balances := make([]domain.Balance, 0, len(r.balances[account]))
	for token, amount := range r.balances[account] {
		if amount.IsZero() {
			continue
		}
		balances = append(balances, domain.Balance{
			Account: account, Token: token, Amount: amount,
		})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Token < balances[j].Token
	})
	return balances, nil
}

func (r *balanceRepositoryImpl) Transfer(
	_ context.Context, from, to, token string, amount fixed.Fix,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if r.balances[from][token].Lt(amount) {
		return domain.ErrInsufficientBalance
	}
	r.credit(from, token, r.balances[from][token].Minus(amount))
	r.credit(to, token, r.balances[to][token].Plus(amount))
	return nil
}

func (r *balanceRepositoryImpl) Mint(
	_ context.Context, to, token string, amount fixed.Fix,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.credit(to, token, r.balances[to][token].Plus(amount))
	return nil
}

func (r *balanceRepositoryImpl) credit(account, token string, amount fixed.Fix) {
	if _, ok := r.balances[account]; !ok {
		r.balances[account] = make(map[string]fixed.Fix)
	}
	r.balances[account][token] = amount
}
