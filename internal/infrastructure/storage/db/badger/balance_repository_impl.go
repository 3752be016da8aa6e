package dbbadger

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/fixed"
	"github.com/timshannon/badgerhold/v4"
)

type balanceRepositoryImpl struct {
	store *badgerhold.Store
}

// NewBalanceRepositoryImpl returns a badger implementation of
// domain.BalanceRepository. Transfers are committed in a single badger
// transaction.
func NewBalanceRepositoryImpl(store *badgerhold.Store) domain.BalanceRepository {
	return &balanceRepositoryImpl{store}
}

func (r *balanceRepositoryImpl) GetBalance(
	_ context.Context, account, token string,
) (fixed.Fix, error) {
	var balance domain.Balance
	if err := r.store.Get(balanceKey(account, token), &balance); err != nil {
		if err == badgerhold.ErrNotFound {
			return fixed.Zero, nil
		}
		return fixed.Zero, err
	}
	return balance.Amount, nil
}

func (r *balanceRepositoryImpl) GetBalances(
	_ context.Context, account string,
) ([]domain.Balance, error) {
	var list []domain.Balance
	query := badgerhold.Where("Account").Eq(account)
	if err := r.store.Find(&list, query); err != nil {
		return nil, err
	}

	balances := make([]domain.Balance, 0, len(list))
	for _, b := range list {
		if !b.Amount.IsZero() {
			balances = append(balances, b)
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Token < balances[j].Token
	})
	return balances, nil
}

func (r *balanceRepositoryImpl) Transfer(
	_ context.Context, from, to, token string, amount fixed.Fix,
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		fromBalance, err := r.txGet(tx, from, token)
		if err != nil {
			return err
		}
		if fromBalance.Lt(amount) {
			return domain.ErrInsufficientBalance
		}
		toBalance, err := r.txGet(tx, to, token)
		if err != nil {
			return err
		}

		if err := r.txPut(tx, from, token, fromBalance.Minus(amount)); err != nil {
			return err
		}
		return r.txPut(tx, to, token, toBalance.Plus(amount))
	})
}

func (r *balanceRepositoryImpl) Mint(
	_ context.Context, to, token string, amount fixed.Fix,
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		balance, err := r.txGet(tx, to, token)
		if err != nil {
			return err
		}
		return r.txPut(tx, to, token, balance.Plus(amount))
	})
}

func (r *balanceRepositoryImpl) txGet(
	tx *badger.Txn, account, token string,
) (fixed.Fix, error) {
	var balance domain.Balance
	if err := r.store.TxGet(tx, balanceKey(account, token), &balance); err != nil {
		if err == badgerhold.ErrNotFound {
			return fixed.Zero, nil
		}
		return fixed.Zero, err
	}
	return balance.Amount, nil
}

func (r *balanceRepositoryImpl) txPut(
	tx *badger.Txn, account, token string, amount fixed.Fix,
) error {
	return r.store.TxUpsert(tx, balanceKey(account, token), domain.Balance{
		Account: account,
		Token:   token,
		Amount:  amount,
	})
}

func balanceKey(account, token string) string {
	return account + "/" + token
}
