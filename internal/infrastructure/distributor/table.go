// Package distributor splits revenue among a static table of destinations.
package distributor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const (
	// FurnaceAccount receives the issued token revenue by default.
	FurnaceAccount = "furnace"
	// StakersAccount receives the backstop token revenue by default.
	StakersAccount = "stakers"
)

var (
	ErrEmptyTable         = errors.New("distribution table must not be empty")
	ErrDuplicateAccount   = errors.New("duplicated destination account")
	ErrZeroShares         = errors.New("distribution table has zero total shares")
	ErrUnsupportedToken   = errors.New("token is not distributable")
	ErrInvalidDestination = errors.New("invalid destination")
)

// Destination is an entry of the revenue table. Shares are relative weights.
type Destination struct {
	Account       string
	IssuedShare   fixed.Fix
	BackstopShare fixed.Fix
}

// Table distributes the issued token by IssuedShare and the backstop token
// by BackstopShare.
type Table struct {
	ledger        ports.TokenLedger
	issuedToken   string
	backstopToken string

	lock         *sync.RWMutex
	destinations []Destination
}

func NewTable(
	ledger ports.TokenLedger, issuedToken, backstopToken string,
	destinations []Destination,
) (*Table, error) {
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger")
	}
	if err := validate(destinations); err != nil {
		return nil, err
	}
	return &Table{
		ledger:        ledger,
		issuedToken:   issuedToken,
		backstopToken: backstopToken,
		lock:          &sync.RWMutex{},
		destinations:  append([]Destination{}, destinations...),
	}, nil
}

func (t *Table) Totals(_ context.Context) (fixed.Fix, fixed.Fix, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	issued, backstop := fixed.Zero, fixed.Zero
	for _, d := range t.destinations {
		issued = issued.Plus(d.IssuedShare)
		backstop = backstop.Plus(d.BackstopShare)
	}
	return issued, backstop, nil
}

// Distribute moves amount of token from the given account to every
// destination pro rata. The last destination with a non zero share gets the
// rounding remainder.
func (t *Table) Distribute(
	ctx context.Context, from, token string, amount fixed.Fix,
) error {
	if amount.IsZero() {
		return nil
	}

	t.lock.RLock()
	destinations := append([]Destination{}, t.destinations...)
	t.lock.RUnlock()

	var share func(Destination) fixed.Fix
	switch token {
	case t.issuedToken:
		share = func(d Destination) fixed.Fix { return d.IssuedShare }
	case t.backstopToken:
		share = func(d Destination) fixed.Fix { return d.BackstopShare }
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedToken, token)
	}

	total := fixed.Zero
	last := -1
	for i, d := range destinations {
		if s := share(d); !s.IsZero() {
			total = total.Plus(s)
			last = i
		}
	}
	if last < 0 {
		return fmt.Errorf("%w for %s", ErrZeroShares, token)
	}

	left := amount
	for i, d := range destinations {
		s := share(d)
		if s.IsZero() {
			continue
		}
		part := amount.MulDiv(s, total, fixed.Floor)
		if i == last {
			part = left
		}
		if err := t.ledger.Transfer(ctx, from, d.Account, token, part); err != nil {
			return err
		}
		left = left.Minus(part)
	}

	log.Debugf("distributor: %s %s distributed from %s", amount, token, from)
	return nil
}

// Destinations returns a copy of the table.
func (t *Table) Destinations() []Destination {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return append([]Destination{}, t.destinations...)
}

// SetDestinations replaces the whole table.
func (t *Table) SetDestinations(destinations []Destination) error {
	if err := validate(destinations); err != nil {
		return err
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.destinations = append([]Destination{}, destinations...)
	return nil
}

func validate(destinations []Destination) error {
	if len(destinations) == 0 {
		return ErrEmptyTable
	}
	seen := make(map[string]struct{})
	for _, d := range destinations {
		if d.Account == "" {
			return fmt.Errorf("%w: missing account", ErrInvalidDestination)
		}
		if _, ok := seen[d.Account]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, d.Account)
		}
		seen[d.Account] = struct{}{}
	}
	return nil
}
