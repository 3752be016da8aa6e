// Package apptest builds in-memory engines for the tests of the application
// services.
package apptest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/application"
	"github.com/tdex-network/basketd/internal/core/application/caller"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const (
	Governance    = "governance"
	IssuedToken   = "RSV"
	BackstopToken = "RSR"

	StartTime          = int64(1700000000)
	WarmupPeriod       = domain.MinWarmupPeriod
	AuctionLength      = int64(900)
	DefaultOracleError = "0.01"
)

// Clock is a manually driven clock.
type Clock struct {
	now atomic.Int64
}

func NewClock(now int64) *Clock {
	c := &Clock{}
	c.now.Store(now)
	return c
}

func (c *Clock) Now() int64 {
	return c.now.Load()
}

func (c *Clock) Advance(seconds int64) {
	c.now.Add(seconds)
}

func (c *Clock) Set(now int64) {
	c.now.Store(now)
}

// Oracle serves fixed prices stamped with the current time of the clock.
// Failing feeds return an error.
type Oracle struct {
	clock   ports.Clock
	lock    *sync.RWMutex
	prices  map[string]fixed.Fix
	failing map[string]bool
}

func NewOracle(clock ports.Clock) *Oracle {
	return &Oracle{
		clock:   clock,
		lock:    &sync.RWMutex{},
		prices:  make(map[string]fixed.Fix),
		failing: make(map[string]bool),
	}
}

func (o *Oracle) Set(feed, price string) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.prices[feed] = fixed.MustParse(price)
	delete(o.failing, feed)
}

func (o *Oracle) Fail(feed string) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.failing[feed] = true
}

func (o *Oracle) Price(_ context.Context, feed string) (ports.PriceFeed, error) {
	o.lock.RLock()
	defer o.lock.RUnlock()

	price, ok := o.prices[feed]
	if !ok || o.failing[feed] {
		return ports.PriceFeed{}, fmt.Errorf("feed %s not available", feed)
	}
	return ports.PriceFeed{Feed: feed, Price: price, Timestamp: o.clock.Now()}, nil
}

// Env is an engine backed by the in-memory repositories along with the fakes
// driving it.
type Env struct {
	Engine *application.Engine
	Clock  *Clock
	Oracle *Oracle
}

// Option customizes the engine config of an Env.
type Option func(cfg *application.Config)

func WithBackingConfig(cfg domain.BackingConfig) Option {
	return func(c *application.Config) {
		c.BackingConfig = cfg
	}
}

// WithBadger backs the engine with the badger stores in datadir, in-memory
// if empty.
func WithBadger(datadir string) Option {
	return func(c *application.Config) {
		c.DBType = application.DBBadger
		c.DBConfig = datadir
	}
}

func WithReweightable() Option {
	return func(c *application.Config) {
		c.Reweightable = true
	}
}

// DefaultBackingConfig has no trading delay, no buffer and a 1% slippage.
func DefaultBackingConfig() domain.BackingConfig {
	return domain.BackingConfig{
		TradingDelay:     0,
		MaxTradeSlippage: fixed.MustParse("0.01"),
		BackingBuffer:    fixed.Zero,
		MinTradeVolume:   fixed.One,
	}
}

func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	clock := NewClock(StartTime)
	oracle := NewOracle(clock)
	cfg := &application.Config{
		DBType:             application.DBInMemory,
		Oracle:             oracle,
		Clock:              clock,
		Governance:         Governance,
		IssuedToken:        IssuedToken,
		BackstopToken:      BackstopToken,
		WarmupPeriod:       WarmupPeriod,
		BackingConfig:      DefaultBackingConfig(),
		BatchAuctionLength: AuctionLength,
		DutchAuctionLength: AuctionLength,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	engine, err := application.NewEngine(cfg)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return &Env{
		Engine: engine,
		Clock:  clock,
		Oracle: oracle,
	}
}

// Gov returns a context carrying the governance caller.
func Gov() context.Context {
	return caller.WithCaller(context.Background(), Governance)
}

// As returns a context carrying the given caller.
func As(id string) context.Context {
	return caller.WithCaller(context.Background(), id)
}

// Collateral returns a fiat-pegged collateral descriptor whose feed is its
// own erc20.
func Collateral(erc20, targetName string) domain.Asset {
	return domain.Asset{
		ERC20:          erc20,
		Symbol:         erc20,
		Decimals:       18,
		MaxTradeVolume: fixed.NewFromInt(1000000),
		Feed:           erc20,
		OracleError:    fixed.MustParse(DefaultOracleError),
		OracleTimeout:  3600,
		PriceTimeout:   3600,
		Collateral: &domain.Collateral{
			TargetName:        targetName,
			RefPerTok:         fixed.One,
			TargetPerRef:      fixed.One,
			PegBottom:         fixed.MustParse("0.95"),
			PegTop:            fixed.MustParse("1.05"),
			DelayUntilDefault: 86400,
		},
	}
}

// Plain returns a non collateral asset descriptor.
func Plain(erc20 string) domain.Asset {
	return domain.Asset{
		ERC20:          erc20,
		Symbol:         erc20,
		Decimals:       18,
		MaxTradeVolume: fixed.NewFromInt(1000000),
		Feed:           erc20,
		OracleError:    fixed.MustParse(DefaultOracleError),
		OracleTimeout:  3600,
		PriceTimeout:   3600,
	}
}

// Register prices every asset at 1 and registers it.
func (e *Env) Register(t *testing.T, assets ...domain.Asset) {
	t.Helper()

	for _, a := range assets {
		e.Oracle.Set(a.Feed, "1")
		require.NoError(t, e.Engine.Registry().Register(Gov(), a))
	}
}

// SetupBasket registers the protocol tokens plus a USD collateral for every
// given erc20, sets the prime basket with the given weights, switches to it
// and waits for the warmup period to elapse.
func (e *Env) SetupBasket(t *testing.T, erc20s []string, weights []string) {
	t.Helper()

	e.Register(t, Plain(IssuedToken), Plain(BackstopToken))
	targetAmts := make([]fixed.Fix, 0, len(weights))
	for i, erc20 := range erc20s {
		e.Register(t, Collateral(erc20, "USD"))
		targetAmts = append(targetAmts, fixed.MustParse(weights[i]))
	}

	ctx := Gov()
	require.NoError(t, e.Engine.Basket().SetPrimeBasket(ctx, erc20s, targetAmts))
	_, err := e.Engine.Basket().RefreshBasket(ctx)
	require.NoError(t, err)

	e.Clock.Advance(WarmupPeriod)
	ready, err := e.Engine.Basket().IsReady(ctx)
	require.NoError(t, err)
	require.True(t, ready)
}

// SetBasketsNeeded sets the baskets needed by the issued token.
func (e *Env) SetBasketsNeeded(t *testing.T, amount string) {
	t.Helper()

	require.NoError(t, e.Engine.Protocol().SetBasketsNeeded(
		Gov(), fixed.MustParse(amount),
	))
}

// Mint credits account with amount of token.
func (e *Env) Mint(t *testing.T, account, token, amount string) {
	t.Helper()

	require.NoError(t, e.Engine.Ledger().Mint(
		context.Background(), account, token, fixed.MustParse(amount),
	))
}

// Balance returns the balance of token held by account.
func (e *Env) Balance(t *testing.T, account, token string) fixed.Fix {
	t.Helper()

	balance, err := e.Engine.Ledger().BalanceOf(context.Background(), account, token)
	require.NoError(t, err)
	return balance
}

// RequireBalance checks the balance of token held by account.
func (e *Env) RequireBalance(t *testing.T, account, token, expected string) {
	t.Helper()

	balance := e.Balance(t, account, token)
	require.Truef(
		t, balance.Eq(fixed.MustParse(expected)),
		"%s balance of %s: expected %s, got %s", token, account, expected, balance,
	)
}
