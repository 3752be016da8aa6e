package application

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application/backing"
	"github.com/tdex-network/basketd/internal/core/application/basket"
	"github.com/tdex-network/basketd/internal/core/application/broker"
	"github.com/tdex-network/basketd/internal/core/application/protocol"
	"github.com/tdex-network/basketd/internal/core/application/pubsub"
	"github.com/tdex-network/basketd/internal/core/application/registry"
	"github.com/tdex-network/basketd/internal/core/application/revenue"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/internal/infrastructure/batchauction"
	"github.com/tdex-network/basketd/internal/infrastructure/distributor"
)

// Engine gathers the services of the collateral engine. Operations run one
// at a time through Do, which realizes the single atomic execution context
// every service relies on.
type Engine struct {
	lock      *sync.Mutex
	closeOnce *sync.Once

	repo        ports.RepoManager
	ledger      ports.TokenLedger
	venue       *batchauction.Venue
	distributor *distributor.Table
	clock       ports.Clock

	pubsub   *pubsub.Service
	protocol *protocol.Service
	registry *registry.Service
	basket   *basket.Service
	broker   *broker.Service
	backing  *backing.Service
	backstop *revenue.Service
	issued   *revenue.Service
}

// NewEngine builds every service and initializes the persisted states that
// were never stored before.
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo, _ := cfg.repoManager()
	l, err := cfg.tokenLedger()
	if err != nil {
		return nil, err
	}
	venue, err := cfg.batchAuctionVenue()
	if err != nil {
		return nil, err
	}
	d, err := cfg.revenueDistributor()
	if err != nil {
		return nil, err
	}
	protocolSvc, err := cfg.protocolService()
	if err != nil {
		return nil, err
	}
	registrySvc, err := cfg.registryService()
	if err != nil {
		return nil, err
	}
	basketSvc, err := cfg.basketService()
	if err != nil {
		return nil, err
	}
	brokerSvc, err := cfg.brokerService()
	if err != nil {
		return nil, err
	}
	backingSvc, err := cfg.backingService()
	if err != nil {
		return nil, err
	}
	backstopSvc, err := cfg.backstopTrader()
	if err != nil {
		return nil, err
	}
	issuedSvc, err := cfg.issuedTrader()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := protocolSvc.Init(ctx, domain.ProtocolState{
		Governance:    cfg.Governance,
		IssuedToken:   cfg.IssuedToken,
		BackstopToken: cfg.BackstopToken,
	}); err != nil {
		return nil, err
	}
	if err := basketSvc.Init(ctx, cfg.WarmupPeriod, cfg.Reweightable); err != nil {
		return nil, err
	}
	if err := brokerSvc.Init(
		ctx, cfg.BatchAuctionLength, cfg.DutchAuctionLength,
	); err != nil {
		return nil, err
	}
	if err := backingSvc.Init(ctx, cfg.BackingConfig); err != nil {
		return nil, err
	}

	return &Engine{
		lock:        &sync.Mutex{},
		closeOnce:   &sync.Once{},
		repo:        repo,
		ledger:      l,
		venue:       venue,
		distributor: d,
		clock:       cfg.clock(),
		pubsub:      cfg.pubsubService(),
		protocol:    protocolSvc,
		registry:    registrySvc,
		basket:      basketSvc,
		broker:      brokerSvc,
		backing:     backingSvc,
		backstop:    backstopSvc,
		issued:      issuedSvc,
	}, nil
}

// Do runs fn holding the engine lock. Nested calls to Do deadlock, services
// must be used directly inside fn.
func (e *Engine) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	return fn(ctx)
}

func (e *Engine) Protocol() *protocol.Service {
	return e.protocol
}

func (e *Engine) Registry() *registry.Service {
	return e.registry
}

func (e *Engine) Basket() *basket.Service {
	return e.basket
}

func (e *Engine) Broker() *broker.Service {
	return e.broker
}

func (e *Engine) Backing() *backing.Service {
	return e.backing
}

func (e *Engine) BackstopTrader() *revenue.Service {
	return e.backstop
}

func (e *Engine) IssuedTrader() *revenue.Service {
	return e.issued
}

// RevenueTraders returns the backstop and the issued token traders.
func (e *Engine) RevenueTraders() []*revenue.Service {
	return []*revenue.Service{e.backstop, e.issued}
}

func (e *Engine) PubSub() *pubsub.Service {
	return e.pubsub
}

func (e *Engine) Ledger() ports.TokenLedger {
	return e.ledger
}

// Venue returns the batch auction venue the broker trades on.
func (e *Engine) Venue() *batchauction.Venue {
	return e.venue
}

func (e *Engine) Distributor() *distributor.Table {
	return e.distributor
}

func (e *Engine) Clock() ports.Clock {
	return e.clock
}

// Close releases the stores. Closing more than once is a no-op.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.pubsub.Close()
		e.repo.Close()
		log.Debug("engine closed")
	})
}

// SystemClock returns the wall clock, in unix seconds.
func SystemClock() ports.Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().Unix()
}
