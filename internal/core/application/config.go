package application

import (
	"fmt"

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
	"github.com/tdex-network/basketd/internal/infrastructure/ledger"
	dbbadger "github.com/tdex-network/basketd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/basketd/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

// Config collects what's needed to build the engine. Services are built
// lazily and only once.
type Config struct {
	DBType   string
	DBConfig interface{}

	Oracle       ports.Oracle
	SecurePubSub ports.SecurePubSub
	Clock        ports.Clock

	Governance    string
	IssuedToken   string
	BackstopToken string

	WarmupPeriod       int64
	Reweightable       bool
	BackingConfig      domain.BackingConfig
	BatchAuctionLength int64
	DutchAuctionLength int64

	// Revenue destinations, defaulting to a single destination per token.
	Destinations []distributor.Destination

	repo        ports.RepoManager
	ledger      *ledger.Ledger
	venue       *batchauction.Venue
	distributor *distributor.Table
	pubsub      *pubsub.Service
	protocol    *protocol.Service
	basket      *basket.Service
	registry    *registry.Service
	broker      *broker.Service
	backing     *backing.Service
	backstop    *revenue.Service
	issued      *revenue.Service
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("unsupported db type %s", c.DBType)
	}
	if c.Oracle == nil {
		return fmt.Errorf("missing oracle")
	}
	if c.Governance == "" {
		return fmt.Errorf("missing governance")
	}
	if c.IssuedToken == "" || c.BackstopToken == "" {
		return fmt.Errorf("missing protocol tokens")
	}
	if c.IssuedToken == c.BackstopToken {
		return fmt.Errorf("issued and backstop tokens must be different")
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	return nil
}

func (c *Config) clock() ports.Clock {
	if c.Clock == nil {
		c.Clock = systemClock{}
	}
	return c.Clock
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		default:
			return nil, fmt.Errorf("unsupported db type %s", c.DBType)
		}
	}
	return c.repo, nil
}

func (c *Config) tokenLedger() (*ledger.Ledger, error) {
	if c.ledger == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		c.ledger = ledger.New(repo.BalanceRepository())
	}
	return c.ledger, nil
}

func (c *Config) batchAuctionVenue() (*batchauction.Venue, error) {
	if c.venue == nil {
		l, err := c.tokenLedger()
		if err != nil {
			return nil, err
		}
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		c.venue = batchauction.NewVenue(l, c.clock(), repo.AuctionRepository())
	}
	return c.venue, nil
}

func (c *Config) revenueDistributor() (*distributor.Table, error) {
	if c.distributor == nil {
		l, err := c.tokenLedger()
		if err != nil {
			return nil, err
		}
		destinations := c.Destinations
		if len(destinations) == 0 {
			destinations = []distributor.Destination{
				{
					Account:     distributor.FurnaceAccount,
					IssuedShare: fixed.One,
				},
				{
					Account:       distributor.StakersAccount,
					BackstopShare: fixed.One,
				},
			}
		}
		d, err := distributor.NewTable(
			l, c.IssuedToken, c.BackstopToken, destinations,
		)
		if err != nil {
			return nil, err
		}
		c.distributor = d
	}
	return c.distributor, nil
}

func (c *Config) pubsubService() *pubsub.Service {
	if c.pubsub == nil {
		c.pubsub = pubsub.NewService(c.SecurePubSub)
	}
	return c.pubsub
}

func (c *Config) protocolService() (*protocol.Service, error) {
	if c.protocol == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		svc, err := protocol.NewService(repo, c.clock())
		if err != nil {
			return nil, err
		}
		c.protocol = svc
	}
	return c.protocol, nil
}

func (c *Config) basketService() (*basket.Service, error) {
	if c.basket == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		l, err := c.tokenLedger()
		if err != nil {
			return nil, err
		}
		protocolSvc, err := c.protocolService()
		if err != nil {
			return nil, err
		}
		svc, err := basket.NewService(
			repo, l, protocolSvc, c.pubsubService(), c.clock(),
		)
		if err != nil {
			return nil, err
		}
		c.basket = svc
	}
	return c.basket, nil
}

func (c *Config) registryService() (*registry.Service, error) {
	if c.registry == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		protocolSvc, err := c.protocolService()
		if err != nil {
			return nil, err
		}
		basketSvc, err := c.basketService()
		if err != nil {
			return nil, err
		}
		svc, err := registry.NewService(
			repo, c.Oracle, protocolSvc, basketSvc, c.clock(),
		)
		if err != nil {
			return nil, err
		}
		c.registry = svc
	}
	return c.registry, nil
}

func (c *Config) brokerService() (*broker.Service, error) {
	if c.broker == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		l, err := c.tokenLedger()
		if err != nil {
			return nil, err
		}
		venue, err := c.batchAuctionVenue()
		if err != nil {
			return nil, err
		}
		protocolSvc, err := c.protocolService()
		if err != nil {
			return nil, err
		}
		svc, err := broker.NewService(
			repo, l, venue, protocolSvc, c.pubsubService(), c.clock(),
			[]string{
				domain.BackingManagerAccount,
				domain.BackstopTraderAccount,
				domain.IssuedTraderAccount,
			},
		)
		if err != nil {
			return nil, err
		}
		c.broker = svc
	}
	return c.broker, nil
}

func (c *Config) backingService() (*backing.Service, error) {
	if c.backing == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		l, err := c.tokenLedger()
		if err != nil {
			return nil, err
		}
		d, err := c.revenueDistributor()
		if err != nil {
			return nil, err
		}
		protocolSvc, err := c.protocolService()
		if err != nil {
			return nil, err
		}
		basketSvc, err := c.basketService()
		if err != nil {
			return nil, err
		}
		brokerSvc, err := c.brokerService()
		if err != nil {
			return nil, err
		}
		svc, err := backing.NewService(
			repo, l, d, protocolSvc, basketSvc, brokerSvc, c.pubsubService(),
			c.clock(),
		)
		if err != nil {
			return nil, err
		}
		c.backing = svc
	}
	return c.backing, nil
}

func (c *Config) revenueTrader(account, tokenToBuy string) (*revenue.Service, error) {
	repo, err := c.repoManager()
	if err != nil {
		return nil, err
	}
	l, err := c.tokenLedger()
	if err != nil {
		return nil, err
	}
	d, err := c.revenueDistributor()
	if err != nil {
		return nil, err
	}
	protocolSvc, err := c.protocolService()
	if err != nil {
		return nil, err
	}
	basketSvc, err := c.basketService()
	if err != nil {
		return nil, err
	}
	brokerSvc, err := c.brokerService()
	if err != nil {
		return nil, err
	}
	return revenue.NewService(
		account, tokenToBuy, repo, l, d, protocolSvc, basketSvc, brokerSvc,
		c.clock(),
	)
}

func (c *Config) backstopTrader() (*revenue.Service, error) {
	if c.backstop == nil {
		svc, err := c.revenueTrader(domain.BackstopTraderAccount, c.BackstopToken)
		if err != nil {
			return nil, err
		}
		c.backstop = svc
	}
	return c.backstop, nil
}

func (c *Config) issuedTrader() (*revenue.Service, error) {
	if c.issued == nil {
		svc, err := c.revenueTrader(domain.IssuedTraderAccount, c.IssuedToken)
		if err != nil {
			return nil, err
		}
		c.issued = svc
	}
	return c.issued, nil
}
