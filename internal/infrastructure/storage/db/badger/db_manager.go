package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

type repoManager struct {
	stores []*badgerhold.Store

	assetRepository   domain.AssetRepository
	basketRepository  domain.BasketRepository
	tradeRepository   domain.TradeRepository
	configRepository  domain.ConfigRepository
	balanceRepository domain.BalanceRepository
	auctionRepository domain.AuctionRepository
}

// NewRepoManager opens (or creates if not exists) the badger stores on disk.
// An empty datadir makes every store in-memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var mainDir, balanceDir string
	if len(baseDbDir) > 0 {
		mainDir = filepath.Join(baseDbDir, "main")
		balanceDir = filepath.Join(baseDbDir, "balances")
	}

	mainDb, err := createDb(mainDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening main db: %w", err)
	}
	balanceDb, err := createDb(balanceDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening balance db: %w", err)
	}

	return &repoManager{
		stores:            []*badgerhold.Store{mainDb, balanceDb},
		assetRepository:   NewAssetRepositoryImpl(mainDb),
		basketRepository:  NewBasketRepositoryImpl(mainDb),
		tradeRepository:   NewTradeRepositoryImpl(mainDb),
		configRepository:  NewConfigRepositoryImpl(mainDb),
		balanceRepository: NewBalanceRepositoryImpl(balanceDb),
		auctionRepository: NewAuctionRepositoryImpl(mainDb),
	}, nil
}

func (r *repoManager) AssetRepository() domain.AssetRepository {
	return r.assetRepository
}

func (r *repoManager) BasketRepository() domain.BasketRepository {
	return r.basketRepository
}

func (r *repoManager) TradeRepository() domain.TradeRepository {
	return r.tradeRepository
}

func (r *repoManager) ConfigRepository() domain.ConfigRepository {
	return r.configRepository
}

func (r *repoManager) BalanceRepository() domain.BalanceRepository {
	return r.balanceRepository
}

func (r *repoManager) AuctionRepository() domain.AuctionRepository {
	return r.auctionRepository
}

func (r *repoManager) Close() {
	for _, store := range r.stores {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("error while closing db")
		}
	}
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
