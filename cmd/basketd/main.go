package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/config"
	"github.com/tdex-network/basketd/internal/core/application"
	"github.com/tdex-network/basketd/internal/core/application/keeper"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/internal/infrastructure/oracle"
	krakensource "github.com/tdex-network/basketd/internal/infrastructure/oracle/kraken"
	staticsource "github.com/tdex-network/basketd/internal/infrastructure/oracle/static"
	"github.com/tdex-network/basketd/internal/infrastructure/pubsub"
	grpcinterface "github.com/tdex-network/basketd/internal/interfaces/grpc"
	"github.com/tdex-network/basketd/pkg/stats"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	datadir := config.GetDatadir()
	initLogger(datadir)

	if config.GetBool(config.EnableProfilerKey) {
		stop, err := startProfiler(datadir)
		if err != nil {
			log.WithError(err).Fatal("failed to start profiler")
		}
		defer stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	oracleSvc, err := newOracle()
	if err != nil {
		log.WithError(err).Fatal("failed to init oracle")
	}

	pubsubSvc, err := pubsub.NewService(datadir)
	if err != nil {
		log.WithError(err).Fatal("failed to init pubsub")
	}

	dbType := config.GetString(config.DBTypeKey)
	engine, err := application.NewEngine(&application.Config{
		DBType:             dbType,
		DBConfig:           filepath.Join(datadir, config.DbLocation),
		Oracle:             oracleSvc,
		SecurePubSub:       pubsubSvc,
		Governance:         config.GetString(config.GovernanceKey),
		IssuedToken:        config.GetString(config.IssuedTokenKey),
		BackstopToken:      config.GetString(config.BackstopTokenKey),
		WarmupPeriod:       config.GetInt64(config.WarmupPeriodKey),
		BackingConfig:      config.GetBackingConfig(),
		BatchAuctionLength: config.GetInt64(config.BatchAuctionLengthKey),
		DutchAuctionLength: config.GetInt64(config.DutchAuctionLengthKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init engine")
	}
	defer engine.Close()

	feeds, err := oracleFeeds(ctx, engine)
	if err != nil {
		log.WithError(err).Fatal("failed to list oracle feeds")
	}
	if err := oracleSvc.Start(feeds); err != nil {
		log.WithError(err).Fatal("failed to start oracle")
	}
	defer oracleSvc.Stop()

	apiSecret, err := config.GetAPISecret()
	if err != nil {
		log.WithError(err).Fatal("failed to load api secret")
	}

	svc, err := grpcinterface.NewService(grpcinterface.ServiceOpts{
		Address:     fmt.Sprintf(":%d", config.GetInt(config.OperatorListeningPortKey)),
		NoTLS:       config.GetBool(config.NoTLSKey),
		Datadir:     datadir,
		TLSLocation: config.TLSLocation,
		TLSKey:      config.GetString(config.TLSKeyKey),
		TLSCert:     config.GetString(config.TLSCertKey),
		APISecret:   apiSecret,
		WithMetrics: true,
		Engine:      engine,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init operator interface")
	}
	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start operator interface")
	}
	defer svc.Stop()

	if interval := config.GetInt(config.KeeperIntervalKey); interval > 0 {
		keeperSvc, err := keeper.NewService(
			engine, config.GetKeeperAuctionKind(),
			time.Duration(interval)*time.Second,
		)
		if err != nil {
			log.WithError(err).Fatal("failed to init keeper")
		}
		keeperSvc.Start()
		defer keeperSvc.Stop()
	} else {
		log.Info("keeper disabled")
	}

	if interval := config.GetInt(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(
			ctx, time.Duration(interval)*time.Second,
			filepath.Join(datadir, config.ProfilerLocation), sampler(engine),
		)
	}

	log.Info("basketd started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	<-sigChan

	log.Info("shutting down basketd")
}

func initLogger(datadir string) {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	logFile := config.GetString(config.LogFileKey)
	if logFile == "" {
		return
	}
	if !filepath.IsAbs(logFile) {
		logFile = filepath.Join(datadir, logFile)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}))
}

func newOracle() (*oracle.Service, error) {
	interval := time.Duration(config.GetInt(config.PriceFeedIntervalKey)) *
		time.Millisecond

	var (
		source ports.PriceSource
		err    error
	)
	switch config.GetString(config.OracleSourceKey) {
	case config.OracleSourceKraken:
		source, err = krakensource.NewSource(interval)
	default:
		source, err = staticsource.NewSource(
			config.GetStaticPrices(), interval, application.SystemClock(),
		)
	}
	if err != nil {
		return nil, err
	}

	return oracle.NewService(
		source, uint32(config.GetInt(config.OracleBreakerFailuresKey)),
	)
}

// oracleFeeds returns the configured feeds plus those of the registered
// assets.
func oracleFeeds(
	ctx context.Context, engine *application.Engine,
) ([]string, error) {
	feeds := config.GetOracleFeeds()
	seen := make(map[string]bool, len(feeds))
	for _, f := range feeds {
		seen[f] = true
	}

	err := engine.Do(ctx, func(ctx context.Context) error {
		assets, err := engine.Registry().Assets(ctx)
		if err != nil {
			return err
		}
		for _, a := range assets.List() {
			for _, f := range assetFeeds(a.Feed, a.Collateral) {
				if !seen[f] {
					seen[f] = true
					feeds = append(feeds, f)
				}
			}
		}
		return nil
	})
	return feeds, err
}

func assetFeeds(feed string, coll *domain.Collateral) []string {
	feeds := make([]string, 0, 3)
	if feed != "" {
		feeds = append(feeds, feed)
	}
	if coll != nil {
		if coll.TargetFeed != "" {
			feeds = append(feeds, coll.TargetFeed)
		}
		if coll.RateFeed != "" {
			feeds = append(feeds, coll.RateFeed)
		}
	}
	return feeds
}

func startProfiler(datadir string) (func(), error) {
	path := filepath.Join(datadir, config.ProfilerLocation, "cpu.pprof")
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}
	log.Infof("cpu profile written to %s", path)
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}
