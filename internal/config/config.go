package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/basketd/internal/core/application"
	"github.com/tdex-network/basketd/internal/core/domain"
	staticsource "github.com/tdex-network/basketd/internal/infrastructure/oracle/static"
	"github.com/tdex-network/basketd/pkg/fixed"
	"github.com/thanhpk/randstr"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// LogFileKey is the optional path of a rotated log file, relative to the datadir
	LogFileKey = "LOG_FILE"
	// OperatorListeningPortKey is the port where the gRPC Operator interface will listen on
	OperatorListeningPortKey = "OPERATOR_LISTENING_PORT"
	// TLSKeyKey is the path of the the TLS key for the Operator interface
	TLSKeyKey = "TLS_KEY"
	// TLSCertKey is the path of the the TLS certificate for the Operator interface
	TLSCertKey = "TLS_CERT"
	// NoTLSKey is used to start the daemon without TLS, even if key and cert are given
	NoTLSKey = "NO_TLS"
	// APISecretKey is the secret used to verify the JWTs of governance calls.
	// If missing one is generated and stored in the datadir
	APISecretKey = "API_SECRET"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// KeeperIntervalKey is the duration in seconds between two keeper rounds, 0 disables the keeper
	KeeperIntervalKey = "KEEPER_INTERVAL"
	// KeeperAuctionKindKey is the auction kind used by the keeper (dutch|batch)
	KeeperAuctionKindKey = "KEEPER_AUCTION_KIND"
	// OracleSourceKey is the price source of the oracle (static|kraken)
	OracleSourceKey = "ORACLE_SOURCE"
	// StaticPricesKey is the comma separated list of feed=price for the static source
	StaticPricesKey = "STATIC_PRICES"
	// OracleFeedsKey is the comma separated list of feeds to subscribe on top
	// of those of the registered assets
	OracleFeedsKey = "ORACLE_FEEDS"
	// OracleBreakerFailuresKey is the number of consecutive failures tripping a feed breaker
	OracleBreakerFailuresKey = "ORACLE_BREAKER_FAILURES"
	// PriceFeedIntervalKey is the interval in milliseconds between price updates
	PriceFeedIntervalKey = "PRICE_FEED_INTERVAL"
	// GovernanceKey is the identity of the governance role
	GovernanceKey = "GOVERNANCE"
	// IssuedTokenKey is the token backed by the basket
	IssuedTokenKey = "ISSUED_TOKEN"
	// BackstopTokenKey is the token of the stakers backstopping the protocol
	BackstopTokenKey = "BACKSTOP_TOKEN"
	// WarmupPeriodKey is the seconds the basket must be SOUND before trading
	WarmupPeriodKey = "WARMUP_PERIOD"
	// TradingDelayKey is the seconds after a basket switch before rebalancing
	TradingDelayKey = "TRADING_DELAY"
	// MaxTradeSlippageKey is the max slippage accepted by trades, as a ratio
	MaxTradeSlippageKey = "MAX_TRADE_SLIPPAGE"
	// BackingBufferKey is the extra collateral held above the needed one, as a ratio
	BackingBufferKey = "BACKING_BUFFER"
	// MinTradeVolumeKey is the min value of a trade, in unit of account
	MinTradeVolumeKey = "MIN_TRADE_VOLUME"
	// BatchAuctionLengthKey is the duration in seconds of batch auctions
	BatchAuctionLengthKey = "BATCH_AUCTION_LENGTH"
	// DutchAuctionLengthKey is the duration in seconds of dutch auctions
	DutchAuctionLengthKey = "DUTCH_AUCTION_LENGTH"
	// StatsIntervalKey defines interval for printing basic statistics
	StatsIntervalKey = "STATS_INTERVAL"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"

	DbLocation       = "db"
	TLSLocation      = "tls"
	ProfilerLocation = "stats"
	APISecretFile    = "api_secret"

	OracleSourceStatic = "static"
	OracleSourceKraken = "kraken"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("basketd", false)

// InitConfig loads the optional .env file of the working directory and
// then reads the BASKET_ prefixed environment.
func InitConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to load .env file")
	}

	vip = viper.New()
	vip.SetEnvPrefix("BASKET")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(OperatorListeningPortKey, 9000)
	vip.SetDefault(NoTLSKey, false)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(KeeperIntervalKey, 30)
	vip.SetDefault(KeeperAuctionKindKey, domain.DutchAuction.String())
	vip.SetDefault(OracleSourceKey, OracleSourceStatic)
	vip.SetDefault(OracleBreakerFailuresKey, 3)
	vip.SetDefault(PriceFeedIntervalKey, 1000)
	vip.SetDefault(GovernanceKey, "governance")
	vip.SetDefault(IssuedTokenKey, "ISSUED")
	vip.SetDefault(BackstopTokenKey, "BACKSTOP")
	vip.SetDefault(WarmupPeriodKey, 900)
	vip.SetDefault(TradingDelayKey, 0)
	vip.SetDefault(MaxTradeSlippageKey, "0.01")
	vip.SetDefault(BackingBufferKey, "0.0001")
	vip.SetDefault(MinTradeVolumeKey, "1000")
	vip.SetDefault(BatchAuctionLengthKey, 900)
	vip.SetDefault(DutchAuctionLengthKey, 1800)
	vip.SetDefault(StatsIntervalKey, 600)
	vip.SetDefault(EnableProfilerKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetInt64(key string) int64 {
	return vip.GetInt64(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetFixed returns the value of key as a fixed point number. Values are
// validated at init.
func GetFixed(key string) fixed.Fix {
	f, _ := fixed.NewFromString(GetString(key))
	return f
}

func GetStaticPrices() map[string]fixed.Fix {
	prices, _ := staticsource.ParsePrices(GetString(StaticPricesKey))
	return prices
}

// GetOracleFeeds returns the configured feeds along with those priced by the
// static source.
func GetOracleFeeds() []string {
	feeds := make([]string, 0)
	seen := make(map[string]bool)
	add := func(feed string) {
		feed = strings.TrimSpace(feed)
		if feed == "" || seen[feed] {
			return
		}
		seen[feed] = true
		feeds = append(feeds, feed)
	}
	for _, feed := range strings.Split(GetString(OracleFeedsKey), ",") {
		add(feed)
	}
	if GetString(OracleSourceKey) == OracleSourceStatic {
		for feed := range GetStaticPrices() {
			add(feed)
		}
	}
	sort.Strings(feeds)
	return feeds
}

func GetKeeperAuctionKind() domain.TradeKind {
	kind, _ := domain.ParseTradeKind(GetString(KeeperAuctionKindKey))
	return kind
}

// GetBackingConfig returns the initial config of the backing manager.
func GetBackingConfig() domain.BackingConfig {
	return domain.BackingConfig{
		TradingDelay:     GetInt64(TradingDelayKey),
		MaxTradeSlippage: GetFixed(MaxTradeSlippageKey),
		BackingBuffer:    GetFixed(BackingBufferKey),
		MinTradeVolume:   GetFixed(MinTradeVolumeKey),
	}
}

// GetAPISecret returns the configured api secret, or the one stored in the
// datadir, creating it the first time.
func GetAPISecret() (string, error) {
	if secret := GetString(APISecretKey); secret != "" {
		return secret, nil
	}

	path := filepath.Join(GetDatadir(), APISecretFile)
	buf, err := os.ReadFile(path)
	if err == nil {
		return strings.TrimSpace(string(buf)), nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	secret := randstr.Hex(32)
	if err := os.WriteFile(path, []byte(secret), 0600); err != nil {
		return "", err
	}
	log.Infof("generated new api secret in %s", path)
	return secret, nil
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	tlsKey, tlsCert := GetString(TLSKeyKey), GetString(TLSCertKey)
	if (tlsKey == "" && tlsCert != "") || (tlsKey != "" && tlsCert == "") {
		return fmt.Errorf(
			"TLS for Operator interface requires both key and certificate when enabled",
		)
	}

	if _, ok := application.SupportedDBType[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf("unsupported db type %s", GetString(DBTypeKey))
	}

	if _, err := domain.ParseTradeKind(GetString(KeeperAuctionKindKey)); err != nil {
		return err
	}
	if GetInt(KeeperIntervalKey) < 0 {
		return fmt.Errorf("%s must not be negative", KeeperIntervalKey)
	}

	switch GetString(OracleSourceKey) {
	case OracleSourceStatic:
		if _, err := staticsource.ParsePrices(GetString(StaticPricesKey)); err != nil {
			return err
		}
	case OracleSourceKraken:
	default:
		return fmt.Errorf("unsupported oracle source %s", GetString(OracleSourceKey))
	}
	if GetInt(PriceFeedIntervalKey) <= 0 {
		return fmt.Errorf("%s must be positive", PriceFeedIntervalKey)
	}

	for _, key := range []string{
		GovernanceKey, IssuedTokenKey, BackstopTokenKey,
	} {
		if GetString(key) == "" {
			return fmt.Errorf("missing %s", key)
		}
	}
	if GetString(IssuedTokenKey) == GetString(BackstopTokenKey) {
		return fmt.Errorf("%s and %s must be different", IssuedTokenKey, BackstopTokenKey)
	}

	for _, key := range []string{
		MaxTradeSlippageKey, BackingBufferKey, MinTradeVolumeKey,
	} {
		if _, err := fixed.NewFromString(GetString(key)); err != nil {
			return fmt.Errorf("invalid %s: %s", key, err)
		}
	}
	if _, err := domain.NewBackingConfig(
		GetInt64(TradingDelayKey), GetFixed(MaxTradeSlippageKey),
		GetFixed(BackingBufferKey), GetFixed(MinTradeVolumeKey),
	); err != nil {
		return err
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}

	if GetBool(EnableProfilerKey) || GetInt(StatsIntervalKey) > 0 {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
