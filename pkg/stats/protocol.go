package stats

import "github.com/prometheus/client_golang/prometheus"

// Protocol metrics, registered in init and served at /metrics by the
// operator interface.
var (
	basketStatus = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "basketd_basket_status",
		Help: "Status of the current basket (0 sound, 1 iffy, 2 disabled)",
	})
	basketNonce = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "basketd_basket_nonce",
		Help: "Nonce of the current basket",
	})
	basketsHeld = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "basketd_baskets_held",
		Help: "Baskets held by the backing manager, bottom estimate",
	})
	basketsNeeded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "basketd_baskets_needed",
		Help: "Baskets needed to back the issued token",
	})
	assetStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "basketd_asset_status",
		Help: "Status of every registered asset",
	}, []string{"erc20"})
	openTrades = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "basketd_open_trades",
		Help: "Open trades per origin",
	}, []string{"origin"})
	tradesSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basketd_trades_settled_total",
		Help: "Settled trades by kind",
	}, []string{"kind"})
	keeperSteps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basketd_keeper_steps_total",
		Help: "Keeper steps by name and outcome (ok|retry|failed)",
	}, []string{"step", "outcome"})
)

func init() {
	prometheus.MustRegister(
		basketStatus, basketNonce, basketsHeld, basketsNeeded, assetStatus,
		openTrades, tradesSettled, keeperSteps,
	)
}

// Snapshot is a reading of the protocol state.
type Snapshot struct {
	BasketStatus  int
	BasketNonce   uint64
	BasketsHeld   float64
	BasketsNeeded float64
	AssetStatus   map[string]int
	OpenTrades    map[string]int
}

// Observe updates the protocol gauges.
func Observe(s Snapshot) {
	basketStatus.Set(float64(s.BasketStatus))
	basketNonce.Set(float64(s.BasketNonce))
	basketsHeld.Set(s.BasketsHeld)
	basketsNeeded.Set(s.BasketsNeeded)

	assetStatus.Reset()
	for erc20, status := range s.AssetStatus {
		assetStatus.WithLabelValues(erc20).Set(float64(status))
	}
	openTrades.Reset()
	for origin, n := range s.OpenTrades {
		openTrades.WithLabelValues(origin).Set(float64(n))
	}
}

func IncTradesSettled(kind string) {
	tradesSettled.WithLabelValues(kind).Inc()
}

func IncKeeperStep(step, outcome string) {
	keeperSteps.WithLabelValues(step, outcome).Inc()
}
