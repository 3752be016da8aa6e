package main

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/pkg/stats"
)

// sampler reads the protocol state into the prometheus gauges.
func sampler(engine *application.Engine) func() {
	return func() {
		var snapshot stats.Snapshot
		if err := engine.Do(
			context.Background(), func(ctx context.Context) error {
				s, err := takeSnapshot(ctx, engine)
				snapshot = s
				return err
			},
		); err != nil {
			log.WithError(err).Warn("stats: failed to sample protocol state")
			return
		}
		stats.Observe(snapshot)
	}
}

func takeSnapshot(
	ctx context.Context, engine *application.Engine,
) (stats.Snapshot, error) {
	s := stats.Snapshot{
		AssetStatus: make(map[string]int),
		OpenTrades:  make(map[string]int),
	}

	status, err := engine.Basket().Status(ctx)
	if err != nil {
		return s, err
	}
	nonce, err := engine.Basket().Nonce(ctx)
	if err != nil {
		return s, err
	}
	held, err := engine.Basket().BasketsHeldBy(ctx, domain.BackingManagerAccount)
	if err != nil {
		return s, err
	}
	needed, err := engine.Protocol().BasketsNeeded(ctx)
	if err != nil {
		return s, err
	}
	s.BasketStatus = int(status)
	s.BasketNonce = nonce
	s.BasketsHeld = held.Bottom.Float64()
	s.BasketsNeeded = needed.Float64()

	assets, err := engine.Registry().Assets(ctx)
	if err != nil {
		return s, err
	}
	now := engine.Clock().Now()
	for _, a := range assets.List() {
		s.AssetStatus[a.ERC20] = int(a.Status(now))
	}

	trades, err := engine.Broker().OpenTrades(ctx, "")
	if err != nil {
		return s, err
	}
	for _, origin := range []string{
		domain.BackingManagerAccount,
		domain.BackstopTraderAccount,
		domain.IssuedTraderAccount,
	} {
		s.OpenTrades[origin] = 0
	}
	for _, t := range trades {
		s.OpenTrades[t.Origin]++
	}
	return s, nil
}
