// Package staticsource is a price source publishing a fixed set of prices
// that can be changed at runtime.
package staticsource

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const Name = "static"

type source struct {
	clock    ports.Clock
	interval time.Duration

	lock   *sync.RWMutex
	prices map[string]fixed.Fix
	feeds  map[string]struct{}

	feedChan chan ports.PriceFeed
	quitChan chan struct{}
	once     *sync.Once
}

// Source is the static price source. Set changes the price of a feed.
type Source interface {
	ports.PriceSource
	Set(feed string, price fixed.Fix)
}

func NewSource(
	prices map[string]fixed.Fix, interval time.Duration, clock ports.Clock,
) (Source, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	p := make(map[string]fixed.Fix, len(prices))
	for k, v := range prices {
		p[k] = v
	}
	return &source{
		clock:    clock,
		interval: interval,
		lock:     &sync.RWMutex{},
		prices:   p,
		feeds:    make(map[string]struct{}),
		feedChan: make(chan ports.PriceFeed),
		quitChan: make(chan struct{}),
		once:     &sync.Once{},
	}, nil
}

func (s *source) Name() string {
	return Name
}

func (s *source) SubscribeFeeds(feeds []string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, f := range feeds {
		s.feeds[f] = struct{}{}
	}
	return nil
}

func (s *source) Set(feed string, price fixed.Fix) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.prices[feed] = price
}

// Start publishes the prices of the subscribed feeds at every interval and
// blocks until Stop is called.
func (s *source) Start() error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.feedChan)

	s.publish()
	for {
		select {
		case <-s.quitChan:
			return nil
		case <-ticker.C:
			s.publish()
		}
	}
}

func (s *source) Stop() {
	s.once.Do(func() { close(s.quitChan) })
}

func (s *source) FeedChan() chan ports.PriceFeed {
	return s.feedChan
}

func (s *source) publish() {
	s.lock.RLock()
	feeds := make([]ports.PriceFeed, 0, len(s.feeds))
	now := s.clock.Now()
	for f := range s.feeds {
		if price, ok := s.prices[f]; ok {
			feeds = append(feeds, ports.PriceFeed{Feed: f, Price: price, Timestamp: now})
		}
	}
	s.lock.RUnlock()

	for _, f := range feeds {
		select {
		case s.feedChan <- f:
		case <-s.quitChan:
			return
		}
	}
}

// ParsePrices parses a comma separated list of feed=price pairs.
func ParsePrices(str string) (map[string]fixed.Fix, error) {
	prices := make(map[string]fixed.Fix)
	str = strings.TrimSpace(str)
	if str == "" {
		return prices, nil
	}
	for _, pair := range strings.Split(str, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("invalid price pair %q", pair)
		}
		price, err := fixed.NewFromString(kv[1])
		if err != nil {
			return nil, fmt.Errorf("invalid price for feed %s: %w", kv[0], err)
		}
		prices[kv[0]] = price
	}
	return prices, nil
}
