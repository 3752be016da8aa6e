// Package oracle implements ports.Oracle by caching the latest readings
// streamed by a price source. Reads of every feed go through their own
// circuit breaker so that a feed that keeps failing is cut off until the
// breaker half-opens again.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/circuitbreaker"
)

var (
	ErrFeedNotFound = errors.New("price feed not found")
	ErrInvalidPrice = errors.New("price feed reported a zero price")
	ErrNotStarted   = errors.New("oracle not started")
)

// DefaultBreakerFailures ...
const DefaultBreakerFailures = 3

type Service struct {
	source          ports.PriceSource
	breakerFailures uint32

	lock     *sync.RWMutex
	latest   map[string]ports.PriceFeed
	breakers map[string]*gobreaker.CircuitBreaker
	feeds    []string

	done chan struct{}
}

func NewService(source ports.PriceSource, breakerFailures uint32) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("missing price source")
	}
	if breakerFailures == 0 {
		breakerFailures = DefaultBreakerFailures
	}
	return &Service{
		source:          source,
		breakerFailures: breakerFailures,
		lock:            &sync.RWMutex{},
		latest:          make(map[string]ports.PriceFeed),
		breakers:        make(map[string]*gobreaker.CircuitBreaker),
	}, nil
}

// Start subscribes the given feeds and begins consuming the source.
func (s *Service) Start(feeds []string) error {
	if err := s.source.SubscribeFeeds(feeds); err != nil {
		return err
	}
	s.lock.Lock()
	s.feeds = append([]string{}, feeds...)
	s.lock.Unlock()

	s.done = make(chan struct{})
	feedChan := s.source.FeedChan()
	go func() {
		defer close(s.done)
		for feed := range feedChan {
			s.write(feed)
		}
	}()

	go func() {
		if err := s.source.Start(); err != nil {
			log.WithError(err).Warnf("oracle: %s source stopped", s.source.Name())
		}
	}()

	log.Infof("oracle: %s source started for %d feeds", s.source.Name(), len(feeds))
	return nil
}

func (s *Service) Stop() {
	s.source.Stop()
	if s.done != nil {
		<-s.done
	}
	log.Debugf("oracle: %s source stopped", s.source.Name())
}

// Price returns the latest reading of the feed. Missing and zero readings
// count as failures of the feed breaker.
func (s *Service) Price(_ context.Context, feed string) (ports.PriceFeed, error) {
	cb := s.breaker(feed)
	res, err := cb.Execute(func() (interface{}, error) {
		s.lock.RLock()
		defer s.lock.RUnlock()

		pf, ok := s.latest[feed]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, feed)
		}
		if pf.Price.IsZero() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, feed)
		}
		return pf, nil
	})
	if err != nil {
		return ports.PriceFeed{}, err
	}
	return res.(ports.PriceFeed), nil
}

// Feeds returns the subscribed feeds.
func (s *Service) Feeds() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]string{}, s.feeds...)
}

// BreakerState returns the state of the breaker of the given feed.
func (s *Service) BreakerState(feed string) gobreaker.State {
	return s.breaker(feed).State()
}

func (s *Service) write(feed ports.PriceFeed) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if prev, ok := s.latest[feed.Feed]; ok && prev.Timestamp > feed.Timestamp {
		return
	}
	s.latest[feed.Feed] = feed
}

func (s *Service) breaker(feed string) *gobreaker.CircuitBreaker {
	s.lock.RLock()
	cb, ok := s.breakers[feed]
	s.lock.RUnlock()
	if ok {
		return cb
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if cb, ok := s.breakers[feed]; ok {
		return cb
	}
	cb = circuitbreaker.NewConsecutiveBreaker(
		feed, s.breakerFailures,
		func(name string, from, to gobreaker.State) {
			log.Warnf("oracle: feed %s breaker went from %s to %s", name, from, to)
		},
	)
	s.breakers[feed] = cb
	return cb
}
