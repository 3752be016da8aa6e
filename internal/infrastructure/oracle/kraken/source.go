// Package krakensource streams ticker prices from the kraken websocket API.
// Feed names are kraken pairs, like XBT/USD.
package krakensource

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const (
	Name = "kraken"

	// WebSocketURL is the base url to open a connection with kraken.
	WebSocketURL = "ws.kraken.com"
)

type source struct {
	conn        *websocket.Conn
	writeTicker *time.Ticker
	lock        *sync.RWMutex
	chLock      *sync.Mutex

	feeds        []string
	latestByFeed map[string]ports.PriceFeed
	feedChan     chan ports.PriceFeed
	quitChan     chan struct{}
	dial         func(pairs []string) (*websocket.Conn, error)
}

// NewSource returns a kraken source writing the latest prices to the feed
// channel every interval.
func NewSource(interval time.Duration) (ports.PriceSource, error) {
	return newSource(interval, connectAndSubscribe)
}

func newSource(
	interval time.Duration, dial func([]string) (*websocket.Conn, error),
) (*source, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	return &source{
		writeTicker:  time.NewTicker(interval),
		lock:         &sync.RWMutex{},
		chLock:       &sync.Mutex{},
		latestByFeed: make(map[string]ports.PriceFeed),
		feedChan:     make(chan ports.PriceFeed),
		quitChan:     make(chan struct{}, 1),
		dial:         dial,
	}, nil
}

func (s *source) Name() string {
	return Name
}

func (s *source) SubscribeFeeds(feeds []string) error {
	conn, err := s.dial(feeds)
	if err != nil {
		return err
	}

	s.conn = conn
	s.feeds = append([]string{}, feeds...)
	return nil
}

func (s *source) Start() error {
	mustReconnect, err := s.start()
	for mustReconnect {
		log.WithError(err).Warn("kraken: connection dropped unexpectedly, reconnecting")

		var conn *websocket.Conn
		conn, err = s.dial(s.feeds)
		if err != nil {
			return err
		}
		s.conn = conn

		log.Debug("kraken: connection re-established")
		mustReconnect, err = s.start()
	}

	return err
}

func (s *source) Stop() {
	s.quitChan <- struct{}{}
}

func (s *source) FeedChan() chan ports.PriceFeed {
	return s.feedChan
}

func (s *source) start() (mustReconnect bool, err error) {
	// ReadMessage may panic on an unexpected disconnection instead of
	// returning an error, both cases trigger a reconnection.
	defer func() {
		if rec := recover(); rec != nil {
			mustReconnect = true
			err = fmt.Errorf("%v", rec)
		}
	}()

	go func() {
		for range s.writeTicker.C {
			s.writeToFeedChan()
		}
	}()

	for {
		select {
		case <-s.quitChan:
			s.writeTicker.Stop()
			s.closeChannels()
			return false, s.conn.Close()
		default:
			_, message, err := s.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				) {
					panic(err)
				}
			}

			feed, ok := parseFeed(message, time.Now().Unix())
			if !ok {
				continue
			}
			s.writePriceFeed(feed)
		}
	}
}

func (s *source) writePriceFeed(feed ports.PriceFeed) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.latestByFeed[feed.Feed] = feed
}

func (s *source) writeToFeedChan() {
	s.chLock.Lock()
	defer s.chLock.Unlock()

	s.lock.RLock()
	feeds := make([]ports.PriceFeed, 0, len(s.latestByFeed))
	for _, f := range s.latestByFeed {
		feeds = append(feeds, f)
	}
	s.lock.RUnlock()

	for _, f := range feeds {
		s.feedChan <- f
	}
}

func (s *source) closeChannels() {
	s.chLock.Lock()
	defer s.chLock.Unlock()

	close(s.feedChan)
	close(s.quitChan)
}

// parseFeed extracts the last trade price from a ticker message, shaped as
// [channelID, {"c": [price, volume], ...}, "ticker", pair].
func parseFeed(msg []byte, now int64) (ports.PriceFeed, bool) {
	var i []interface{}
	if err := json.Unmarshal(msg, &i); err != nil {
		return ports.PriceFeed{}, false
	}
	if len(i) != 4 {
		return ports.PriceFeed{}, false
	}

	pair, ok := i[3].(string)
	if !ok {
		return ports.PriceFeed{}, false
	}
	ticker, ok := i[1].(map[string]interface{})
	if !ok {
		return ports.PriceFeed{}, false
	}
	last, ok := ticker["c"].([]interface{})
	if !ok || len(last) < 1 {
		return ports.PriceFeed{}, false
	}
	priceStr, ok := last[0].(string)
	if !ok {
		return ports.PriceFeed{}, false
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil || !price.IsPositive() {
		return ports.PriceFeed{}, false
	}

	return ports.PriceFeed{
		Feed:      pair,
		Price:     fixed.FromDecimal(price, fixed.Floor),
		Timestamp: now,
	}, true
}

func connectAndSubscribe(pairs []string) (*websocket.Conn, error) {
	url := fmt.Sprintf("wss://%s", WebSocketURL)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	msg := map[string]interface{}{
		"event": "subscribe",
		"pair":  pairs,
		"subscription": map[string]string{
			"name": "ticker",
		},
	}

	buf, _ := json.Marshal(msg)
	if err := conn.WriteMessage(websocket.TextMessage, buf); err != nil {
		return nil, fmt.Errorf("cannot subscribe to given pairs: %s", err)
	}

	return conn, nil
}
