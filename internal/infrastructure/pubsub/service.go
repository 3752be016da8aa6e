// Package pubsub delivers the engine events to webhooks. Subscriptions are
// persisted in badger and secured ones are notified with a JWT signed with
// their secret.
package pubsub

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/circuitbreaker"
	"golang.org/x/sync/errgroup"
)

const requestTimeout = 15 * time.Second

type service struct {
	store      *store
	httpClient *client
	cb         *gobreaker.CircuitBreaker
}

// NewService opens the subscription store in datadir. An empty datadir
// keeps subscriptions in memory.
func NewService(datadir string) (ports.SecurePubSub, error) {
	s, err := newStore(datadir)
	if err != nil {
		return nil, fmt.Errorf("failed to open pubsub store: %w", err)
	}

	return &service{
		store:      s,
		httpClient: newHTTPClient(requestTimeout),
		cb:         circuitbreaker.NewRatioBreaker("webhooks"),
	}, nil
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}
	if err := ws.store.add(*sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) Unsubscribe(_, id string) error {
	sub, err := ws.store.get(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("webhook not found")
	}
	return ws.store.remove(id)
}

func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	return ws.listSubscriptionsForTopic(topic).toPortable()
}

func (ws *service) Publish(topic string, message string) error {
	subs := ws.listSubscriptionsForTopic(topic)

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(sub, message) })
	}
	return eg.Wait()
}

func (ws *service) Close() error {
	return ws.store.close()
}

// listSubscriptionsForTopic returns the subscriptions of the topic plus the
// ones for any topic. The unspecified topic lists them all.
func (ws *service) listSubscriptionsForTopic(topic string) subscriptions {
	if topic == ports.UnspecifiedTopic {
		subs, _ := ws.store.all()
		return subs
	}

	subs, _ := ws.store.findByTopic(topic)
	if topic != ports.AnyTopic {
		subsForAnyTopic, _ := ws.store.findByTopic(ports.AnyTopic)
		subs = append(subs, subsForAnyTopic...)
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs
}

func (ws *service) doRequest(sub Subscription, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		return nil, ws.httpClient.deliver(context.Background(), sub, payload)
	})
	return err
}
