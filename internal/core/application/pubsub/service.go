package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

const (
	EventBasketSet            = "BASKET_SET"
	EventPrimeBasketSet       = "PRIME_BASKET_SET"
	EventBackupConfigSet      = "BACKUP_CONFIG_SET"
	EventBasketStatusChanged  = "BASKET_STATUS_CHANGED"
	EventTradeStarted         = "TRADE_STARTED"
	EventTradeSettled         = "TRADE_SETTLED"
	EventBatchAuctionDisabled = "BATCH_AUCTION_DISABLED_SET"
	EventDutchAuctionDisabled = "DUTCH_AUCTION_DISABLED_SET"
	EventBasketsNeededChanged = "BASKETS_NEEDED_CHANGED"
)

var events = []string{
	EventBasketSet, EventPrimeBasketSet, EventBackupConfigSet,
	EventBasketStatusChanged, EventTradeStarted, EventTradeSettled,
	EventBatchAuctionDisabled, EventDutchAuctionDisabled,
	EventBasketsNeededChanged,
}

// Webhook is a subscription to one of the events, or to any.
type Webhook struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

// Service publishes the engine events to the subscribed webhooks. A Service
// without an underlying pubsub silently drops every event.
type Service struct {
	pubsub ports.SecurePubSub
}

func NewService(pubsub ports.SecurePubSub) *Service {
	return &Service{pubsub}
}

func (s *Service) AddWebhook(
	_ context.Context, event, endpoint, secret string,
) (string, error) {
	if s.pubsub == nil {
		return "", ErrPubSubNotInitialized
	}
	if !isValidEvent(event) {
		return "", fmt.Errorf("invalid webhook event type %s", event)
	}
	return s.pubsub.Subscribe(event, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	if s.pubsub == nil {
		return ErrPubSubNotInitialized
	}
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

func (s *Service) ListWebhooks(_ context.Context, event string) ([]Webhook, error) {
	if s.pubsub == nil {
		return nil, ErrPubSubNotInitialized
	}
	subs := s.pubsub.ListSubscriptionsForTopic(event)
	webhooks := make([]Webhook, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, Webhook{
			ID:        sub.Id(),
			Event:     sub.Topic(),
			Endpoint:  sub.NotifyAt(),
			IsSecured: sub.IsSecured(),
		})
	}
	return webhooks, nil
}

func (s *Service) PublishBasketSetEvent(basket domain.Basket) {
	refAmts := make([]string, 0, len(basket.RefAmts))
	for _, amt := range basket.RefAmts {
		refAmts = append(refAmts, amt.String())
	}
	s.publish(EventBasketSet, map[string]interface{}{
		"nonce":    basket.Nonce,
		"erc20s":   basket.ERC20s,
		"ref_amts": refAmts,
		"disabled": basket.Disabled,
	})
}

func (s *Service) PublishPrimeBasketSetEvent(basket domain.PrimeBasket) {
	entries := make([]map[string]string, 0, len(basket.Entries))
	for _, e := range basket.Entries {
		entries = append(entries, map[string]string{
			"erc20":       e.ERC20,
			"target_name": e.TargetName,
			"target_amt":  e.TargetAmt.String(),
		})
	}
	s.publish(EventPrimeBasketSet, map[string]interface{}{
		"entries": entries,
	})
}

func (s *Service) PublishBackupConfigSetEvent(cfg domain.BackupConfig) {
	s.publish(EventBackupConfigSet, map[string]interface{}{
		"target_name": cfg.TargetName,
		"max":         cfg.Max,
		"erc20s":      cfg.ERC20s,
	})
}

func (s *Service) PublishBasketStatusChangedEvent(
	from, to domain.CollateralStatus,
) {
	s.publish(EventBasketStatusChanged, map[string]interface{}{
		"from": from.String(),
		"to":   to.String(),
	})
}

func (s *Service) PublishTradeStartedEvent(trade domain.Trade) {
	s.publish(EventTradeStarted, tradePayload(trade))
}

func (s *Service) PublishTradeSettledEvent(trade domain.Trade) {
	payload := tradePayload(trade)
	payload["sold_amount"] = trade.SoldAmount.String()
	payload["bought_amount"] = trade.BoughtAmount.String()
	payload["settlement_timestamp"] = trade.SettledAt
	payload["settlement_date"] = time.Unix(trade.SettledAt, 0).Format(time.RFC3339)
	s.publish(EventTradeSettled, payload)
}

func (s *Service) PublishBatchAuctionDisabledEvent(disabled bool) {
	s.publish(EventBatchAuctionDisabled, map[string]interface{}{
		"disabled": disabled,
	})
}

func (s *Service) PublishDutchAuctionDisabledEvent(erc20 string, disabled bool) {
	s.publish(EventDutchAuctionDisabled, map[string]interface{}{
		"erc20":    erc20,
		"disabled": disabled,
	})
}

func (s *Service) PublishBasketsNeededChangedEvent(from, to fixed.Fix) {
	s.publish(EventBasketsNeededChanged, map[string]interface{}{
		"from": from.String(),
		"to":   to.String(),
	})
}

func (s *Service) Close() {
	if s.pubsub == nil {
		return
	}
	if err := s.pubsub.Close(); err != nil {
		log.WithError(err).Warn("error while closing pubsub store")
	}
}

func (s *Service) publish(event string, payload map[string]interface{}) {
	if s.pubsub == nil {
		return
	}

	payload["event"] = event
	message, _ := json.Marshal(payload)
	go func() {
		if err := s.pubsub.Publish(event, string(message)); err != nil {
			log.WithError(err).Warnf("error while publishing %s event", event)
		}
	}()
}

func isValidEvent(event string) bool {
	if event == ports.AnyTopic {
		return true
	}
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}
