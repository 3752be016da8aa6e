package pubsub

import (
	"errors"

	"github.com/tdex-network/basketd/internal/core/domain"
)

// ErrPubSubNotInitialized is returned when managing webhooks without a
// configured pubsub.
var ErrPubSubNotInitialized = errors.New("webhook manager is not initialized")

func tradePayload(trade domain.Trade) map[string]interface{} {
	return map[string]interface{}{
		"id":               trade.ID,
		"origin":           trade.Origin,
		"kind":             trade.Kind.String(),
		"status":           trade.Status.String(),
		"sell":             trade.Sell,
		"buy":              trade.Buy,
		"sell_amount":      trade.SellAmount.String(),
		"min_buy_amount":   trade.MinBuyAmount.String(),
		"worst_case_price": trade.WorstCasePrice.String(),
		"best_price":       trade.BestPrice.String(),
		"start_time":       trade.StartTime,
		"end_time":         trade.EndTime,
	}
}
