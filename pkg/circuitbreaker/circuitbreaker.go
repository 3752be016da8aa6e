package circuitbreaker

import "github.com/sony/gobreaker"

var (
	// MinRequests is the number of requests a ratio breaker waits for
	// before it can trip.
	MinRequests uint32 = 10
	// FailingRatio trips a ratio breaker once reached.
	FailingRatio = 0.6
)

// NewRatioBreaker returns a named breaker that trips when more than
// MinRequests were made and at least FailingRatio of them failed.
func NewRatioBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests <= MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= FailingRatio
		},
	})
}

// NewConsecutiveBreaker returns a named breaker that trips after the given
// number of consecutive failures. onChange, if not nil, is notified of every
// state transition.
func NewConsecutiveBreaker(
	name string, maxFailures uint32,
	onChange func(name string, from, to gobreaker.State),
) *gobreaker.CircuitBreaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: onChange,
	})
}
