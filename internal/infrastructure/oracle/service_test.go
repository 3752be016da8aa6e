package oracle_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/infrastructure/oracle"
	staticsource "github.com/tdex-network/basketd/internal/infrastructure/oracle/static"
	"github.com/tdex-network/basketd/pkg/fixed"
)

type clock struct {
	now atomic.Int64
}

func (c *clock) Now() int64 {
	return c.now.Load()
}

func TestService(t *testing.T) {
	t.Parallel()

	_, err := oracle.NewService(nil, 0)
	require.Error(t, err)

	c := &clock{}
	c.now.Store(1700000000)
	src, err := staticsource.NewSource(map[string]fixed.Fix{
		"USDC": fixed.One,
		"DAI":  fixed.Zero,
	}, 10*time.Millisecond, c)
	require.NoError(t, err)

	svc, err := oracle.NewService(src, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Start([]string{"USDC", "DAI"}))
	defer svc.Stop()

	require.Equal(t, []string{"USDC", "DAI"}, svc.Feeds())

	ctx := context.Background()
	require.Eventually(t, func() bool {
		_, err := svc.Price(ctx, "USDC")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	feed, err := svc.Price(ctx, "USDC")
	require.NoError(t, err)
	require.Equal(t, "USDC", feed.Feed)
	require.True(t, feed.Price.Eq(fixed.One))
	require.Equal(t, int64(1700000000), feed.Timestamp)

	t.Run("zero price trips the breaker", func(t *testing.T) {
		require.Eventually(t, func() bool {
			_, err := svc.Price(ctx, "DAI")
			return err != nil && svc.BreakerState("DAI") == gobreaker.StateOpen
		}, 2*time.Second, 20*time.Millisecond)

		_, err := svc.Price(ctx, "DAI")
		require.ErrorIs(t, err, gobreaker.ErrOpenState)
		require.Equal(t, gobreaker.StateClosed, svc.BreakerState("USDC"))
	})

	t.Run("unknown feed", func(t *testing.T) {
		_, err := svc.Price(ctx, "TUSD")
		require.ErrorIs(t, err, oracle.ErrFeedNotFound)
	})
}
