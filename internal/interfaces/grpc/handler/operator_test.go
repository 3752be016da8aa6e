package grpchandler_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/application/apptest"
	grpchandler "github.com/tdex-network/basketd/internal/interfaces/grpc/handler"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/interceptor"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/pkg/fixed"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const apiSecret = "secret"

func newClient(t *testing.T, env *apptest.Env) *operatorv1.OperatorClient {
	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer(
		interceptor.UnaryInterceptor(apiSecret),
		interceptor.StreamInterceptor(apiSecret),
	)
	operatorv1.RegisterOperatorServer(server, grpchandler.NewOperatorHandler(env.Engine))
	go func() {
		//nolint
		server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(
		context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return operatorv1.NewOperatorClient(conn)
}

func as(t *testing.T, subject string) context.Context {
	token, err := interceptor.NewAuthToken(apiSecret, subject, time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(
		context.Background(), "authorization", "Bearer "+token,
	)
}

func TestProtocolCalls(t *testing.T) {
	t.Parallel()

	env := apptest.NewEnv(t)
	client := newClient(t, env)
	gov := as(t, apptest.Governance)

	res, err := client.GetProtocolState(context.Background(), &operatorv1.Empty{})
	require.NoError(t, err)
	require.Equal(t, apptest.Governance, res.State.Governance)
	require.True(t, res.TradingOpen)
	require.Equal(t, apptest.StartTime, res.CurrentTime)

	_, err = client.PauseTrading(context.Background(), &operatorv1.Empty{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.PauseTrading(as(t, "alice"), &operatorv1.Empty{})
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = client.PauseTrading(gov, &operatorv1.Empty{})
	require.NoError(t, err)

	res, err = client.GetProtocolState(gov, &operatorv1.Empty{})
	require.NoError(t, err)
	require.False(t, res.TradingOpen)
	require.True(t, res.IssuanceOpen)

	_, err = client.Freeze(gov, &operatorv1.FreezeRequest{Duration: 0})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestBasketCalls(t *testing.T) {
	t.Parallel()

	env := apptest.NewEnv(t)
	env.SetupBasket(t, []string{"USDC", "DAI"}, []string{"0.5", "0.5"})
	client := newClient(t, env)
	gov := as(t, apptest.Governance)
	ctx := context.Background()

	assets, err := client.ListAssets(ctx, &operatorv1.Empty{})
	require.NoError(t, err)
	require.Len(t, assets.Assets, 4)

	basket, err := client.GetBasket(ctx, &operatorv1.Empty{})
	require.NoError(t, err)
	require.Equal(t, []string{"USDC", "DAI"}, basket.Basket.ERC20s)
	require.Equal(t, "SOUND", basket.Status)
	require.True(t, basket.Ready)

	quote, err := client.QuoteBasket(ctx, &operatorv1.QuoteBasketRequest{
		Amount: fixed.NewFromInt(10), RoundUp: true,
	})
	require.NoError(t, err)
	require.True(t, quote.Quantities[0].Eq(fixed.NewFromInt(5)))

	_, err = client.GetHistoricalBasket(ctx, &operatorv1.GetHistoricalBasketRequest{Nonce: 5})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Mint(gov, &operatorv1.MintRequest{
		To: "alice", Token: "USDC", Amount: fixed.NewFromInt(7),
	})
	require.NoError(t, err)

	balances, err := client.GetBalances(ctx, &operatorv1.GetBalancesRequest{Account: "alice"})
	require.NoError(t, err)
	require.Len(t, balances.Balances, 1)
	require.True(t, balances.Balances[0].Amount.Eq(fixed.NewFromInt(7)))

	_, err = client.Rebalance(gov, &operatorv1.RebalanceRequest{Kind: "nope"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
