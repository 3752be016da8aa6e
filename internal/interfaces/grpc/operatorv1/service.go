package operatorv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified name of the operator service.
const ServiceName = "basketd.v1.Operator"

// FullMethod returns the full gRPC method name of the given RPC.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// OperatorServer is the server API of the operator service.
type OperatorServer interface {
	GetProtocolState(context.Context, *Empty) (*GetProtocolStateResponse, error)
	PauseTrading(context.Context, *Empty) (*Empty, error)
	UnpauseTrading(context.Context, *Empty) (*Empty, error)
	PauseIssuance(context.Context, *Empty) (*Empty, error)
	UnpauseIssuance(context.Context, *Empty) (*Empty, error)
	Freeze(context.Context, *FreezeRequest) (*Empty, error)
	FreezeForever(context.Context, *Empty) (*Empty, error)
	Unfreeze(context.Context, *Empty) (*Empty, error)
	SetBasketsNeeded(context.Context, *SetBasketsNeededRequest) (*Empty, error)
	RegisterAsset(context.Context, *AssetRequest) (*Empty, error)
	SwapRegisteredAsset(context.Context, *AssetRequest) (*Empty, error)
	UnregisterAsset(context.Context, *UnregisterAssetRequest) (*Empty, error)
	RefreshAssets(context.Context, *Empty) (*Empty, error)
	ListAssets(context.Context, *Empty) (*ListAssetsResponse, error)
	SetPrimeBasket(context.Context, *SetPrimeBasketRequest) (*Empty, error)
	SetBackupConfig(context.Context, *SetBackupConfigRequest) (*Empty, error)
	RefreshBasket(context.Context, *Empty) (*BasketResponse, error)
	GetBasket(context.Context, *Empty) (*GetBasketResponse, error)
	GetHistoricalBasket(context.Context, *GetHistoricalBasketRequest) (*BasketResponse, error)
	QuoteBasket(context.Context, *QuoteBasketRequest) (*QuoteBasketResponse, error)
	SetWarmupPeriod(context.Context, *SetWarmupPeriodRequest) (*Empty, error)
	Rebalance(context.Context, *RebalanceRequest) (*TradeResponse, error)
	ForwardRevenue(context.Context, *ForwardRevenueRequest) (*Empty, error)
	SettleTrade(context.Context, *SettleTradeRequest) (*TradeResponse, error)
	GetBackingConfig(context.Context, *Empty) (*BackingConfigResponse, error)
	UpdateBackingConfig(context.Context, *UpdateBackingConfigRequest) (*Empty, error)
	ManageTokens(context.Context, *ManageTokensRequest) (*TradesResponse, error)
	ListTrades(context.Context, *ListTradesRequest) (*TradesResponse, error)
	GetTrade(context.Context, *GetTradeRequest) (*GetTradeResponse, error)
	Bid(context.Context, *BidRequest) (*TradeResponse, error)
	PlaceBatchBid(context.Context, *PlaceBatchBidRequest) (*Empty, error)
	GetBrokerState(context.Context, *Empty) (*BrokerStateResponse, error)
	UpdateBrokerConfig(context.Context, *UpdateBrokerConfigRequest) (*Empty, error)
	GetBalances(context.Context, *GetBalancesRequest) (*GetBalancesResponse, error)
	Mint(context.Context, *MintRequest) (*Empty, error)
	ListDestinations(context.Context, *Empty) (*DestinationsResponse, error)
	SetDestinations(context.Context, *SetDestinationsRequest) (*Empty, error)
	AddWebhook(context.Context, *AddWebhookRequest) (*AddWebhookResponse, error)
	RemoveWebhook(context.Context, *RemoveWebhookRequest) (*Empty, error)
	ListWebhooks(context.Context, *ListWebhooksRequest) (*ListWebhooksResponse, error)
}

// ServiceDesc describes the operator service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OperatorServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetProtocolState", func(s OperatorServer, ctx context.Context, in *Empty) (*GetProtocolStateResponse, error) {
			return s.GetProtocolState(ctx, in)
		}),
		unary("PauseTrading", func(s OperatorServer, ctx context.Context, in *Empty) (*Empty, error) {
			return s.PauseTrading(ctx, in)
		}),
		unary("UnpauseTrading", func(s OperatorServer, ctx context.Context, in *Empty) (*Empty, error) {
			return s.UnpauseTrading(ctx, in)
		}),
		unary("PauseIssuance", func(s OperatorServer, ctx context.Context, in *Empty) (*Empty, error) {
			return s.PauseIssuance(ctx, in)
		}),
		unary("UnpauseIssuance", func(s OperatorServer, ctx context.Context, in *Empty) (*Empty, error) {
			return s.UnpauseIssuance(ctx, in)
		}),
		unary("Freeze", func(s OperatorServer, ctx context.Context, in *FreezeRequest) (*Empty, error) {
			return s.Freeze(ctx, in)
		}),
		unary("FreezeForever", func(s OperatorServer, ctx context.Context, in *Empty) (*Empty, error) {
			return s.FreezeForever(ctx, in)
		}),
		unary("Unfreeze", func(s OperatorServer, ctx context.Context, in *Empty) (*Empty, error) {
			return s.Unfreeze(ctx, in)
		}),
		unary("SetBasketsNeeded", func(s OperatorServer, ctx context.Context, in *SetBasketsNeededRequest) (*Empty, error) {
			return s.SetBasketsNeeded(ctx, in)
		}),
		unary("RegisterAsset", func(s OperatorServer, ctx context.Context, in *AssetRequest) (*Empty, error) {
			return s.RegisterAsset(ctx, in)
		}),
		unary("SwapRegisteredAsset", func(s OperatorServer, ctx context.Context, in *AssetRequest) (*Empty, error) {
			return s.SwapRegisteredAsset(ctx, in)
		}),
		unary("UnregisterAsset", func(s OperatorServer, ctx context.Context, in *UnregisterAssetRequest) (*Empty, error) {
			return s.UnregisterAsset(ctx, in)
		}),
		unary("RefreshAssets", func(s OperatorServer, ctx context.Context, in *Empty) (*Empty, error) {
			return s.RefreshAssets(ctx, in)
		}),
		unary("ListAssets", func(s OperatorServer, ctx context.Context, in *Empty) (*ListAssetsResponse, error) {
			return s.ListAssets(ctx, in)
		}),
		unary("SetPrimeBasket", func(s OperatorServer, ctx context.Context, in *SetPrimeBasketRequest) (*Empty, error) {
			return s.SetPrimeBasket(ctx, in)
		}),
		unary("SetBackupConfig", func(s OperatorServer, ctx context.Context, in *SetBackupConfigRequest) (*Empty, error) {
			return s.SetBackupConfig(ctx, in)
		}),
		unary("RefreshBasket", func(s OperatorServer, ctx context.Context, in *Empty) (*BasketResponse, error) {
			return s.RefreshBasket(ctx, in)
		}),
		unary("GetBasket", func(s OperatorServer, ctx context.Context, in *Empty) (*GetBasketResponse, error) {
			return s.GetBasket(ctx, in)
		}),
		unary("GetHistoricalBasket", func(s OperatorServer, ctx context.Context, in *GetHistoricalBasketRequest) (*BasketResponse, error) {
			return s.GetHistoricalBasket(ctx, in)
		}),
		unary("QuoteBasket", func(s OperatorServer, ctx context.Context, in *QuoteBasketRequest) (*QuoteBasketResponse, error) {
			return s.QuoteBasket(ctx, in)
		}),
		unary("SetWarmupPeriod", func(s OperatorServer, ctx context.Context, in *SetWarmupPeriodRequest) (*Empty, error) {
			return s.SetWarmupPeriod(ctx, in)
		}),
		unary("Rebalance", func(s OperatorServer, ctx context.Context, in *RebalanceRequest) (*TradeResponse, error) {
			return s.Rebalance(ctx, in)
		}),
		unary("ForwardRevenue", func(s OperatorServer, ctx context.Context, in *ForwardRevenueRequest) (*Empty, error) {
			return s.ForwardRevenue(ctx, in)
		}),
		unary("SettleTrade", func(s OperatorServer, ctx context.Context, in *SettleTradeRequest) (*TradeResponse, error) {
			return s.SettleTrade(ctx, in)
		}),
		unary("GetBackingConfig", func(s OperatorServer, ctx context.Context, in *Empty) (*BackingConfigResponse, error) {
			return s.GetBackingConfig(ctx, in)
		}),
		unary("UpdateBackingConfig", func(s OperatorServer, ctx context.Context, in *UpdateBackingConfigRequest) (*Empty, error) {
			return s.UpdateBackingConfig(ctx, in)
		}),
		unary("ManageTokens", func(s OperatorServer, ctx context.Context, in *ManageTokensRequest) (*TradesResponse, error) {
			return s.ManageTokens(ctx, in)
		}),
		unary("ListTrades", func(s OperatorServer, ctx context.Context, in *ListTradesRequest) (*TradesResponse, error) {
			return s.ListTrades(ctx, in)
		}),
		unary("GetTrade", func(s OperatorServer, ctx context.Context, in *GetTradeRequest) (*GetTradeResponse, error) {
			return s.GetTrade(ctx, in)
		}),
		unary("Bid", func(s OperatorServer, ctx context.Context, in *BidRequest) (*TradeResponse, error) {
			return s.Bid(ctx, in)
		}),
		unary("PlaceBatchBid", func(s OperatorServer, ctx context.Context, in *PlaceBatchBidRequest) (*Empty, error) {
			return s.PlaceBatchBid(ctx, in)
		}),
		unary("GetBrokerState", func(s OperatorServer, ctx context.Context, in *Empty) (*BrokerStateResponse, error) {
			return s.GetBrokerState(ctx, in)
		}),
		unary("UpdateBrokerConfig", func(s OperatorServer, ctx context.Context, in *UpdateBrokerConfigRequest) (*Empty, error) {
			return s.UpdateBrokerConfig(ctx, in)
		}),
		unary("GetBalances", func(s OperatorServer, ctx context.Context, in *GetBalancesRequest) (*GetBalancesResponse, error) {
			return s.GetBalances(ctx, in)
		}),
		unary("Mint", func(s OperatorServer, ctx context.Context, in *MintRequest) (*Empty, error) {
			return s.Mint(ctx, in)
		}),
		unary("ListDestinations", func(s OperatorServer, ctx context.Context, in *Empty) (*DestinationsResponse, error) {
			return s.ListDestinations(ctx, in)
		}),
		unary("SetDestinations", func(s OperatorServer, ctx context.Context, in *SetDestinationsRequest) (*Empty, error) {
			return s.SetDestinations(ctx, in)
		}),
		unary("AddWebhook", func(s OperatorServer, ctx context.Context, in *AddWebhookRequest) (*AddWebhookResponse, error) {
			return s.AddWebhook(ctx, in)
		}),
		unary("RemoveWebhook", func(s OperatorServer, ctx context.Context, in *RemoveWebhookRequest) (*Empty, error) {
			return s.RemoveWebhook(ctx, in)
		}),
		unary("ListWebhooks", func(s OperatorServer, ctx context.Context, in *ListWebhooksRequest) (*ListWebhooksResponse, error) {
			return s.ListWebhooks(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "basketd/v1/operator",
}

func RegisterOperatorServer(s grpc.ServiceRegistrar, srv OperatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Methods returns the full names of every RPC of the service.
func Methods() []string {
	methods := make([]string, 0, len(ServiceDesc.Methods))
	for _, m := range ServiceDesc.Methods {
		methods = append(methods, FullMethod(m.MethodName))
	}
	return methods
}

func unary[Req, Res any](
	name string, call func(OperatorServer, context.Context, *Req) (*Res, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv interface{}, ctx context.Context, dec func(interface{}) error,
			interceptor grpc.UnaryServerInterceptor,
		) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OperatorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(OperatorServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
