package operatorv1

import (
	"context"

	"google.golang.org/grpc"
)

// OperatorClient calls the operator service over an existing connection.
type OperatorClient struct {
	conn grpc.ClientConnInterface
}

func NewOperatorClient(conn grpc.ClientConnInterface) *OperatorClient {
	return &OperatorClient{conn}
}

func (c *OperatorClient) invoke(
	ctx context.Context, method string, in, out interface{},
) error {
	return c.conn.Invoke(
		ctx, FullMethod(method), in, out, grpc.CallContentSubtype(CodecName),
	)
}

func (c *OperatorClient) GetProtocolState(ctx context.Context, in *Empty) (*GetProtocolStateResponse, error) {
	out := new(GetProtocolStateResponse)
	if err := c.invoke(ctx, "GetProtocolState", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) PauseTrading(ctx context.Context, in *Empty) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "PauseTrading", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) UnpauseTrading(ctx context.Context, in *Empty) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "UnpauseTrading", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) PauseIssuance(ctx context.Context, in *Empty) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "PauseIssuance", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) UnpauseIssuance(ctx context.Context, in *Empty) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "UnpauseIssuance", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) Freeze(ctx context.Context, in *FreezeRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "Freeze", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) FreezeForever(ctx context.Context, in *Empty) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "FreezeForever", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) Unfreeze(ctx context.Context, in *Empty) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "Unfreeze", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) SetBasketsNeeded(ctx context.Context, in *SetBasketsNeededRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "SetBasketsNeeded", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) RegisterAsset(ctx context.Context, in *AssetRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "RegisterAsset", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) SwapRegisteredAsset(ctx context.Context, in *AssetRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "SwapRegisteredAsset", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) UnregisterAsset(ctx context.Context, in *UnregisterAssetRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "UnregisterAsset", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) RefreshAssets(ctx context.Context, in *Empty) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "RefreshAssets", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) ListAssets(ctx context.Context, in *Empty) (*ListAssetsResponse, error) {
	out := new(ListAssetsResponse)
	if err := c.invoke(ctx, "ListAssets", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) SetPrimeBasket(ctx context.Context, in *SetPrimeBasketRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "SetPrimeBasket", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) SetBackupConfig(ctx context.Context, in *SetBackupConfigRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "SetBackupConfig", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) RefreshBasket(ctx context.Context, in *Empty) (*BasketResponse, error) {
	out := new(BasketResponse)
	if err := c.invoke(ctx, "RefreshBasket", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) GetBasket(ctx context.Context, in *Empty) (*GetBasketResponse, error) {
	out := new(GetBasketResponse)
	if err := c.invoke(ctx, "GetBasket", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) GetHistoricalBasket(ctx context.Context, in *GetHistoricalBasketRequest) (*BasketResponse, error) {
	out := new(BasketResponse)
	if err := c.invoke(ctx, "GetHistoricalBasket", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) QuoteBasket(ctx context.Context, in *QuoteBasketRequest) (*QuoteBasketResponse, error) {
	out := new(QuoteBasketResponse)
	if err := c.invoke(ctx, "QuoteBasket", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) SetWarmupPeriod(ctx context.Context, in *SetWarmupPeriodRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "SetWarmupPeriod", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) Rebalance(ctx context.Context, in *RebalanceRequest) (*TradeResponse, error) {
	out := new(TradeResponse)
	if err := c.invoke(ctx, "Rebalance", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) ForwardRevenue(ctx context.Context, in *ForwardRevenueRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "ForwardRevenue", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) SettleTrade(ctx context.Context, in *SettleTradeRequest) (*TradeResponse, error) {
	out := new(TradeResponse)
	if err := c.invoke(ctx, "SettleTrade", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) GetBackingConfig(ctx context.Context, in *Empty) (*BackingConfigResponse, error) {
	out := new(BackingConfigResponse)
	if err := c.invoke(ctx, "GetBackingConfig", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) UpdateBackingConfig(ctx context.Context, in *UpdateBackingConfigRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "UpdateBackingConfig", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) ManageTokens(ctx context.Context, in *ManageTokensRequest) (*TradesResponse, error) {
	out := new(TradesResponse)
	if err := c.invoke(ctx, "ManageTokens", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) ListTrades(ctx context.Context, in *ListTradesRequest) (*TradesResponse, error) {
	out := new(TradesResponse)
	if err := c.invoke(ctx, "ListTrades", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) GetTrade(ctx context.Context, in *GetTradeRequest) (*GetTradeResponse, error) {
	out := new(GetTradeResponse)
	if err := c.invoke(ctx, "GetTrade", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) Bid(ctx context.Context, in *BidRequest) (*TradeResponse, error) {
	out := new(TradeResponse)
	if err := c.invoke(ctx, "Bid", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) PlaceBatchBid(ctx context.Context, in *PlaceBatchBidRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "PlaceBatchBid", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) GetBrokerState(ctx context.Context, in *Empty) (*BrokerStateResponse, error) {
	out := new(BrokerStateResponse)
	if err := c.invoke(ctx, "GetBrokerState", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) UpdateBrokerConfig(ctx context.Context, in *UpdateBrokerConfigRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "UpdateBrokerConfig", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) GetBalances(ctx context.Context, in *GetBalancesRequest) (*GetBalancesResponse, error) {
	out := new(GetBalancesResponse)
	if err := c.invoke(ctx, "GetBalances", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) Mint(ctx context.Context, in *MintRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "Mint", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) ListDestinations(ctx context.Context, in *Empty) (*DestinationsResponse, error) {
	out := new(DestinationsResponse)
	if err := c.invoke(ctx, "ListDestinations", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) SetDestinations(ctx context.Context, in *SetDestinationsRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "SetDestinations", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) AddWebhook(ctx context.Context, in *AddWebhookRequest) (*AddWebhookResponse, error) {
	out := new(AddWebhookResponse)
	if err := c.invoke(ctx, "AddWebhook", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) RemoveWebhook(ctx context.Context, in *RemoveWebhookRequest) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "RemoveWebhook", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OperatorClient) ListWebhooks(ctx context.Context, in *ListWebhooksRequest) (*ListWebhooksResponse, error) {
	out := new(ListWebhooksResponse)
	if err := c.invoke(ctx, "ListWebhooks", in, out); err != nil {
		return nil, err
	}
	return out, nil
}
