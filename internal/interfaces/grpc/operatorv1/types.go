package operatorv1

import (
	"github.com/tdex-network/basketd/internal/core/application/pubsub"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/infrastructure/distributor"
	"github.com/tdex-network/basketd/pkg/fixed"
)

type Empty struct{}

type GetProtocolStateResponse struct {
	State        *domain.ProtocolState `json:"state"`
	Frozen       bool                  `json:"frozen"`
	TradingOpen  bool                  `json:"trading_open"`
	IssuanceOpen bool                  `json:"issuance_open"`
	CurrentTime  int64                 `json:"current_time"`
}

type FreezeRequest struct {
	Duration int64 `json:"duration"`
}

type SetBasketsNeededRequest struct {
	Amount fixed.Fix `json:"amount"`
}

type AssetRequest struct {
	Asset domain.Asset `json:"asset"`
}

type UnregisterAssetRequest struct {
	ERC20 string `json:"erc20"`
}

type AssetInfo struct {
	Asset  *domain.Asset `json:"asset"`
	Status string        `json:"status"`
	Price  domain.Price  `json:"price"`
}

type ListAssetsResponse struct {
	Assets []AssetInfo `json:"assets"`
}

type SetPrimeBasketRequest struct {
	ERC20s     []string    `json:"erc20s"`
	TargetAmts []fixed.Fix `json:"target_amts"`
	Force      bool        `json:"force"`
}

type SetBackupConfigRequest struct {
	TargetName string   `json:"target_name"`
	Max        int      `json:"max"`
	ERC20s     []string `json:"erc20s"`
}

type GetBasketResponse struct {
	Basket              *domain.Basket      `json:"basket"`
	State               *domain.BasketState `json:"state"`
	Status              string              `json:"status"`
	Ready               bool                `json:"ready"`
	Price               domain.Price        `json:"price"`
	Held                domain.BasketRange  `json:"held"`
	FullyCollateralized bool                `json:"fully_collateralized"`
}

type GetHistoricalBasketRequest struct {
	Nonce uint64 `json:"nonce"`
}

type BasketResponse struct {
	Basket *domain.Basket `json:"basket"`
}

type QuoteBasketRequest struct {
	Amount  fixed.Fix `json:"amount"`
	RoundUp bool      `json:"round_up"`
}

type QuoteBasketResponse struct {
	ERC20s     []string    `json:"erc20s"`
	Quantities []fixed.Fix `json:"quantities"`
}

type SetWarmupPeriodRequest struct {
	Period int64 `json:"period"`
}

type RebalanceRequest struct {
	Kind string `json:"kind"`
}

type TradeResponse struct {
	Trade *domain.Trade `json:"trade"`
}

type TradesResponse struct {
	Trades []*domain.Trade `json:"trades"`
}

type ForwardRevenueRequest struct {
	ERC20s []string `json:"erc20s"`
}

type SettleTradeRequest struct {
	Origin string `json:"origin"`
	Sell   string `json:"sell"`
}

type BackingConfigResponse struct {
	Config *domain.BackingConfig `json:"config"`
}

// UpdateBackingConfigRequest changes only the given fields.
type UpdateBackingConfigRequest struct {
	TradingDelay     *int64     `json:"trading_delay,omitempty"`
	MaxTradeSlippage *fixed.Fix `json:"max_trade_slippage,omitempty"`
	BackingBuffer    *fixed.Fix `json:"backing_buffer,omitempty"`
	MinTradeVolume   *fixed.Fix `json:"min_trade_volume,omitempty"`
}

type ManageTokensRequest struct {
	Trader string   `json:"trader"`
	ERC20s []string `json:"erc20s"`
	Kinds  []string `json:"kinds"`
}

type ListTradesRequest struct {
	Origin   string `json:"origin"`
	OpenOnly bool   `json:"open_only"`
}

type GetTradeRequest struct {
	ID string `json:"id"`
}

type GetTradeResponse struct {
	Trade     *domain.Trade `json:"trade"`
	BidAmount fixed.Fix     `json:"bid_amount"`
}

type BidRequest struct {
	TradeID string `json:"trade_id"`
}

type PlaceBatchBidRequest struct {
	TradeID    string    `json:"trade_id"`
	SellAmount fixed.Fix `json:"sell_amount"`
	BuyAmount  fixed.Fix `json:"buy_amount"`
}

type BrokerStateResponse struct {
	State *domain.BrokerState `json:"state"`
}

// UpdateBrokerConfigRequest changes only the given fields.
type UpdateBrokerConfigRequest struct {
	BatchAuctionLength   *int64          `json:"batch_auction_length,omitempty"`
	DutchAuctionLength   *int64          `json:"dutch_auction_length,omitempty"`
	BatchAuctionDisabled *bool           `json:"batch_auction_disabled,omitempty"`
	DutchAuctionDisabled map[string]bool `json:"dutch_auction_disabled,omitempty"`
}

type GetBalancesRequest struct {
	Account string `json:"account"`
}

type GetBalancesResponse struct {
	Balances []domain.Balance `json:"balances"`
}

type MintRequest struct {
	To     string    `json:"to"`
	Token  string    `json:"token"`
	Amount fixed.Fix `json:"amount"`
}

type DestinationsResponse struct {
	Destinations []distributor.Destination `json:"destinations"`
}

type SetDestinationsRequest struct {
	Destinations []distributor.Destination `json:"destinations"`
}

type AddWebhookRequest struct {
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type AddWebhookResponse struct {
	ID string `json:"id"`
}

type RemoveWebhookRequest struct {
	ID string `json:"id"`
}

type ListWebhooksRequest struct {
	Event string `json:"event"`
}

type ListWebhooksResponse struct {
	Webhooks []pubsub.Webhook `json:"webhooks"`
}
