// Package permissions maps every operator RPC to the entity and action it
// acts on. Read actions are open to anonymous callers, write actions need
// an authenticated caller.
package permissions

import (
	"fmt"

	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
)

const (
	EntityProtocol = "protocol"
	EntityRegistry = "registry"
	EntityBasket   = "basket"
	EntityBacking  = "backing"
	EntityRevenue  = "revenue"
	EntityTrade    = "trade"
	EntityLedger   = "ledger"
	EntityWebhook  = "webhook"

	ActionRead  = "read"
	ActionWrite = "write"
)

// Op is the permission required by a method.
type Op struct {
	Entity string
	Action string
}

func (o Op) RequiresAuth() bool {
	return o.Action == ActionWrite
}

// AllPermissionsByMethod returns a mapping of the RPC server calls to the
// permissions they require.
func AllPermissionsByMethod() map[string]Op {
	return map[string]Op{
		operatorv1.FullMethod("GetProtocolState"):    {EntityProtocol, ActionRead},
		operatorv1.FullMethod("PauseTrading"):        {EntityProtocol, ActionWrite},
		operatorv1.FullMethod("UnpauseTrading"):      {EntityProtocol, ActionWrite},
		operatorv1.FullMethod("PauseIssuance"):       {EntityProtocol, ActionWrite},
		operatorv1.FullMethod("UnpauseIssuance"):     {EntityProtocol, ActionWrite},
		operatorv1.FullMethod("Freeze"):              {EntityProtocol, ActionWrite},
		operatorv1.FullMethod("FreezeForever"):       {EntityProtocol, ActionWrite},
		operatorv1.FullMethod("Unfreeze"):            {EntityProtocol, ActionWrite},
		operatorv1.FullMethod("SetBasketsNeeded"):    {EntityProtocol, ActionWrite},
		operatorv1.FullMethod("RegisterAsset"):       {EntityRegistry, ActionWrite},
		operatorv1.FullMethod("SwapRegisteredAsset"): {EntityRegistry, ActionWrite},
		operatorv1.FullMethod("UnregisterAsset"):     {EntityRegistry, ActionWrite},
		operatorv1.FullMethod("RefreshAssets"):       {EntityRegistry, ActionWrite},
		operatorv1.FullMethod("ListAssets"):          {EntityRegistry, ActionRead},
		operatorv1.FullMethod("SetPrimeBasket"):      {EntityBasket, ActionWrite},
		operatorv1.FullMethod("SetBackupConfig"):     {EntityBasket, ActionWrite},
		operatorv1.FullMethod("RefreshBasket"):       {EntityBasket, ActionWrite},
		operatorv1.FullMethod("GetBasket"):           {EntityBasket, ActionRead},
		operatorv1.FullMethod("GetHistoricalBasket"): {EntityBasket, ActionRead},
		operatorv1.FullMethod("QuoteBasket"):         {EntityBasket, ActionRead},
		operatorv1.FullMethod("SetWarmupPeriod"):     {EntityBasket, ActionWrite},
		operatorv1.FullMethod("Rebalance"):           {EntityBacking, ActionWrite},
		operatorv1.FullMethod("ForwardRevenue"):      {EntityBacking, ActionWrite},
		operatorv1.FullMethod("SettleTrade"):         {EntityBacking, ActionWrite},
		operatorv1.FullMethod("GetBackingConfig"):    {EntityBacking, ActionRead},
		operatorv1.FullMethod("UpdateBackingConfig"): {EntityBacking, ActionWrite},
		operatorv1.FullMethod("ManageTokens"):        {EntityRevenue, ActionWrite},
		operatorv1.FullMethod("ListTrades"):          {EntityTrade, ActionRead},
		operatorv1.FullMethod("GetTrade"):            {EntityTrade, ActionRead},
		operatorv1.FullMethod("Bid"):                 {EntityTrade, ActionWrite},
		operatorv1.FullMethod("PlaceBatchBid"):       {EntityTrade, ActionWrite},
		operatorv1.FullMethod("GetBrokerState"):      {EntityTrade, ActionRead},
		operatorv1.FullMethod("UpdateBrokerConfig"):  {EntityTrade, ActionWrite},
		operatorv1.FullMethod("GetBalances"):         {EntityLedger, ActionRead},
		operatorv1.FullMethod("Mint"):                {EntityLedger, ActionWrite},
		operatorv1.FullMethod("ListDestinations"):    {EntityRevenue, ActionRead},
		operatorv1.FullMethod("SetDestinations"):     {EntityRevenue, ActionWrite},
		operatorv1.FullMethod("AddWebhook"):          {EntityWebhook, ActionWrite},
		operatorv1.FullMethod("RemoveWebhook"):       {EntityWebhook, ActionWrite},
		operatorv1.FullMethod("ListWebhooks"):        {EntityWebhook, ActionRead},
	}
}

// Validate makes sure every method of the operator service has a permission.
func Validate() error {
	all := AllPermissionsByMethod()
	for _, method := range operatorv1.Methods() {
		if _, ok := all[method]; !ok {
			return fmt.Errorf("missing permission for %s", method)
		}
	}
	return nil
}
