package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/pkg/fixed"
	"github.com/urfave/cli/v2"
)

var kindFlag = &cli.StringFlag{
	Name:  "kind",
	Usage: "the auction kind: dutch or batch",
	Value: domain.DutchAuction.String(),
}

var trade = cli.Command{
	Name:  "trade",
	Usage: "open, inspect, bid on and settle trades",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "list trades",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "origin",
					Usage: "filter by trader account",
				},
				&cli.BoolFlag{
					Name:  "open",
					Usage: "list only open trades",
				},
			},
			Action: listTradesAction,
		},
		{
			Name:      "get",
			Usage:     "get a trade and its current dutch bid amount",
			ArgsUsage: "<trade_id>",
			Action:    getTradeAction,
		},
		{
			Name:   "rebalance",
			Usage:  "open the best trade of the backing manager",
			Flags:  []cli.Flag{kindFlag},
			Action: rebalanceAction,
		},
		{
			Name:  "forward",
			Usage: "forward the revenue of the backing manager to the traders",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:     "erc20",
					Usage:    "the tokens to forward",
					Required: true,
				},
			},
			Action: forwardRevenueAction,
		},
		{
			Name:  "managetokens",
			Usage: "sell tokens held by a revenue trader",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "trader",
					Usage:    "backstop or issued",
					Required: true,
				},
				&cli.StringSliceFlag{
					Name:     "erc20",
					Usage:    "the tokens to sell",
					Required: true,
				},
				&cli.StringSliceFlag{
					Name:  "kind",
					Usage: "the auction kind per token, dutch by default",
				},
			},
			Action: manageTokensAction,
		},
		{
			Name:  "settle",
			Usage: "settle the open trade of a trader",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "origin",
					Usage: "the trader account",
					Value: domain.BackingManagerAccount,
				},
				&cli.StringFlag{
					Name:     "sell",
					Usage:    "the sell token of the trade",
					Required: true,
				},
			},
			Action: settleTradeAction,
		},
		{
			Name:      "bid",
			Usage:     "bid on a dutch auction at the current price",
			ArgsUsage: "<trade_id>",
			Action:    bidAction,
		},
		{
			Name:  "batchbid",
			Usage: "place a bid on a batch auction",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "trade_id",
					Usage:    "the id of the trade",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "sell_amount",
					Usage:    "the amount of sell token to get",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "buy_amount",
					Usage:    "the amount of buy token to pay",
					Required: true,
				},
			},
			Action: batchBidAction,
		},
	},
}

var broker = cli.Command{
	Name:  "broker",
	Usage: "show and configure the auction broker",
	Subcommands: []*cli.Command{
		{
			Name:   "show",
			Usage:  "get the broker state",
			Action: brokerStateAction,
		},
		{
			Name:  "update",
			Usage: "update auction lengths and disabled kinds",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "batch_length",
					Usage: "the length of batch auctions",
				},
				&cli.DurationFlag{
					Name:  "dutch_length",
					Usage: "the length of dutch auctions",
				},
				&cli.StringFlag{
					Name:  "batch_disabled",
					Usage: "true or false",
				},
				&cli.StringSliceFlag{
					Name:  "dutch_disabled",
					Usage: "tokens whose dutch auctions are disabled",
				},
				&cli.StringSliceFlag{
					Name:  "dutch_enabled",
					Usage: "tokens whose dutch auctions are enabled",
				},
			},
			Action: updateBrokerAction,
		},
	},
}

var backing = cli.Command{
	Name:  "backing",
	Usage: "show and configure the backing manager",
	Subcommands: []*cli.Command{
		{
			Name:   "show",
			Usage:  "get the backing manager config",
			Action: backingConfigAction,
		},
		{
			Name:  "update",
			Usage: "update the backing manager config",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "trading_delay",
					Usage: "the delay after a basket switch before trading",
				},
				&cli.StringFlag{
					Name:  "max_trade_slippage",
					Usage: "the max slippage as a ratio",
				},
				&cli.StringFlag{
					Name:  "backing_buffer",
					Usage: "the extra backing held as a ratio",
				},
				&cli.StringFlag{
					Name:  "min_trade_volume",
					Usage: "the min trade value in unit of account",
				},
			},
			Action: updateBackingConfigAction,
		},
	},
}

func listTradesAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.ListTrades(rctx, &operatorv1.ListTradesRequest{
		Origin:   ctx.String("origin"),
		OpenOnly: ctx.Bool("open"),
	})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Origin", "Kind", "Status", "Sell", "Buy", "Amount", "Ends")
	for _, t := range reply.Trades {
		if err := table.Append(
			t.ID,
			t.Origin,
			t.Kind.String(),
			t.Status.String(),
			t.Sell,
			t.Buy,
			t.SellAmount.String(),
			time.Unix(t.EndTime, 0).Format(time.RFC3339),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func getTradeAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "get"}
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.GetTrade(rctx, &operatorv1.GetTradeRequest{
		ID: ctx.Args().First(),
	})
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func rebalanceAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.Rebalance(rctx, &operatorv1.RebalanceRequest{
		Kind: ctx.String("kind"),
	})
	if err != nil {
		return err
	}
	if reply.Trade == nil {
		fmt.Println("nothing to trade")
		return nil
	}
	printRespJSON(reply)
	return nil
}

func forwardRevenueAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.ForwardRevenue(rctx, &operatorv1.ForwardRevenueRequest{
		ERC20s: ctx.StringSlice("erc20"),
	})
	return err
}

func manageTokensAction(ctx *cli.Context) error {
	erc20s := ctx.StringSlice("erc20")
	kinds := ctx.StringSlice("kind")
	if len(kinds) == 0 {
		kinds = make([]string, len(erc20s))
	}
	if len(kinds) != len(erc20s) {
		return fmt.Errorf("expected one kind per token")
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.ManageTokens(rctx, &operatorv1.ManageTokensRequest{
		Trader: ctx.String("trader"),
		ERC20s: erc20s,
		Kinds:  kinds,
	})
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func settleTradeAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.SettleTrade(rctx, &operatorv1.SettleTradeRequest{
		Origin: ctx.String("origin"),
		Sell:   ctx.String("sell"),
	})
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func bidAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "bid"}
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.Bid(rctx, &operatorv1.BidRequest{
		TradeID: ctx.Args().First(),
	})
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func batchBidAction(ctx *cli.Context) error {
	amounts, err := parseFixes([]string{
		ctx.String("sell_amount"), ctx.String("buy_amount"),
	})
	if err != nil {
		return err
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := client.PlaceBatchBid(rctx, &operatorv1.PlaceBatchBidRequest{
		TradeID:    ctx.String("trade_id"),
		SellAmount: amounts[0],
		BuyAmount:  amounts[1],
	}); err != nil {
		return err
	}
	fmt.Println("bid placed")
	return nil
}

func brokerStateAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.GetBrokerState(rctx, &operatorv1.Empty{})
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func updateBrokerAction(ctx *cli.Context) error {
	req := &operatorv1.UpdateBrokerConfigRequest{}
	if ctx.IsSet("batch_length") {
		length := int64(ctx.Duration("batch_length").Seconds())
		req.BatchAuctionLength = &length
	}
	if ctx.IsSet("dutch_length") {
		length := int64(ctx.Duration("dutch_length").Seconds())
		req.DutchAuctionLength = &length
	}
	if ctx.IsSet("batch_disabled") {
		var disabled bool
		switch ctx.String("batch_disabled") {
		case "true":
			disabled = true
		case "false":
		default:
			return &invalidUsageError{ctx, "update"}
		}
		req.BatchAuctionDisabled = &disabled
	}
	disabled := ctx.StringSlice("dutch_disabled")
	enabled := ctx.StringSlice("dutch_enabled")
	if len(disabled)+len(enabled) > 0 {
		req.DutchAuctionDisabled = make(map[string]bool)
		for _, erc20 := range disabled {
			req.DutchAuctionDisabled[erc20] = true
		}
		for _, erc20 := range enabled {
			req.DutchAuctionDisabled[erc20] = false
		}
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.UpdateBrokerConfig(rctx, req)
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func backingConfigAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.GetBackingConfig(rctx, &operatorv1.Empty{})
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func updateBackingConfigAction(ctx *cli.Context) error {
	req := &operatorv1.UpdateBackingConfigRequest{}
	if ctx.IsSet("trading_delay") {
		delay := int64(ctx.Duration("trading_delay").Seconds())
		req.TradingDelay = &delay
	}
	ratios := map[string]**fixed.Fix{
		"max_trade_slippage": &req.MaxTradeSlippage,
		"backing_buffer":     &req.BackingBuffer,
		"min_trade_volume":   &req.MinTradeVolume,
	}
	for name, field := range ratios {
		if !ctx.IsSet(name) {
			continue
		}
		v, err := fixed.NewFromString(ctx.String(name))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*field = &v
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.UpdateBackingConfig(rctx, req)
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}
