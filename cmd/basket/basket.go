package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/pkg/fixed"
	"github.com/urfave/cli/v2"
)

var basket = cli.Command{
	Name:  "basket",
	Usage: "show and configure the reference basket",
	Subcommands: []*cli.Command{
		{
			Name:   "show",
			Usage:  "get the current basket, its status and the baskets held",
			Action: showBasketAction,
		},
		{
			Name:  "history",
			Usage: "get a past basket by nonce",
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:     "nonce",
					Usage:    "the nonce of the basket",
					Required: true,
				},
			},
			Action: historicalBasketAction,
		},
		{
			Name:  "setprime",
			Usage: "set the prime basket",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:     "erc20",
					Usage:    "the collateral tokens",
					Required: true,
				},
				&cli.StringSliceFlag{
					Name:     "target_amt",
					Usage:    "the target amounts, one per token",
					Required: true,
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "skip the check on the target units of the current basket",
				},
			},
			Action: setPrimeBasketAction,
		},
		{
			Name:  "setbackup",
			Usage: "set the backup config of a target unit",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "target",
					Usage:    "the target unit name",
					Required: true,
				},
				&cli.IntFlag{
					Name:  "max",
					Usage: "the max number of backup tokens to use",
					Value: 1,
				},
				&cli.StringSliceFlag{
					Name:  "erc20",
					Usage: "the backup tokens in order of preference",
				},
			},
			Action: setBackupConfigAction,
		},
		{
			Name:   "refresh",
			Usage:  "switch to a new basket from prime and backup configs",
			Action: refreshBasketAction,
		},
		{
			Name:      "quote",
			Usage:     "get the token quantities of an amount of baskets",
			ArgsUsage: "<amount>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "roundup",
					Usage: "round quantities up",
				},
			},
			Action: quoteBasketAction,
		},
		{
			Name:  "warmup",
			Usage: "set the warmup period",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:     "period",
					Usage:    "the time the basket must stay SOUND before trading",
					Required: true,
				},
			},
			Action: setWarmupPeriodAction,
		},
	},
}

func showBasketAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.GetBasket(rctx, &operatorv1.Empty{})
	if err != nil {
		return err
	}
	if reply.Basket == nil {
		fmt.Println("no basket set")
		return nil
	}

	fmt.Printf(
		"nonce: %d\nstatus: %s\nready: %t\nfully collateralized: %t\n",
		reply.Basket.Nonce, reply.Status, reply.Ready, reply.FullyCollateralized,
	)
	fmt.Printf(
		"price: %s - %s\nheld: %s - %s\n",
		reply.Price.Low, reply.Price.High, reply.Held.Bottom, reply.Held.Top,
	)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ERC20", "Ref amount")
	for i, erc20 := range reply.Basket.ERC20s {
		if err := table.Append(erc20, reply.Basket.RefAmts[i].String()); err != nil {
			return err
		}
	}
	return table.Render()
}

func historicalBasketAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.GetHistoricalBasket(
		rctx, &operatorv1.GetHistoricalBasketRequest{Nonce: ctx.Uint64("nonce")},
	)
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func setPrimeBasketAction(ctx *cli.Context) error {
	erc20s := ctx.StringSlice("erc20")
	amts, err := parseFixes(ctx.StringSlice("target_amt"))
	if err != nil {
		return err
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := client.SetPrimeBasket(rctx, &operatorv1.SetPrimeBasketRequest{
		ERC20s:     erc20s,
		TargetAmts: amts,
		Force:      ctx.Bool("force"),
	}); err != nil {
		return err
	}
	fmt.Println("prime basket set")
	return nil
}

func setBackupConfigAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.SetBackupConfig(rctx, &operatorv1.SetBackupConfigRequest{
		TargetName: ctx.String("target"),
		Max:        ctx.Int("max"),
		ERC20s:     ctx.StringSlice("erc20"),
	})
	return err
}

func refreshBasketAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.RefreshBasket(rctx, &operatorv1.Empty{})
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func quoteBasketAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "quote"}
	}
	amount, err := fixed.NewFromString(ctx.Args().First())
	if err != nil {
		return err
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.QuoteBasket(rctx, &operatorv1.QuoteBasketRequest{
		Amount:  amount,
		RoundUp: ctx.Bool("roundup"),
	})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ERC20", "Quantity")
	for i, erc20 := range reply.ERC20s {
		if err := table.Append(erc20, reply.Quantities[i].String()); err != nil {
			return err
		}
	}
	return table.Render()
}

func setWarmupPeriodAction(ctx *cli.Context) error {
	period := ctx.Duration("period")
	if period < time.Second {
		return &invalidUsageError{ctx, "warmup"}
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.SetWarmupPeriod(rctx, &operatorv1.SetWarmupPeriodRequest{
		Period: int64(period.Seconds()),
	})
	return err
}

func parseFixes(values []string) ([]fixed.Fix, error) {
	fixes := make([]fixed.Fix, 0, len(values))
	for _, v := range values {
		f, err := fixed.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid amount %s: %w", v, err)
		}
		fixes = append(fixes, f)
	}
	return fixes, nil
}
