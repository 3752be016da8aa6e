package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/tdex-network/basketd/internal/infrastructure/distributor"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/pkg/fixed"
	"github.com/urfave/cli/v2"
)

var ledger = cli.Command{
	Name:  "ledger",
	Usage: "inspect balances and revenue destinations",
	Subcommands: []*cli.Command{
		{
			Name:      "balances",
			Usage:     "get the token balances of an account",
			ArgsUsage: "<account>",
			Action:    balancesAction,
		},
		{
			Name:  "mint",
			Usage: "credit tokens to an account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "to",
					Usage:    "the receiving account",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "token",
					Usage:    "the token to mint",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "amount",
					Usage:    "the amount to mint",
					Required: true,
				},
			},
			Action: mintAction,
		},
		{
			Name:   "destinations",
			Usage:  "list the revenue destinations",
			Action: listDestinationsAction,
		},
		{
			Name:  "setdestinations",
			Usage: "replace the revenue destinations",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Usage:    "the path of the JSON list of destinations",
					Required: true,
				},
			},
			Action: setDestinationsAction,
		},
	},
}

func balancesAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "balances"}
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.GetBalances(rctx, &operatorv1.GetBalancesRequest{
		Account: ctx.Args().First(),
	})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Token", "Amount")
	for _, b := range reply.Balances {
		if err := table.Append(b.Token, b.Amount.String()); err != nil {
			return err
		}
	}
	return table.Render()
}

func mintAction(ctx *cli.Context) error {
	amount, err := fixed.NewFromString(ctx.String("amount"))
	if err != nil {
		return err
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.Mint(rctx, &operatorv1.MintRequest{
		To:     ctx.String("to"),
		Token:  ctx.String("token"),
		Amount: amount,
	})
	return err
}

func listDestinationsAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.ListDestinations(rctx, &operatorv1.Empty{})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Account", "Issued share", "Backstop share")
	for _, d := range reply.Destinations {
		if err := table.Append(
			d.Account, d.IssuedShare.String(), d.BackstopShare.String(),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func setDestinationsAction(ctx *cli.Context) error {
	buf, err := os.ReadFile(ctx.String("file"))
	if err != nil {
		return err
	}
	var destinations []distributor.Destination
	if err := json.Unmarshal(buf, &destinations); err != nil {
		return fmt.Errorf("invalid destinations: %w", err)
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.SetDestinations(rctx, &operatorv1.SetDestinationsRequest{
		Destinations: destinations,
	})
	return err
}
