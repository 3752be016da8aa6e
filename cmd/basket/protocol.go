package main

import (
	"time"

	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/pkg/fixed"
	"github.com/urfave/cli/v2"
)

var protocol = cli.Command{
	Name:  "protocol",
	Usage: "show and govern the protocol state",
	Subcommands: []*cli.Command{
		{
			Name:   "status",
			Usage:  "get pause and freeze state of the protocol",
			Action: protocolStatusAction,
		},
		{
			Name:  "pause",
			Usage: "pause trading or issuance",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "issuance",
					Usage: "pause issuance instead of trading",
				},
			},
			Action: pauseAction,
		},
		{
			Name:  "unpause",
			Usage: "unpause trading or issuance",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "issuance",
					Usage: "unpause issuance instead of trading",
				},
			},
			Action: unpauseAction,
		},
		{
			Name:  "freeze",
			Usage: "freeze the protocol for some time, or forever",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "duration",
					Usage: "the duration of the freeze",
				},
				&cli.BoolFlag{
					Name:  "forever",
					Usage: "freeze without expiration",
				},
			},
			Action: freezeAction,
		},
		{
			Name:   "unfreeze",
			Usage:  "lift any freeze",
			Action: unfreezeAction,
		},
		{
			Name:      "basketsneeded",
			Usage:     "set the baskets needed to back the issued token",
			ArgsUsage: "<amount>",
			Action:    setBasketsNeededAction,
		},
	},
}

func protocolStatusAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.GetProtocolState(rctx, &operatorv1.Empty{})
	if err != nil {
		return err
	}
	printRespJSON(reply)
	return nil
}

func pauseAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if ctx.Bool("issuance") {
		_, err = client.PauseIssuance(rctx, &operatorv1.Empty{})
	} else {
		_, err = client.PauseTrading(rctx, &operatorv1.Empty{})
	}
	return err
}

func unpauseAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if ctx.Bool("issuance") {
		_, err = client.UnpauseIssuance(rctx, &operatorv1.Empty{})
	} else {
		_, err = client.UnpauseTrading(rctx, &operatorv1.Empty{})
	}
	return err
}

func freezeAction(ctx *cli.Context) error {
	duration := ctx.Duration("duration")
	forever := ctx.Bool("forever")
	if !forever && duration < time.Second {
		return &invalidUsageError{ctx, "freeze"}
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if forever {
		_, err = client.FreezeForever(rctx, &operatorv1.Empty{})
		return err
	}
	_, err = client.Freeze(rctx, &operatorv1.FreezeRequest{
		Duration: int64(duration.Seconds()),
	})
	return err
}

func unfreezeAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.Unfreeze(rctx, &operatorv1.Empty{})
	return err
}

func setBasketsNeededAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "basketsneeded"}
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

	_, err = client.SetBasketsNeeded(rctx, &operatorv1.SetBasketsNeededRequest{
		Amount: amount,
	})
	return err
}
