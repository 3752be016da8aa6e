package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/urfave/cli/v2"
)

var webhook = cli.Command{
	Name:  "webhook",
	Usage: "manage the webhooks notified of protocol events",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "add a webhook registered for some event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "endpoint",
					Usage:    "the endpoint where to notify the webhook",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "the eventual secret to authenticate requests",
				},
				&cli.StringFlag{
					Name:  "event",
					Usage: "the event for which the webhook gets notified, * for any",
					Value: "*",
				},
			},
			Action: addWebhookAction,
		},
		{
			Name:      "remove",
			Usage:     "remove a webhook",
			ArgsUsage: "<id>",
			Action:    removeWebhookAction,
		},
		{
			Name:  "list",
			Usage: "list all webhooks registered for some event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "event",
					Usage: "the event to filter hooks by",
				},
			},
			Action: listWebhooksAction,
		},
	},
}

func addWebhookAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.AddWebhook(rctx, &operatorv1.AddWebhookRequest{
		Event:    ctx.String("event"),
		Endpoint: ctx.String("endpoint"),
		Secret:   ctx.String("secret"),
	})
	if err != nil {
		return err
	}

	fmt.Println("hook id:", reply.ID)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "remove"}
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.RemoveWebhook(rctx, &operatorv1.RemoveWebhookRequest{
		ID: ctx.Args().First(),
	})
	return err
}

func listWebhooksAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.ListWebhooks(rctx, &operatorv1.ListWebhooksRequest{
		Event: ctx.String("event"),
	})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Event", "Endpoint", "Secured")
	for _, w := range reply.Webhooks {
		if err := table.Append(
			w.ID, w.Event, w.Endpoint, fmt.Sprintf("%t", w.IsSecured),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
