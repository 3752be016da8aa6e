package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/urfave/cli/v2"
)

var assetFileFlag = &cli.StringFlag{
	Name:     "file",
	Usage:    "the path of the JSON descriptor of the asset",
	Required: true,
}

var asset = cli.Command{
	Name:  "asset",
	Usage: "manage the asset registry",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "list the registered assets with status and price",
			Action: listAssetsAction,
		},
		{
			Name:   "register",
			Usage:  "register a new asset",
			Flags:  []cli.Flag{assetFileFlag},
			Action: registerAssetAction,
		},
		{
			Name:   "swap",
			Usage:  "replace the plugin of a registered asset",
			Flags:  []cli.Flag{assetFileFlag},
			Action: swapAssetAction,
		},
		{
			Name:      "unregister",
			Usage:     "remove an asset from the registry",
			ArgsUsage: "<erc20>",
			Action:    unregisterAssetAction,
		},
		{
			Name:   "refresh",
			Usage:  "refresh prices and statuses of every asset",
			Action: refreshAssetsAction,
		},
	},
}

func listAssetsAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := client.ListAssets(rctx, &operatorv1.Empty{})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ERC20", "Symbol", "Collateral", "Status", "Low", "High")
	for _, a := range reply.Assets {
		collateral := "-"
		if a.Asset.Collateral != nil {
			collateral = a.Asset.Collateral.TargetName
		}
		if err := table.Append(
			a.Asset.ERC20,
			a.Asset.Symbol,
			collateral,
			a.Status,
			a.Price.Low.String(),
			a.Price.High.String(),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func registerAssetAction(ctx *cli.Context) error {
	a, err := readAsset(ctx.String("file"))
	if err != nil {
		return err
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := client.RegisterAsset(
		rctx, &operatorv1.AssetRequest{Asset: *a},
	); err != nil {
		return err
	}
	fmt.Printf("asset %s registered\n", a.ERC20)
	return nil
}

func swapAssetAction(ctx *cli.Context) error {
	a, err := readAsset(ctx.String("file"))
	if err != nil {
		return err
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := client.SwapRegisteredAsset(
		rctx, &operatorv1.AssetRequest{Asset: *a},
	); err != nil {
		return err
	}
	fmt.Printf("asset %s swapped\n", a.ERC20)
	return nil
}

func unregisterAssetAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "unregister"}
	}

	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.UnregisterAsset(rctx, &operatorv1.UnregisterAssetRequest{
		ERC20: ctx.Args().First(),
	})
	return err
}

func refreshAssetsAction(ctx *cli.Context) error {
	client, rctx, cleanup, err := getOperatorClient()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = client.RefreshAssets(rctx, &operatorv1.Empty{})
	return err
}

func readAsset(path string) (*domain.Asset, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a := &domain.Asset{}
	if err := json.Unmarshal(buf, a); err != nil {
		return nil, fmt.Errorf("invalid asset descriptor: %w", err)
	}
	return a, nil
}
