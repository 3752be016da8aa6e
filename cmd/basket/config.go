package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"
)

const (
	rpcServerStateKey = "rpcserver"
	apiSecretStateKey = "api_secret"
	callerStateKey    = "caller"
	tlsCertStateKey   = "tls_cert_path"
)

var (
	rpcFlag = cli.StringFlag{
		Name:  "rpcserver",
		Usage: "basketd daemon address host:port",
		Value: "localhost:9000",
	}

	apiSecretFlag = cli.StringFlag{
		Name:  "api_secret",
		Usage: "the api secret of the daemon, found in its datadir",
	}

	callerFlag = cli.StringFlag{
		Name:  "caller",
		Usage: "the identity the CLI authenticates as",
		Value: "governance",
	}

	tlsCertFlag = cli.StringFlag{
		Name:  "tls_cert_path",
		Usage: "the path of the TLS certificate of the daemon, empty for insecure connections",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the basket CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&rpcFlag,
				&apiSecretFlag,
				&callerFlag,
				&tlsCertFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := state[key]
		if key == apiSecretStateKey && value != "" {
			value = "********"
		}
		fmt.Println(key + ": " + value)
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	return setState(map[string]string{
		rpcServerStateKey: c.String(rpcFlag.Name),
		apiSecretStateKey: c.String(apiSecretFlag.Name),
		callerStateKey:    c.String(callerFlag.Name),
		tlsCertStateKey:   c.String(tlsCertFlag.Name),
	})
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)

	return nil
}
