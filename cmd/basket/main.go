package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/interceptor"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const tokenTTL = 5 * time.Minute

var (
	// maxMsgRecvSize is the largest message our client will receive. We
	// set this to 200MiB atm.
	maxMsgRecvSize = grpc.MaxCallRecvMsgSize(1 * 1024 * 1024 * 200)

	basketDataDir = btcutil.AppDataDir("basket", false)
	statePath     = filepath.Join(basketDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "basket operator CLI"
	app.Usage = "Command line interface for basketd daemon operators"
	app.Commands = append(
		app.Commands,
		&config,
		&protocol,
		&asset,
		&basket,
		&backing,
		&trade,
		&broker,
		&ledger,
		&webhook,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(basketDataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(basketDataDir, os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0600); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func printRespJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

// getOperatorClient returns the client along with a context carrying the
// auth token of the configured caller, if any.
func getOperatorClient() (
	*operatorv1.OperatorClient, context.Context, func(), error,
) {
	state, err := getState()
	if err != nil {
		return nil, nil, nil, err
	}

	conn, err := getClientConn(state)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() { _ = conn.Close() }

	ctx := context.Background()
	if secret := state[apiSecretStateKey]; secret != "" {
		token, err := interceptor.NewAuthToken(
			secret, state[callerStateKey], tokenTTL,
		)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		ctx = metadata.AppendToOutgoingContext(
			ctx, "authorization", "Bearer "+token,
		)
	}

	return operatorv1.NewOperatorClient(conn), ctx, cleanup, nil
}

func getClientConn(state map[string]string) (*grpc.ClientConn, error) {
	address, ok := state[rpcServerStateKey]
	if !ok {
		return nil, errors.New("set rpcserver with `config set rpcserver`")
	}

	opts := []grpc.DialOption{grpc.WithDefaultCallOptions(maxMsgRecvSize)}

	if certPath := state[tlsCertStateKey]; certPath != "" {
		cert, err := os.ReadFile(certPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read TLS certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(cert) {
			return nil, fmt.Errorf("invalid TLS certificate %s", certPath)
		}
		opts = append(opts, grpc.WithTransportCredentials(
			credentials.NewTLS(&tls.Config{RootCAs: pool}),
		))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.Dial(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to RPC server: %v", err)
	}

	return conn, nil
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[basket] %v\n", err)
	}
	os.Exit(1)
}
