package grpchandler

import (
	"context"
	"errors"

	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
)

var (
	// ErrMissingCaller is returned by calls that act on behalf of the caller.
	ErrMissingCaller = errors.New("missing caller identity")
	// ErrMissingAccount ...
	ErrMissingAccount = errors.New("missing account")
)

func (h *operatorHandler) GetBalances(
	ctx context.Context, req *operatorv1.GetBalancesRequest,
) (*operatorv1.GetBalancesResponse, error) {
	if req.Account == "" {
		return nil, ErrMissingAccount
	}

	res := &operatorv1.GetBalancesResponse{}
	if err := h.engine.Do(ctx, func(ctx context.Context) error {
		balances, err := h.engine.Ledger().Balances(ctx, req.Account)
		res.Balances = balances
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Mint credits new tokens to an account, used to fund the simulated ledger.
func (h *operatorHandler) Mint(
	ctx context.Context, req *operatorv1.MintRequest,
) (*operatorv1.Empty, error) {
	if req.To == "" {
		return nil, ErrMissingAccount
	}
	return h.do(ctx, func(ctx context.Context) error {
		if err := h.engine.Protocol().RequireGovernance(ctx); err != nil {
			return err
		}
		return h.engine.Ledger().Mint(ctx, req.To, req.Token, req.Amount)
	})
}

func (h *operatorHandler) ListDestinations(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.DestinationsResponse, error) {
	res := &operatorv1.DestinationsResponse{}
	if err := h.engine.Do(ctx, func(_ context.Context) error {
		res.Destinations = h.engine.Distributor().Destinations()
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) SetDestinations(
	ctx context.Context, req *operatorv1.SetDestinationsRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		if err := h.engine.Protocol().RequireGovernance(ctx); err != nil {
			return err
		}
		return h.engine.Distributor().SetDestinations(req.Destinations)
	})
}
