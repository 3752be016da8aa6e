package grpchandler

import (
	"context"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/pkg/fixed"
)

func (h *operatorHandler) RegisterAsset(
	ctx context.Context, req *operatorv1.AssetRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		return h.engine.Registry().Register(ctx, req.Asset)
	})
}

func (h *operatorHandler) SwapRegisteredAsset(
	ctx context.Context, req *operatorv1.AssetRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		return h.engine.Registry().SwapRegistered(ctx, req.Asset)
	})
}

func (h *operatorHandler) UnregisterAsset(
	ctx context.Context, req *operatorv1.UnregisterAssetRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		return h.engine.Registry().Unregister(ctx, req.ERC20)
	})
}

func (h *operatorHandler) RefreshAssets(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.Empty, error) {
	return h.do(ctx, h.engine.Registry().Refresh)
}

func (h *operatorHandler) ListAssets(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.ListAssetsResponse, error) {
	res := &operatorv1.ListAssetsResponse{}
	err := h.engine.Do(ctx, func(ctx context.Context) error {
		set, err := h.engine.Registry().Assets(ctx)
		if err != nil {
			return err
		}
		now := h.engine.Clock().Now()
		list := set.List()
		res.Assets = make([]operatorv1.AssetInfo, 0, len(list))
		for _, a := range list {
			res.Assets = append(res.Assets, operatorv1.AssetInfo{
				Asset:  a,
				Status: a.Status(now).String(),
				Price:  a.Price(now),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) SetPrimeBasket(
	ctx context.Context, req *operatorv1.SetPrimeBasketRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		if req.Force {
			return h.engine.Basket().ForceSetPrimeBasket(ctx, req.ERC20s, req.TargetAmts)
		}
		return h.engine.Basket().SetPrimeBasket(ctx, req.ERC20s, req.TargetAmts)
	})
}

func (h *operatorHandler) SetBackupConfig(
	ctx context.Context, req *operatorv1.SetBackupConfigRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		return h.engine.Basket().SetBackupConfig(ctx, req.TargetName, req.Max, req.ERC20s)
	})
}

func (h *operatorHandler) RefreshBasket(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.BasketResponse, error) {
	res := &operatorv1.BasketResponse{}
	err := h.engine.Do(ctx, func(ctx context.Context) error {
		b, err := h.engine.Basket().RefreshBasket(ctx)
		res.Basket = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) GetBasket(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.GetBasketResponse, error) {
	res := &operatorv1.GetBasketResponse{}
	err := h.engine.Do(ctx, func(ctx context.Context) error {
		svc := h.engine.Basket()
		b, state, err := svc.Current(ctx)
		if err != nil {
			return err
		}
		status, err := svc.Status(ctx)
		if err != nil {
			return err
		}
		ready, err := svc.IsReady(ctx)
		if err != nil {
			return err
		}
		held, err := svc.BasketsHeldBy(ctx, domain.BackingManagerAccount)
		if err != nil {
			return err
		}
		collateralized, err := svc.FullyCollateralized(ctx)
		if err != nil {
			return err
		}
		price, err := svc.Price(ctx, false)
		if err != nil {
			return err
		}

		res.Basket, res.State = b, state
		res.Status = status.String()
		res.Ready = ready
		res.Held = held
		res.FullyCollateralized = collateralized
		res.Price = price
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) GetHistoricalBasket(
	ctx context.Context, req *operatorv1.GetHistoricalBasketRequest,
) (*operatorv1.BasketResponse, error) {
	res := &operatorv1.BasketResponse{}
	err := h.engine.Do(ctx, func(ctx context.Context) error {
		b, err := h.engine.Basket().GetHistoricalBasket(ctx, req.Nonce)
		res.Basket = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) QuoteBasket(
	ctx context.Context, req *operatorv1.QuoteBasketRequest,
) (*operatorv1.QuoteBasketResponse, error) {
	rnd := fixed.Floor
	if req.RoundUp {
		rnd = fixed.Ceil
	}

	res := &operatorv1.QuoteBasketResponse{}
	err := h.engine.Do(ctx, func(ctx context.Context) error {
		erc20s, quantities, err := h.engine.Basket().Quote(ctx, req.Amount, rnd, false)
		res.ERC20s, res.Quantities = erc20s, quantities
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) SetWarmupPeriod(
	ctx context.Context, req *operatorv1.SetWarmupPeriodRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		return h.engine.Basket().SetWarmupPeriod(ctx, req.Period)
	})
}
