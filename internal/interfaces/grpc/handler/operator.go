package grpchandler

import (
	"context"

	"github.com/tdex-network/basketd/internal/core/application"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
)

type operatorHandler struct {
	engine *application.Engine
}

// NewOperatorHandler is a constructor function returning an OperatorServer.
// Every call runs inside the engine, one at a time.
func NewOperatorHandler(engine *application.Engine) operatorv1.OperatorServer {
	return newOperatorHandler(engine)
}

func newOperatorHandler(engine *application.Engine) *operatorHandler {
	return &operatorHandler{engine}
}

func (h *operatorHandler) GetProtocolState(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.GetProtocolStateResponse, error) {
	res := &operatorv1.GetProtocolStateResponse{}
	err := h.engine.Do(ctx, func(ctx context.Context) error {
		state, err := h.engine.Protocol().GetState(ctx)
		if err != nil {
			return err
		}
		now := h.engine.Clock().Now()
		res.State = state
		res.CurrentTime = now
		res.Frozen = state.IsFrozen(now)
		res.TradingOpen = !state.IsTradingPausedOrFrozen(now)
		res.IssuanceOpen = !state.IsIssuancePausedOrFrozen(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (h *operatorHandler) PauseTrading(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.Empty, error) {
	return h.do(ctx, h.engine.Protocol().PauseTrading)
}

func (h *operatorHandler) UnpauseTrading(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.Empty, error) {
	return h.do(ctx, h.engine.Protocol().UnpauseTrading)
}

func (h *operatorHandler) PauseIssuance(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.Empty, error) {
	return h.do(ctx, h.engine.Protocol().PauseIssuance)
}

func (h *operatorHandler) UnpauseIssuance(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.Empty, error) {
	return h.do(ctx, h.engine.Protocol().UnpauseIssuance)
}

func (h *operatorHandler) Freeze(
	ctx context.Context, req *operatorv1.FreezeRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		return h.engine.Protocol().Freeze(ctx, req.Duration)
	})
}

func (h *operatorHandler) FreezeForever(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.Empty, error) {
	return h.do(ctx, h.engine.Protocol().FreezeForever)
}

func (h *operatorHandler) Unfreeze(
	ctx context.Context, _ *operatorv1.Empty,
) (*operatorv1.Empty, error) {
	return h.do(ctx, h.engine.Protocol().Unfreeze)
}

func (h *operatorHandler) SetBasketsNeeded(
	ctx context.Context, req *operatorv1.SetBasketsNeededRequest,
) (*operatorv1.Empty, error) {
	return h.do(ctx, func(ctx context.Context) error {
		return h.engine.Protocol().SetBasketsNeeded(ctx, req.Amount)
	})
}

// do runs fn in the engine for calls with an empty reply.
func (h *operatorHandler) do(
	ctx context.Context, fn func(ctx context.Context) error,
) (*operatorv1.Empty, error) {
	if err := h.engine.Do(ctx, fn); err != nil {
		return nil, err
	}
	return &operatorv1.Empty{}, nil
}
