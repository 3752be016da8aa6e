package grpchandler

import (
	"context"

	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
)

func (h *operatorHandler) AddWebhook(
	ctx context.Context, req *operatorv1.AddWebhookRequest,
) (*operatorv1.AddWebhookResponse, error) {
	if err := h.engine.Protocol().RequireGovernance(ctx); err != nil {
		return nil, err
	}
	id, err := h.engine.PubSub().AddWebhook(
		ctx, req.Event, req.Endpoint, req.Secret,
	)
	if err != nil {
		return nil, err
	}
	return &operatorv1.AddWebhookResponse{ID: id}, nil
}

func (h *operatorHandler) RemoveWebhook(
	ctx context.Context, req *operatorv1.RemoveWebhookRequest,
) (*operatorv1.Empty, error) {
	if err := h.engine.Protocol().RequireGovernance(ctx); err != nil {
		return nil, err
	}
	if err := h.engine.PubSub().RemoveWebhook(ctx, req.ID); err != nil {
		return nil, err
	}
	return &operatorv1.Empty{}, nil
}

func (h *operatorHandler) ListWebhooks(
	ctx context.Context, req *operatorv1.ListWebhooksRequest,
) (*operatorv1.ListWebhooksResponse, error) {
	webhooks, err := h.engine.PubSub().ListWebhooks(ctx, req.Event)
	if err != nil {
		return nil, err
	}
	return &operatorv1.ListWebhooksResponse{Webhooks: webhooks}, nil
}
