package interceptor

import (
	"context"
	"errors"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/infrastructure/batchauction"
	"github.com/tdex-network/basketd/internal/infrastructure/distributor"
	"github.com/tdex-network/basketd/pkg/fixed"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	code codes.Code
	errs []error
}{
	{codes.PermissionDenied, []error{
		domain.ErrGovernanceOnly,
		domain.ErrNotTrader,
		domain.ErrOnlyOrigin,
	}},
	{codes.NotFound, []error{
		domain.ErrAssetNotFound,
		domain.ErrBasketNotFound,
		domain.ErrTradeNotFound,
		domain.ErrNoTradeOpen,
		domain.ErrStateNotFound,
		batchauction.ErrAuctionNotFound,
	}},
	{codes.AlreadyExists, []error{
		domain.ErrAssetAlreadyRegistered,
		domain.ErrTradeAlreadyOpen,
	}},
	{codes.Aborted, []error{
		domain.ErrReentrant,
	}},
	{codes.FailedPrecondition, []error{
		domain.ErrPausedOrFrozen,
		domain.ErrFrozen,
		domain.ErrBasketNotReady,
		domain.ErrBasketNotDisabled,
		domain.ErrTradesOpen,
		domain.ErrTradingDelay,
		domain.ErrAlreadyCollateralized,
		domain.ErrUndercollateralized,
		domain.ErrAuctionNotOver,
		domain.ErrAuctionNotOngoing,
		domain.ErrAuctionKindDisabled,
		domain.ErrInvalidTradeState,
		domain.ErrNoPrimeBasket,
		domain.ErrInsufficientBalance,
		batchauction.ErrAuctionClosed,
		batchauction.ErrAuctionNotEnded,
	}},
	{codes.InvalidArgument, []error{
		domain.ErrInvalidBasket,
		domain.ErrInvalidBackupConfig,
		domain.ErrOutOfRange,
		domain.ErrInvalidPortions,
		domain.ErrInvalidNonce,
		domain.ErrInvalidAsset,
		domain.ErrNotCollateral,
		domain.ErrUnknownAuctionKind,
		domain.ErrInvalidTradeRequest,
		domain.ErrBadSellPricing,
		domain.ErrBadBuyPricing,
		domain.ErrDuplicateToken,
		batchauction.ErrBidTooLow,
		batchauction.ErrInvalidBid,
		distributor.ErrEmptyTable,
		distributor.ErrDuplicateAccount,
		distributor.ErrInvalidDestination,
		distributor.ErrUnsupportedToken,
		fixed.ErrNegative,
		fixed.ErrOverflow,
	}},
}

// unaryErrorHandler converts the errors returned by the handlers into gRPC
// statuses.
func unaryErrorHandler(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	res, err := handler(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return res, nil
}

func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, c := range errorCodes {
		for _, e := range c.errs {
			if errors.Is(err, e) {
				return status.Error(c.code, err.Error())
			}
		}
	}
	return status.Error(codes.Internal, err.Error())
}
