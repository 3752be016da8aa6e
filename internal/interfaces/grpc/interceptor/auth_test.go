package interceptor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/application/caller"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/permissions"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const secret = "secret"

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	valid, err := NewAuthToken(secret, "governance", time.Hour)
	require.NoError(t, err)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "governance",
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	wrongSecret, err := NewAuthToken("other", "governance", time.Hour)
	require.NoError(t, err)

	read := operatorv1.FullMethod("GetBasket")
	write := operatorv1.FullMethod("PauseTrading")

	tests := []struct {
		name           string
		method         string
		token          string
		expectedCaller string
		expectedCode   codes.Code
	}{
		{"anonymous read", read, "", "", codes.OK},
		{"authenticated read", read, valid, "governance", codes.OK},
		{"authenticated write", write, valid, "governance", codes.OK},
		{"anonymous write", write, "", "", codes.Unauthenticated},
		{"expired token", read, expired, "", codes.Unauthenticated},
		{"wrong secret", write, wrongSecret, "", codes.Unauthenticated},
		{"malformed token", write, "not-a-jwt", "", codes.Unauthenticated},
		{"unknown method", "/unknown/Method", valid, "", codes.Unimplemented},
	}

	all := permissions.AllPermissionsByMethod()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			if tt.token != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(
					authHeader, fmt.Sprintf("Bearer %s", tt.token),
				))
			}

			ctx, err := authenticate(ctx, secret, all, tt.method)
			if tt.expectedCode != codes.OK {
				require.Equal(t, tt.expectedCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expectedCaller, caller.FromContext(ctx))
		})
	}
}

func TestToStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err          error
		expectedCode codes.Code
	}{
		{domain.ErrGovernanceOnly, codes.PermissionDenied},
		{fmt.Errorf("%w: USDC", domain.ErrAssetNotFound), codes.NotFound},
		{domain.ErrReentrant, codes.Aborted},
		{domain.ErrPausedOrFrozen, codes.FailedPrecondition},
		{domain.ErrOutOfRange, codes.InvalidArgument},
		{status.Error(codes.Canceled, "canceled"), codes.Canceled},
		{fmt.Errorf("boom"), codes.Internal},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expectedCode, status.Code(toStatus(tt.err)), tt.err.Error())
	}
}
