package interceptor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"github.com/tdex-network/basketd/internal/core/application/caller"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/permissions"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const authHeader = "authorization"

// NewAuthToken returns a JWT identifying subject, signed with the api secret.
func NewAuthToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:  subject,
		IssuedAt: now.Unix(),
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(secret))
}

func unaryAuthHandler(secret string) grpc.UnaryServerInterceptor {
	allPermissions := permissions.AllPermissionsByMethod()

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		ctx, err := authenticate(ctx, secret, allPermissions, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func streamAuthHandler(secret string) grpc.StreamServerInterceptor {
	allPermissions := permissions.AllPermissionsByMethod()

	return func(
		srv interface{}, ss grpc.ServerStream,
		info *grpc.StreamServerInfo, handler grpc.StreamHandler,
	) error {
		ctx, err := authenticate(ss.Context(), secret, allPermissions, info.FullMethod)
		if err != nil {
			return err
		}
		wrapped := middleware.WrapServerStream(ss)
		wrapped.WrappedContext = ctx
		return handler(srv, wrapped)
	}
}

// authenticate sets the subject of a valid bearer token as the caller of
// the request. Methods with write permissions reject anonymous requests.
func authenticate(
	ctx context.Context, secret string,
	allPermissions map[string]permissions.Op, method string,
) (context.Context, error) {
	op, ok := allPermissions[method]
	if !ok {
		return nil, status.Errorf(
			codes.Unimplemented, "%s: unknown permissions required for method", method,
		)
	}

	subject, err := subjectFromMetadata(ctx, secret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	if subject == "" && op.RequiresAuth() {
		return nil, status.Errorf(
			codes.Unauthenticated, "%s %s requires authentication", op.Action, op.Entity,
		)
	}
	if subject == "" {
		return ctx, nil
	}
	return caller.WithCaller(ctx, subject), nil
}

func subjectFromMetadata(ctx context.Context, secret string) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}
	values := md.Get(authHeader)
	if len(values) == 0 {
		return "", nil
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(values[0], "Bearer "))
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("invalid auth token: %s", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid auth token")
	}
	return claims.Subject, nil
}
