package interceptor

import (
	middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"google.golang.org/grpc"
)

// UnaryInterceptor returns the unary interceptor chain: logging, JWT
// authentication and error mapping.
func UnaryInterceptor(apiSecret string) grpc.ServerOption {
	return grpc.UnaryInterceptor(
		middleware.ChainUnaryServer(
			unaryLogger,
			unaryAuthHandler(apiSecret),
			unaryErrorHandler,
		),
	)
}

// StreamInterceptor returns the stream interceptor with a logrus log
func StreamInterceptor(apiSecret string) grpc.ServerOption {
	return grpc.StreamInterceptor(
		middleware.ChainStreamServer(
			streamLogger,
			streamAuthHandler(apiSecret),
		),
	)
}
