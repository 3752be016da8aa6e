package grpcinterface

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/soheilhy/cmux"
	"golang.org/x/net/http2"
	"google.golang.org/grpc"
)

const metricsPath = "/metrics"

func isValidAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host != "" && net.ParseIP(host) == nil {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p > 1024 && p < 65536
}

// listen opens the tcp listener, wrapped with TLS if a key pair is given.
func listen(address, tlsKey, tlsCert string) (net.Listener, error) {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	if tlsKey == "" {
		return lis, nil
	}

	cert, err := tls.LoadX509KeyPair(tlsCert, tlsKey)
	if err != nil {
		lis.Close()
		return nil, fmt.Errorf("failed to load operator key pair: %w", err)
	}
	return tls.NewListener(lis, &tls.Config{
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{http2.NextProtoTLS, "http/1.1"},
		Certificates: []tls.Certificate{cert},
	}), nil
}

// serveMux splits lis between the native gRPC server and the http one
// hosting grpc-web and metrics.
func serveMux(
	lis net.Listener, grpcServer *grpc.Server, httpServer *http.Server,
) cmux.CMux {
	mux := cmux.New(lis)
	grpcL := mux.MatchWithWriters(
		cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"),
	)
	httpL := mux.Match(cmux.HTTP1Fast())

	go serve("grpc", func() error { return grpcServer.Serve(grpcL) })
	go serve("http", func() error { return httpServer.Serve(httpL) })
	go serve("mux", mux.Serve)
	return mux
}

func serve(name string, fn func() error) {
	if err := fn(); err != nil && err != http.ErrServerClosed &&
		err != grpc.ErrServerStopped && err != cmux.ErrListenerClosed {
		log.WithError(err).Debugf("operator %s server stopped", name)
	}
}

type httpHandler struct {
	grpcWeb *grpcweb.WrappedGrpcServer
	metrics http.Handler
}

func newHTTPServer(
	addr string, grpcServer *grpc.Server, withMetrics bool,
) *http.Server {
	handler := &httpHandler{
		grpcWeb: grpcweb.WrapServer(
			grpcServer,
			grpcweb.WithCorsForRegisteredEndpointsOnly(false),
			grpcweb.WithOriginFunc(func(string) bool { return true }),
		),
	}
	if withMetrics {
		handler.metrics = promhttp.Handler()
	}
	return &http.Server{Addr: addr, Handler: handler}
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch {
	case h.metrics != nil && req.Method == http.MethodGet &&
		req.URL.Path == metricsPath:
		h.metrics.ServeHTTP(w, req)
	case h.grpcWeb.IsGrpcWebRequest(req),
		h.grpcWeb.IsAcceptableGrpcCorsRequest(req):
		h.grpcWeb.ServeHTTP(w, req)
	default:
		http.NotFound(w, req)
	}
}
