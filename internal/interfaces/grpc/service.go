package grpcinterface

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/soheilhy/cmux"
	"github.com/tdex-network/basketd/internal/core/application"
	interfaces "github.com/tdex-network/basketd/internal/interfaces"
	grpchandler "github.com/tdex-network/basketd/internal/interfaces/grpc/handler"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/interceptor"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/operatorv1"
	"github.com/tdex-network/basketd/internal/interfaces/grpc/permissions"
	"google.golang.org/grpc"
)

const (
	// OperatorTLSKeyFile is the name of the TLS key file for the Operator
	// interface.
	OperatorTLSKeyFile = "key.pem"
	// OperatorTLSCertFile is the name of the TLS certificate file for the
	// Operator interface.
	OperatorTLSCertFile = "cert.pem"
)

type service struct {
	opts    ServiceOpts
	server  *grpc.Server
	httpSrv *http.Server
	mux     cmux.CMux
}

type ServiceOpts struct {
	Address string
	// NoTLS disables TLS, otherwise key and cert are generated in the
	// datadir unless given.
	NoTLS                bool
	Datadir              string
	TLSLocation          string
	TLSKey               string
	TLSCert              string
	OperatorExtraIPs     []string
	OperatorExtraDomains []string
	// APISecret signs the JWTs of the authenticated calls.
	APISecret string
	// WithMetrics exposes the prometheus registry at /metrics.
	WithMetrics bool

	Engine *application.Engine
}

func (o ServiceOpts) validate() error {
	if !isValidAddress(o.Address) {
		return fmt.Errorf("invalid address %s", o.Address)
	}
	if !pathExists(o.Datadir) {
		return fmt.Errorf("%s: datadir must be an existing directory", o.Datadir)
	}
	if (o.TLSKey == "") != (o.TLSCert == "") {
		return fmt.Errorf("TLS requires both key and certificate")
	}
	for _, ip := range o.OperatorExtraIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("invalid operator extra ip %s", ip)
		}
	}
	if o.APISecret == "" {
		return fmt.Errorf("missing api secret")
	}
	if o.Engine == nil {
		return fmt.Errorf("engine must not be null")
	}
	return permissions.Validate()
}

func (o ServiceOpts) tlsDatadir() string {
	return filepath.Join(o.Datadir, o.TLSLocation)
}

func (o ServiceOpts) tlsKey() string {
	if o.NoTLS {
		return ""
	}
	if o.TLSKey != "" {
		return o.TLSKey
	}
	return filepath.Join(o.tlsDatadir(), OperatorTLSKeyFile)
}

func (o ServiceOpts) tlsCert() string {
	if o.NoTLS {
		return ""
	}
	if o.TLSCert != "" {
		return o.TLSCert
	}
	return filepath.Join(o.tlsDatadir(), OperatorTLSCertFile)
}

// NewService returns the gRPC Operator interface serving grpc, grpc-web and
// the metrics endpoint on the same port.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	if !opts.NoTLS && opts.TLSKey == "" {
		if err := ensureSelfSignedCert(
			opts.tlsDatadir(), opts.OperatorExtraIPs, opts.OperatorExtraDomains,
		); err != nil {
			return nil, err
		}
	}

	return &service{opts: opts}, nil
}

func (s *service) Start() error {
	server := grpc.NewServer(
		interceptor.UnaryInterceptor(s.opts.APISecret),
		interceptor.StreamInterceptor(s.opts.APISecret),
	)
	operatorv1.RegisterOperatorServer(
		server, grpchandler.NewOperatorHandler(s.opts.Engine),
	)

	lis, err := listen(s.opts.Address, s.opts.tlsKey(), s.opts.tlsCert())
	if err != nil {
		return err
	}

	s.server = server
	s.httpSrv = newHTTPServer(s.opts.Address, server, s.opts.WithMetrics)
	s.mux = serveMux(lis, server, s.httpSrv)

	log.Infof("operator interface is listening on %s", s.opts.Address)
	return nil
}

func (s *service) Stop() {
	if s.server == nil {
		return
	}
	s.httpSrv.Close()
	s.server.GracefulStop()
	s.mux.Close()
	log.Debug("disabled operator interface")
}

func makeDirectoryIfNotExists(path string) error {
	if pathExists(path) {
		return nil
	}
	return os.MkdirAll(path, os.ModeDir|0755)
}

func pathExists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}
