package grpcinterface

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	certValidity = 365 * 24 * time.Hour
	certPemType  = "CERTIFICATE"
	keyPemType   = "EC PRIVATE KEY"
)

var serialNumberLimit = new(big.Int).Lsh(big.NewInt(1), 128)

// ensureSelfSignedCert writes a self-signed key pair into dir unless both
// files are already there. An existing key is reused for the new cert.
func ensureSelfSignedCert(dir string, extraIPs, extraDomains []string) error {
	if err := makeDirectoryIfNotExists(dir); err != nil {
		return err
	}
	keyPath := filepath.Join(dir, OperatorTLSKeyFile)
	certPath := filepath.Join(dir, OperatorTLSCertFile)
	if pathExists(keyPath) && pathExists(certPath) {
		return nil
	}

	key, err := loadOrNewKey(keyPath)
	if err != nil {
		return err
	}
	host, ips, domains, err := certSubjects(extraIPs, extraDomains)
	if err != nil {
		return err
	}
	serial, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return fmt.Errorf("failed to generate cert serial number: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"basketd"},
			CommonName:   host,
		},
		NotBefore:             now.Add(-24 * time.Hour),
		NotAfter:              now.Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IsCA:                  true,
		BasicConstraintsValid: true,
		DNSNames:              domains,
		IPAddresses:           ips,
	}
	der, err := x509.CreateCertificate(
		rand.Reader, template, template, &key.PublicKey, key,
	)
	if err != nil {
		return fmt.Errorf("failed to create operator cert: %w", err)
	}
	keyDer, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return err
	}

	if err := writePem(certPath, certPemType, der, 0644); err != nil {
		return err
	}
	if err := writePem(keyPath, keyPemType, keyDer, 0600); err != nil {
		os.Remove(certPath)
		return err
	}
	return nil
}

// certSubjects returns the hostname plus every ip and domain the cert is
// valid for: loopbacks, local interfaces and the given extras.
func certSubjects(
	extraIPs, extraDomains []string,
) (string, []net.IP, []string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", nil, nil, err
	}

	seen := make(map[string]bool)
	ips := make([]net.IP, 0)
	addIP := func(ip net.IP) {
		if ip == nil || seen[ip.String()] {
			return
		}
		seen[ip.String()] = true
		ips = append(ips, ip)
	}
	addIP(net.IPv4(127, 0, 0, 1))
	addIP(net.IPv6loopback)
	for _, ip := range extraIPs {
		addIP(net.ParseIP(ip))
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", nil, nil, err
	}
	for _, addr := range addrs {
		if ip, _, err := net.ParseCIDR(addr.String()); err == nil {
			addIP(ip)
		}
	}

	domains := []string{host}
	if host != "localhost" {
		domains = append(domains, "localhost")
	}
	domains = append(domains, extraDomains...)

	return host, ips, domains, nil
}

func loadOrNewKey(path string) (*ecdsa.PrivateKey, error) {
	if !pathExists(path) {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(buf)
	if block == nil || block.Type != keyPemType {
		return nil, fmt.Errorf("%s: no %s block found", path, keyPemType)
	}
	return x509.ParseECPrivateKey(block.Bytes)
}

func writePem(path, blockType string, der []byte, perm os.FileMode) error {
	buf := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	return os.WriteFile(path, buf, perm)
}
