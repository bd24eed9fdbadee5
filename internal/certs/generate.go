// Package certs provisions a self-signed certificate so the portal can serve
// HTTPS on a local network without an external CA.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
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
	certFile = "server.crt"
	keyFile  = "server.key"

	validity = 365 * 24 * time.Hour
	// renewBefore regenerates a certificate this close to expiry
	renewBefore = 30 * 24 * time.Hour
)

// EnsureCertificates returns the certificate and key paths inside certDir,
// generating a fresh pair when none exists or the existing one is about to
// expire. extraHosts are added to the SAN list next to localhost.
func EnsureCertificates(certDir string, extraHosts ...string) (certPath, keyPath string, err error) {
	certPath = filepath.Join(certDir, certFile)
	keyPath = filepath.Join(certDir, keyFile)

	if pair, err := tls.LoadX509KeyPair(certPath, keyPath); err == nil && pair.Leaf != nil {
		if time.Until(pair.Leaf.NotAfter) > renewBefore {
			return certPath, keyPath, nil
		}
	}

	if err := os.MkdirAll(certDir, 0700); err != nil {
		return "", "", fmt.Errorf("failed to create cert directory: %w", err)
	}
	if err := generateSelfSignedCert(certPath, keyPath, extraHosts); err != nil {
		return "", "", fmt.Errorf("failed to generate certificates: %w", err)
	}
	return certPath, keyPath, nil
}

// sanEntries splits hosts into DNS names and IP addresses
func sanEntries(extraHosts []string) ([]string, []net.IP) {
	dnsNames := []string{"localhost"}
	ips := []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")}

	if hostname, _ := os.Hostname(); hostname != "" {
		dnsNames = append(dnsNames, hostname)
	}
	for _, h := range extraHosts {
		if h == "" {
			continue
		}
		if ip := net.ParseIP(h); ip != nil {
			ips = append(ips, ip)
		} else {
			dnsNames = append(dnsNames, h)
		}
	}
	return dnsNames, ips
}

func generateSelfSignedCert(certPath, keyPath string, extraHosts []string) error {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	dnsNames, ips := sanEntries(extraHosts)
	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"Sangguniang Kabataan"},
			Country:      []string{"PH"},
			CommonName:   "SK Portal",
		},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           ips,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	if err := writePEM(certPath, 0644, "CERTIFICATE", certDER); err != nil {
		return err
	}
	return writePEM(keyPath, 0600, "EC PRIVATE KEY", keyDER)
}

func writePEM(path string, mode os.FileMode, blockType string, der []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
