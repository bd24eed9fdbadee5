package certs

import (
	"crypto/tls"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureCertificates(t *testing.T) {
	dir := t.TempDir()

	certPath, keyPath, err := EnsureCertificates(dir, "sk.local", "192.168.1.20")
	require.NoError(t, err)

	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	require.NoError(t, err)
	require.Contains(t, pair.Leaf.DNSNames, "localhost")
	require.Contains(t, pair.Leaf.DNSNames, "sk.local")
	require.Equal(t, "SK Portal", pair.Leaf.Subject.CommonName)

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// A valid pair is reused as is
	before, err := os.ReadFile(certPath)
	require.NoError(t, err)
	_, _, err = EnsureCertificates(dir)
	require.NoError(t, err)
	after, err := os.ReadFile(certPath)
	require.NoError(t, err)
	require.Equal(t, before, after)
}
