package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPDialListenRoundTrip(t *testing.T) {
	ln, err := ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		s := NewStream(conn)
		buf := make([]byte, 5)
		io.ReadFull(s, buf)
		s.Write(buf)
		s.Flush()
	}()

	host, port := splitHostPort(t, ln.Addr().String())

	dialer := TCPDialer{Timeout: 2 * time.Second}
	stream, err := dialer.Dial(Destination{Host: host, Port: port})
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, stream.Flush())

	buf := make([]byte, 5)
	_, err = io.ReadFull(stream, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	<-done
}

func TestTLSHandshakeHostnameMismatch(t *testing.T) {
	cert := generateSelfSignedCert(t, "correct-host.example")

	tlsLn, err := ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer tlsLn.Close()

	listener := NewTLSListener(tlsLn, &tls.Config{Certificates: []tls.Certificate{cert}})

	go func() {
		conn, err := listener.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	_, port := splitHostPort(t, tlsLn.Addr().String())

	dialer := TLSDialer{TCPDialer: TCPDialer{Timeout: 2 * time.Second}}
	// Dial with a Destination whose Host does not match the
	// certificate's SAN: the handshake must fail on hostname
	// verification, not merely "connection refused".
	_, err = dialer.Dial(Destination{Host: "wrong-host.example", Port: port, Secure: true})
	assert.Error(t, err)
}

func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func generateSelfSignedCert(t *testing.T, commonName string) tls.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		DNSNames:     []string{commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)
	return cert
}
