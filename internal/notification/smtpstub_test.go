package notification

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type receivedMessage struct {
	Auth string
	From string
	To   []string
	Data []byte
}

// smtpsStub is an implicit-TLS SMTP server good enough for net/smtp. It
// advertises AUTH PLAIN and records every accepted message.
type smtpsStub struct {
	ln         net.Listener
	rootCAs    *x509.CertPool
	rejectAuth bool

	mu          sync.Mutex
	connections int
	open        []net.Conn
	messages    []receivedMessage
	wg          sync.WaitGroup
}

func newSMTPSStub(t *testing.T, rejectAuth bool) *smtpsStub {
	t.Helper()

	cert, pool := selfSignedCert(t)
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	require.NoError(t, err)

	s := &smtpsStub{ln: ln, rootCAs: pool, rejectAuth: rejectAuth}
	s.wg.Add(1)
	go s.acceptLoop()

	t.Cleanup(s.close)
	return s
}

func (s *smtpsStub) host() string {
	return s.ln.Addr().(*net.TCPAddr).IP.String()
}

func (s *smtpsStub) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// clientTLS trusts the stub's certificate.
func (s *smtpsStub) clientTLS() *tls.Config {
	return &tls.Config{RootCAs: s.rootCAs, MinVersion: tls.VersionTLS12}
}

func (s *smtpsStub) connectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

func (s *smtpsStub) received() []receivedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]receivedMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *smtpsStub) close() {
	s.ln.Close()
	s.mu.Lock()
	for _, c := range s.open {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *smtpsStub) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.connections++
		s.open = append(s.open, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(conn)
		}()
	}
}

func (s *smtpsStub) serve(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	tp := textproto.NewConn(conn)
	if err := tp.PrintfLine("220 stub.local ESMTP ready"); err != nil {
		return
	}

	var msg receivedMessage
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])

		switch verb {
		case "EHLO", "HELO":
			_ = tp.PrintfLine("250-stub.local greets you")
			_ = tp.PrintfLine("250-AUTH PLAIN")
			_ = tp.PrintfLine("250 8BITMIME")
		case "AUTH":
			msg.Auth = line
			if s.rejectAuth {
				_ = tp.PrintfLine("535 5.7.8 Authentication credentials invalid")
			} else {
				_ = tp.PrintfLine("235 2.7.0 Authentication successful")
			}
		case "*":
			_ = tp.PrintfLine("501 5.0.0 Authentication cancelled")
		case "MAIL":
			msg.From = angleAddr(line)
			_ = tp.PrintfLine("250 2.1.0 OK")
		case "RCPT":
			msg.To = append(msg.To, angleAddr(line))
			_ = tp.PrintfLine("250 2.1.5 OK")
		case "DATA":
			_ = tp.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			msg.Data = data
			s.mu.Lock()
			s.messages = append(s.messages, msg)
			s.mu.Unlock()
			msg = receivedMessage{Auth: msg.Auth}
			_ = tp.PrintfLine("250 2.0.0 queued")
		case "RSET", "NOOP":
			_ = tp.PrintfLine("250 2.0.0 OK")
		case "QUIT":
			_ = tp.PrintfLine("221 2.0.0 bye")
			return
		default:
			_ = tp.PrintfLine("502 5.5.2 command not recognized")
		}
	}
}

func angleAddr(line string) string {
	start := strings.Index(line, "<")
	end := strings.Index(line, ">")
	if start < 0 || end < start {
		return ""
	}
	return line[start+1 : end]
}

func selfSignedCert(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: "stub.local"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	pool := x509.NewCertPool()
	pool.AddCert(leaf)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}, pool
}

// closedPort returns a loopback port nothing is listening on.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}
