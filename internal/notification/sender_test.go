package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"mime"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"complaint-portal/internal/common/errors"
	"complaint-portal/internal/common/logger"
	"complaint-portal/internal/common/metrics"
	"complaint-portal/internal/models"
)

// ==========================
// Helpers
// ==========================

func aliceRequest() models.NotificationRequest {
	return models.NotificationRequest{
		RecipientEmail: "alice@school.edu",
		ComplaintType:  "Lab",
		StudentName:    "Alice",
		Status:         "in_progress",
		ComplaintID:    "c-42",
	}
}

func stubConfig(srv *smtpsStub) Config {
	return Config{
		Host:        srv.host(),
		Port:        srv.port(),
		Username:    "mailer",
		Password:    "s3cret",
		FromAddress: "noreply@school.edu",
		FromName:    "Complaint Portal",
	}
}

func observedLogger() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewZapAdapter(zap.New(core)), logs
}

type decodedMessage struct {
	Header netmail.Header
	Body   string
}

func decode(t *testing.T, raw []byte) decodedMessage {
	t.Helper()
	msg, err := netmail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	var r io.Reader = msg.Body
	if msg.Header.Get("Content-Transfer-Encoding") == "quoted-printable" {
		r = quotedprintable.NewReader(msg.Body)
	}
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	return decodedMessage{Header: msg.Header, Body: string(body)}
}

// ==========================
// Missing credentials
// ==========================

func TestSendStatusUpdate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		missing []string
	}{
		{"no user", func(c *Config) { c.Username = "" }, []string{"SMTP_USER"}},
		{"no password", func(c *Config) { c.Password = "" }, []string{"SMTP_PASSWORD"}},
		{"no from address", func(c *Config) { c.FromAddress = "" }, []string{"EMAILS_FROM_EMAIL"}},
		{"nothing set", func(c *Config) {
			c.Username, c.Password, c.FromAddress = "", "", ""
		}, []string{"SMTP_USER", "SMTP_PASSWORD", "EMAILS_FROM_EMAIL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newSMTPSStub(t, false)
			cfg := stubConfig(srv)
			tt.mutate(&cfg)

			log, logs := observedLogger()
			before := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(metrics.OutcomeConfigurationMissing))

			sender := NewSender(cfg, SenderDependencies{Logger: log, TLSConfig: srv.clientTLS()})
			result := sender.SendStatusUpdate(context.Background(), aliceRequest())

			assert.False(t, result.Sent)
			require.NotNil(t, result.Err)
			assert.Equal(t, errors.ErrCodeConfigurationMissing, result.Code())
			assert.Equal(t, tt.missing, result.Err.Metadata["missing"])
			assert.Equal(t, 0, srv.connectionCount(), "no connection may be attempted")

			warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
			require.Len(t, warns, 1)
			assert.Equal(t, "alice@school.edu", warns[0].ContextMap()["to"])
			assert.Empty(t, logs.FilterLevelExact(zapcore.ErrorLevel).All())

			after := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(metrics.OutcomeConfigurationMissing))
			assert.Equal(t, before+1, after)
		})
	}
}

// ==========================
// Successful delivery
// ==========================

func TestSendStatusUpdate_DeliversOverImplicitTLS(t *testing.T) {
	srv := newSMTPSStub(t, false)
	log, logs := observedLogger()

	sender := NewSender(stubConfig(srv), SenderDependencies{Logger: log, TLSConfig: srv.clientTLS()})
	result := sender.SendStatusUpdate(context.Background(), aliceRequest())

	require.True(t, result.Sent, "result error: %v", result.Err)
	assert.Nil(t, result.Err)
	assert.Equal(t, 1, srv.connectionCount())

	msgs := srv.received()
	require.Len(t, msgs, 1)
	assert.Equal(t, "noreply@school.edu", msgs[0].From)
	assert.Equal(t, []string{"alice@school.edu"}, msgs[0].To)
	assert.Contains(t, msgs[0].Auth, "AUTH PLAIN")

	m := decode(t, msgs[0].Data)
	assert.Equal(t, "Complaint Status Update - Lab", m.Header.Get("Subject"))

	from, err := m.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "Complaint Portal", from[0].Name)
	assert.Equal(t, "noreply@school.edu", from[0].Address)

	to, err := m.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "alice@school.edu", to[0].Address)

	mediaType, _, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "text/html", mediaType)

	assert.Contains(t, m.Body, "Dear Alice,")
	assert.Contains(t, m.Body, "Your Lab complaint (ID: <strong>c-42</strong>)")
	assert.Contains(t, m.Body, "Status: IN_PROGRESS")
	assert.Contains(t, m.Body, "Please do not reply to this email.")

	infos := logs.FilterLevelExact(zapcore.InfoLevel).All()
	require.Len(t, infos, 1)
	assert.Equal(t, "alice@school.edu", infos[0].ContextMap()["to"])
}

func TestSendStatusUpdate_EachCallIsIndependent(t *testing.T) {
	srv := newSMTPSStub(t, false)
	sender := NewSender(stubConfig(srv), SenderDependencies{
		Logger:    logger.NewTestLogger(t),
		TLSConfig: srv.clientTLS(),
	})

	first := sender.SendStatusUpdate(context.Background(), aliceRequest())
	second := sender.SendStatusUpdate(context.Background(), aliceRequest())

	assert.True(t, first.Sent)
	assert.True(t, second.Sent)
	assert.Equal(t, 2, srv.connectionCount())

	msgs := srv.received()
	require.Len(t, msgs, 2)
	assert.Equal(t, decode(t, msgs[0].Data).Body, decode(t, msgs[1].Data).Body)
}

func TestSendStatusUpdate_UppercasesStatus(t *testing.T) {
	for _, status := range []string{"pending", "in_progress", "resolved", "Resolved"} {
		t.Run(status, func(t *testing.T) {
			srv := newSMTPSStub(t, false)
			sender := NewSender(stubConfig(srv), SenderDependencies{
				Logger:    logger.NewTestLogger(t),
				TLSConfig: srv.clientTLS(),
			})

			req := aliceRequest()
			req.Status = status
			require.True(t, sender.SendStatusUpdate(context.Background(), req).Sent)

			msgs := srv.received()
			require.Len(t, msgs, 1)
			body := decode(t, msgs[0].Data).Body
			assert.Contains(t, body, "Status: "+strings.ToUpper(status))
		})
	}
}

// ==========================
// Delivery failures
// ==========================

func TestSendStatusUpdate_AuthRejected(t *testing.T) {
	srv := newSMTPSStub(t, true)
	log, logs := observedLogger()
	before := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(metrics.OutcomeDeliveryFailure))

	sender := NewSender(stubConfig(srv), SenderDependencies{Logger: log, TLSConfig: srv.clientTLS()})

	var result Result
	require.NotPanics(t, func() {
		result = sender.SendStatusUpdate(context.Background(), aliceRequest())
	})

	assert.False(t, result.Sent)
	assert.Equal(t, errors.ErrCodeDeliveryFailure, result.Code())
	assert.Contains(t, result.Err.Details, "535")
	assert.Empty(t, srv.received())

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Equal(t, "alice@school.edu", errs[0].ContextMap()["to"])
	assert.Contains(t, errs[0].ContextMap()["error"], "535")
	assert.Empty(t, logs.FilterLevelExact(zapcore.InfoLevel).All())

	after := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(metrics.OutcomeDeliveryFailure))
	assert.Equal(t, before+1, after)
}

func TestSendStatusUpdate_ConnectionRefused(t *testing.T) {
	cfg := Config{
		Host:        "127.0.0.1",
		Port:        closedPort(t),
		Username:    "mailer",
		Password:    "s3cret",
		FromAddress: "noreply@school.edu",
		FromName:    "Complaint Portal",
	}
	log, logs := observedLogger()

	result := NewSender(cfg, SenderDependencies{Logger: log}).SendStatusUpdate(context.Background(), aliceRequest())

	assert.False(t, result.Sent)
	assert.Equal(t, errors.ErrCodeDeliveryFailure, result.Code())
	assert.Len(t, logs.FilterLevelExact(zapcore.ErrorLevel).All(), 1)
}

func TestSendStatusUpdate_UntrustedCertificate(t *testing.T) {
	srv := newSMTPSStub(t, false)

	// No injected roots: the stub's self-signed certificate must be refused.
	result := NewSender(stubConfig(srv), SenderDependencies{Logger: logger.NewTestLogger(t)}).
		SendStatusUpdate(context.Background(), aliceRequest())

	assert.False(t, result.Sent)
	assert.Equal(t, errors.ErrCodeDeliveryFailure, result.Code())
	assert.Empty(t, srv.received())
}

func TestSendStatusUpdate_RecipientRejectedByParser(t *testing.T) {
	srv := newSMTPSStub(t, false)
	sender := NewSender(stubConfig(srv), SenderDependencies{
		Logger:    logger.NewTestLogger(t),
		TLSConfig: srv.clientTLS(),
	})

	req := aliceRequest()
	req.RecipientEmail = "not an address"
	result := sender.SendStatusUpdate(context.Background(), req)

	assert.False(t, result.Sent)
	assert.Equal(t, errors.ErrCodeDeliveryFailure, result.Code())
	assert.Empty(t, srv.received())
}

func TestSendStatusUpdate_RecoversTransportPanic(t *testing.T) {
	srv := newSMTPSStub(t, false)
	tlsCfg := srv.clientTLS()
	tlsCfg.VerifyPeerCertificate = func([][]byte, [][]*x509.Certificate) error {
		panic("verifier exploded")
	}
	log, logs := observedLogger()

	var result Result
	require.NotPanics(t, func() {
		result = NewSender(stubConfig(srv), SenderDependencies{Logger: log, TLSConfig: tlsCfg}).
			SendStatusUpdate(context.Background(), aliceRequest())
	})

	assert.False(t, result.Sent)
	assert.Equal(t, errors.ErrCodeDeliveryFailure, result.Code())
	assert.Contains(t, result.Err.Details, "verifier exploded")
	assert.Len(t, logs.FilterLevelExact(zapcore.ErrorLevel).All(), 1)
}

// ==========================
// Tracing
// ==========================

func TestSendStatusUpdate_RecordsSpan(t *testing.T) {
	srv := newSMTPSStub(t, false)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	sender := NewSender(stubConfig(srv), SenderDependencies{
		Logger:    logger.NewTestLogger(t),
		TLSConfig: srv.clientTLS(),
		Tracer:    tp.Tracer("notification-test"),
	})
	require.True(t, sender.SendStatusUpdate(context.Background(), aliceRequest()).Sent)

	cfg := stubConfig(srv)
	cfg.Password = ""
	NewSender(cfg, SenderDependencies{Tracer: tp.Tracer("notification-test")}).
		SendStatusUpdate(context.Background(), aliceRequest())

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "notification.deliver", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("notification.outcome", metrics.OutcomeSent))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Contains(t, spans[1].Attributes(), attribute.String("notification.outcome", metrics.OutcomeConfigurationMissing))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

// ==========================
// Construction
// ==========================

func TestNewSender_FillsServerName(t *testing.T) {
	base := &tls.Config{MinVersion: tls.VersionTLS12}
	s := NewSender(Config{Host: "smtp.school.edu"}, SenderDependencies{TLSConfig: base})

	assert.Equal(t, "smtp.school.edu", s.tlsConfig.ServerName)
	assert.Empty(t, base.ServerName, "caller's config must not be mutated")
	assert.Equal(t, "smtp.school.edu", s.Config().Host)
}
