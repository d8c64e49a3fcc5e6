// Package notification sends complaint status emails over SMTPS.
//
// A send is synchronous and one-shot: a fresh implicit-TLS session per call,
// no queue and no retry. Every failure is logged and reported through Result,
// never returned as an error or a panic.
package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	mail "gopkg.in/mail.v2"

	"complaint-portal/internal/common/errors"
	"complaint-portal/internal/common/logger"
	"complaint-portal/internal/common/metrics"
	"complaint-portal/internal/models"
)

// Result is the outcome of a send. Err is nil exactly when Sent is true and
// carries CONFIGURATION_MISSING or DELIVERY_FAILURE otherwise.
type Result struct {
	Sent bool
	Err  *errors.StandardError
}

// Code returns the error code, or "" for a successful send.
func (r Result) Code() errors.ErrorCode {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}

// SenderDependencies are the optional collaborators of a Sender.
// A nil Logger or Tracer falls back to a no-op; a nil TLSConfig verifies the
// server certificate against the system roots for Config.Host.
type SenderDependencies struct {
	Logger    logger.Logger
	Tracer    trace.Tracer
	TLSConfig *tls.Config
}

type Sender struct {
	cfg       Config
	logger    logger.Logger
	tracer    trace.Tracer
	tlsConfig *tls.Config
}

func NewSender(cfg Config, deps SenderDependencies) *Sender {
	s := &Sender{
		cfg:       cfg,
		logger:    deps.Logger,
		tracer:    deps.Tracer,
		tlsConfig: deps.TLSConfig,
	}
	if s.logger == nil {
		s.logger = logger.NewNoOpLogger()
	}
	if s.tracer == nil {
		s.tracer = tracenoop.NewTracerProvider().Tracer("notification")
	}
	if s.tlsConfig != nil && s.tlsConfig.ServerName == "" {
		s.tlsConfig = s.tlsConfig.Clone()
		s.tlsConfig.ServerName = cfg.Host
	}
	return s
}

// Config returns a copy of the sender's configuration.
func (s *Sender) Config() Config {
	return s.cfg
}

// SendStatusUpdate emails req.RecipientEmail that their complaint moved to
// req.Status. ctx scopes tracing only; it does not cancel a send in flight.
func (s *Sender) SendStatusUpdate(ctx context.Context, req models.NotificationRequest) Result {
	subject := StatusUpdateSubject(req.ComplaintType)
	body := StatusUpdateBody(req)
	return s.deliver(ctx, req.RecipientEmail, subject, body)
}

func (s *Sender) deliver(ctx context.Context, to, subject, htmlBody string) (result Result) {
	_, span := s.tracer.Start(ctx, "notification.deliver", trace.WithAttributes(
		attribute.String("smtp.host", s.cfg.Host),
		attribute.Int("smtp.port", s.cfg.Port),
	))
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeSent
		switch result.Code() {
		case errors.ErrCodeConfigurationMissing:
			outcome = metrics.OutcomeConfigurationMissing
		case errors.ErrCodeDeliveryFailure:
			outcome = metrics.OutcomeDeliveryFailure
		}
		metrics.NotificationsTotal.WithLabelValues(outcome).Inc()
		if outcome != metrics.OutcomeConfigurationMissing {
			metrics.NotificationDeliveryDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		}

		span.SetAttributes(attribute.String("notification.outcome", outcome))
		if result.Err != nil {
			span.SetStatus(codes.Error, result.Err.Details)
		}
		span.End()
	}()

	if missing := s.cfg.MissingCredentials(); len(missing) > 0 {
		s.logger.Warn("Email credentials not configured, email not sent", map[string]interface{}{
			"missing": missing,
			"to":      to,
		})
		return Result{Err: errors.NewConfigurationMissingError(missing)}
	}

	s.logger.Debug("Sending email", map[string]interface{}{
		"to":   to,
		"smtp": s.cfg.Address(),
	})

	if err := s.send(to, subject, htmlBody); err != nil {
		s.logger.Error("Failed to send email", map[string]interface{}{
			"to":    to,
			"error": err.Error(),
		})
		return Result{Err: errors.NewDeliveryFailureError(to, err)}
	}

	s.logger.Info("Email sent successfully", map[string]interface{}{"to": to})
	return Result{Sent: true}
}

// send performs one SMTPS exchange. A panic inside the transport is turned
// into an error so callers only ever see a Result.
func (s *Sender) send(to, subject, htmlBody string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("smtp transport panic: %v", r)
		}
	}()

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromAddress, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.SSL = true
	d.RetryFailure = false
	d.TLSConfig = s.tlsConfig

	return d.DialAndSend(m)
}
