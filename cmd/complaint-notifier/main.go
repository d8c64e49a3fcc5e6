package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"complaint-portal/internal/common/camunda"
	"complaint-portal/internal/common/config"
	"complaint-portal/internal/common/database"
	"complaint-portal/internal/common/logger"
	"complaint-portal/internal/common/observability"
	"complaint-portal/internal/complaint"
	"complaint-portal/internal/notification"
	complaintgetstatus "complaint-portal/internal/workers/complaint/get-status"
	complaintlist "complaint-portal/internal/workers/complaint/list"
	complaintsubmit "complaint-portal/internal/workers/complaint/submit"
	complaintupdatestatus "complaint-portal/internal/workers/complaint/update-status"
	statusemail "complaint-portal/internal/workers/notification/status-email"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting complaint notifier",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	traceOpts, err := observability.TracingOptions(ctx, cfg.Tracing)
	if err != nil {
		zapLog.Fatal("tracing setup failed", zap.Error(err))
	}
	obs, err := observability.New(cfg.App.Name, traceOpts...)
	if err != nil {
		zapLog.Warn("otel prometheus exporter unavailable, metrics via otel disabled", zap.Error(err))
	}
	defer obs.Shutdown()
	zapLog.Info("Tracing configured",
		zap.String("exporter", cfg.Tracing.Exporter),
		zap.Float64("sampleRatio", cfg.Tracing.SampleRatio),
	)

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Domain ---
	repo := complaint.NewRepository(pg.DB)
	if err := repo.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("complaints schema", zap.Error(err))
	}

	senderCfg := notification.ConfigFrom(cfg.SMTP)
	if missing := senderCfg.MissingCredentials(); len(missing) > 0 {
		zapLog.Warn("SMTP credentials missing, status emails will be skipped", zap.Strings("missing", missing))
	}
	sender := notification.NewSender(senderCfg, notification.SenderDependencies{
		Logger: log.WithFields(map[string]interface{}{"component": "notification"}),
		Tracer: obs.Tracer(),
	})

	service := complaint.NewService(complaint.ServiceDependencies{
		Store:    repo,
		Cache:    complaint.NewStatusCache(rdb.Client, cfg.Complaints.CacheTTL()),
		Notifier: sender,
		Logger:   log.WithFields(map[string]interface{}{"component": "complaint"}),
	})

	// --- Workers ---
	submitHandler, err := complaintsubmit.NewHandler(complaintsubmit.HandlerOptions{
		AppConfig: cfg, Service: service, Logger: log,
	})
	if err != nil {
		zapLog.Fatal("complaint-submit handler", zap.Error(err))
	}
	updateHandler, err := complaintupdatestatus.NewHandler(complaintupdatestatus.HandlerOptions{
		AppConfig: cfg, Service: service, Logger: log,
	})
	if err != nil {
		zapLog.Fatal("complaint-update-status handler", zap.Error(err))
	}
	getStatusHandler, err := complaintgetstatus.NewHandler(complaintgetstatus.HandlerOptions{
		AppConfig: cfg, Service: service, Logger: log,
	})
	if err != nil {
		zapLog.Fatal("complaint-get-status handler", zap.Error(err))
	}
	listHandler, err := complaintlist.NewHandler(complaintlist.HandlerOptions{
		AppConfig: cfg, Service: service, Logger: log,
	})
	if err != nil {
		zapLog.Fatal("complaint-list handler", zap.Error(err))
	}
	emailHandler, err := statusemail.NewHandler(statusemail.HandlerOptions{
		AppConfig: cfg, Sender: sender, Logger: log,
	})
	if err != nil {
		zapLog.Fatal("complaint-status-email handler", zap.Error(err))
	}

	zc := zeebe.GetClient()
	var workers []worker.JobWorker
	for _, w := range []struct {
		taskType string
		wcfg     config.WorkerConfig
		handle   camunda.HandlerFunc
	}{
		{submitHandler.GetTaskType(), submitHandler.WorkerConfig(), submitHandler.Handle},
		{updateHandler.GetTaskType(), updateHandler.WorkerConfig(), updateHandler.Handle},
		{getStatusHandler.GetTaskType(), getStatusHandler.WorkerConfig(), getStatusHandler.Handle},
		{listHandler.GetTaskType(), listHandler.WorkerConfig(), listHandler.Handle},
		{emailHandler.GetTaskType(), emailHandler.WorkerConfig(), emailHandler.Handle},
	} {
		if jw := camunda.StartWorker(zc, w.taskType, w.wcfg, w.handle, obs, log); jw != nil {
			workers = append(workers, jw)
		}
	}

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: newMux(map[string]Pinger{
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
			"zeebe":    zeebe.HealthCheck,
		}, senderCfg.Ready()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Complaint notifier stopped gracefully")
}
