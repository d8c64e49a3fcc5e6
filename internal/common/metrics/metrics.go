package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification outcomes.
const (
	OutcomeSent                 = "sent"
	OutcomeConfigurationMissing = "configuration_missing"
	OutcomeDeliveryFailure      = "delivery_failure"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_emails_total",
			Help: "Status update emails by outcome",
		},
		[]string{"outcome"},
	)

	NotificationDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_delivery_duration_seconds",
			Help:    "Time spent in the SMTP exchange",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	ComplaintStatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_updates_total",
			Help: "Complaint status transitions persisted",
		},
		[]string{"category", "status"},
	)

	StatusCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_cache_lookups_total",
			Help: "Status cache lookups by result",
		},
		[]string{"result"},
	)
)
