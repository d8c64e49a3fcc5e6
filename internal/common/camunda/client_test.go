package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaint-portal/internal/common/config"
	"complaint-portal/internal/common/errors"
	"complaint-portal/internal/common/metrics"
)

func newTestClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

// ==========================
// ExecuteWithRetry
// ==========================

func TestExecuteWithRetry_SucceedsAfterTransientErrors(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "create-instance")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("process definition not found")
	}, "create-instance")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.HasCode(err, errors.ErrCodeResourceNotFound))
}

func TestExecuteWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	c := newTestClient(2)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("context deadline exceeded")
	}, "publish-message")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTimeout))
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := newTestClient(5)
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		cancel()
		return nil, stderrors.New("unavailable")
	}, "publish-message")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"dial tcp 127.0.0.1:26500: connection refused", true},
		{"rpc error: code = Unavailable", true},
		{"i/o timeout", true},
		{"broken pipe", true},
		{"invalid argument: bpmnProcessId", false},
		{"NOT_FOUND: process not found", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestClientConfigFrom(t *testing.T) {
	cc := ClientConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 5000})
	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.True(t, cc.UsePlaintextConnection)
	assert.Equal(t, 5*time.Second, cc.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cc.RetryConfig)
}

// ==========================
// Instrument
// ==========================

func TestInstrument_TracksActiveJobs(t *testing.T) {
	const taskType = "instrument-test"
	var during float64

	rec := &recordingJobRecorder{}

	h := Instrument(taskType, func(client worker.JobClient, job entities.Job) {
		during = testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType))
	}, rec)
	h(nil, entities.Job{})

	assert.Equal(t, float64(1), during)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
	assert.Equal(t, []string{taskType + ":handled"}, rec.processed)
	assert.Equal(t, 1, rec.durations)
}

func TestInstrument_NilRecorder(t *testing.T) {
	called := false
	h := Instrument("instrument-nil", func(worker.JobClient, entities.Job) { called = true }, nil)
	assert.NotPanics(t, func() { h(nil, entities.Job{}) })
	assert.True(t, called)
}

type recordingJobRecorder struct {
	processed []string
	durations int
}

func (r *recordingJobRecorder) RecordJobProcessed(_ context.Context, taskType, status string) {
	r.processed = append(r.processed, taskType+":"+status)
}

func (r *recordingJobRecorder) RecordJobDuration(context.Context, string, time.Duration, string) {
	r.durations++
}
