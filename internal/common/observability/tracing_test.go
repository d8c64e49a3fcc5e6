package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"complaint-portal/internal/common/config"
)

func TestTracingOptions_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	opts, err := tracingOptions(context.Background(), config.TracingConfig{Exporter: "stdout", SampleRatio: 1}, &buf)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(opts...)
	_, span := tp.Tracer("test").Start(context.Background(), "notification.deliver")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tp.Shutdown(ctx))

	assert.Contains(t, buf.String(), `"Name":"notification.deliver"`)
}

func TestTracingOptions_SampleRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  int
	}{
		{"everything", 1, 1},
		{"nothing", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := TracingOptions(context.Background(), config.TracingConfig{Exporter: "none", SampleRatio: tt.ratio})
			require.NoError(t, err)

			recorder := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(append(opts, sdktrace.WithSpanProcessor(recorder))...)
			defer tp.Shutdown(context.Background())

			_, span := tp.Tracer("test").Start(context.Background(), "complaint.update_status")
			span.End()
			assert.Len(t, recorder.Ended(), tt.want)
		})
	}
}

func TestNewSpanExporter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TracingConfig
		wantNil bool
		wantErr string
	}{
		{name: "none", cfg: config.TracingConfig{Exporter: "none"}, wantNil: true},
		{name: "unset", cfg: config.TracingConfig{}, wantNil: true},
		{name: "stdout", cfg: config.TracingConfig{Exporter: "stdout"}},
		{name: "otlp host and port", cfg: config.TracingConfig{Exporter: "otlp", Endpoint: "127.0.0.1:4317", Insecure: true}},
		{name: "otlp url", cfg: config.TracingConfig{Exporter: "otlp", Endpoint: "http://127.0.0.1:4317"}},
		{name: "unknown", cfg: config.TracingConfig{Exporter: "zipkin"}, wantErr: `unknown span exporter "zipkin"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := newSpanExporter(context.Background(), tt.cfg, &bytes.Buffer{})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, exp)
				return
			}
			require.NotNil(t, exp)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			assert.NoError(t, exp.Shutdown(ctx))
		})
	}
}
