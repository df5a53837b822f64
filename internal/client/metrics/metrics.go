// Package metrics counts session and transport events of the client. The
// counters live in a private registry and are dumped to a textfile on exit.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type Metrics struct {
	reg *prometheus.Registry

	probesTotal     *prometheus.CounterVec
	probesDiscarded prometheus.Counter
	probesSkipped   prometheus.Counter

	reauthStarted   prometheus.Counter
	reauthJoined    prometheus.Counter
	reauthCompleted *prometheus.CounterVec

	rpcDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		probesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_probes_total",
				Help: "Total number of session probes by result",
			},
			[]string{"result"},
		),
		probesDiscarded: f.NewCounter(
			prometheus.CounterOpts{
				Name: "session_probes_discarded_total",
				Help: "Total number of probe results dropped because their screen was gone",
			},
		),
		probesSkipped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "session_probes_skipped_total",
				Help: "Total number of probes skipped because one was still pending",
			},
		),
		reauthStarted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "reauth_started_total",
				Help: "Total number of re-login prompts opened",
			},
		),
		reauthJoined: f.NewCounter(
			prometheus.CounterOpts{
				Name: "reauth_joined_total",
				Help: "Total number of session losses that joined an open re-login prompt",
			},
		),
		reauthCompleted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reauth_completed_total",
				Help: "Total number of re-login prompts resolved by outcome",
			},
			[]string{"ok"},
		),
		rpcDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_rpc_duration_seconds",
				Help:    "Duration of backend calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ProbeCompleted(outcome string) {
	m.probesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ProbeDiscarded() { m.probesDiscarded.Inc() }

func (m *Metrics) ProbeSkipped() { m.probesSkipped.Inc() }

func (m *Metrics) ReauthStarted() { m.reauthStarted.Inc() }

func (m *Metrics) ReauthJoined() { m.reauthJoined.Inc() }

func (m *Metrics) ReauthCompleted(ok bool) {
	m.reauthCompleted.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

// UnaryClientInterceptor records the duration and status code of every
// backend call.
func (m *Metrics) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		m.rpcDuration.WithLabelValues(method, status.Code(err).String()).Observe(time.Since(start).Seconds())
		return err
	}
}

// WriteToTextfile dumps all metrics in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
