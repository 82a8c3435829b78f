// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "assetwallet"
	metricsSubsystem = "chain"

	outcomeSuccess       = "success"
	outcomeRemoteError   = "remote_error"
	outcomeTransportFail = "transport_error"
)

// Metrics holds the prometheus collectors for requests made to the remote
// service. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the request collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "requests_total",
			Help:      "Requests sent to the remote service.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to the remote service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	if err := reg.Register(m.requests); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}

	return m, nil
}

// observe records the outcome and latency of a single request.
func (m *Metrics) observe(endpoint string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}

	outcome := outcomeSuccess

	var remoteErr *RemoteServiceError
	switch {
	case err == nil:

	case errors.As(err, &remoteErr):
		outcome = outcomeRemoteError

	default:
		outcome = outcomeTransportFail
	}

	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
