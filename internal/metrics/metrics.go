// Package metrics exposes prometheus counters for key derivation, envelope
// and bundle operations. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK    = "ok"
	ResultError = "error"

	ResultThrottled = "throttled"
)

type Metrics struct {
	derivations *prometheus.CounterVec
	envelopes   *prometheus.CounterVec
	bundles     *prometheus.CounterVec
	unlocks     *prometheus.CounterVec
}

// New builds the counters and registers them on reg. A nil reg skips
// registration, which keeps independent instances usable in tests.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	namespace = strings.TrimSpace(namespace)
	m := &Metrics{
		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_total",
			Help:      "Seeds and keypairs derived, by resulting kind.",
		}, []string{"kind"}),
		envelopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelope_ops_total",
			Help:      "Multi-recipient envelope operations, by op and result.",
		}, []string{"op", "result"}),
		bundles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bundle_ops_total",
			Help:      "Passphrase bundle seal/open operations, by op and result.",
		}, []string{"op", "result"}),
		unlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unlock_attempts_total",
			Help:      "Keystore unlock attempts, by result.",
		}, []string{"result"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.derivations, m.envelopes, m.bundles, m.unlocks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveDerivation(kind string) {
	if m == nil {
		return
	}
	m.derivations.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveEnvelope(op string, err error) {
	if m == nil {
		return
	}
	m.envelopes.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) ObserveBundle(op string, err error) {
	if m == nil {
		return
	}
	m.bundles.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) ObserveUnlock(res string) {
	if m == nil {
		return
	}
	m.unlocks.WithLabelValues(res).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
