// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"github.com/holomush/warden/internal/auth"
)

// Metrics contains the authentication metrics. It implements
// auth.LoginListener so a SessionRegistry can report into it directly.
type Metrics struct {
	LoginAttempts  *prometheus.CounterVec
	Logouts        prometheus.Counter
	ActiveSessions prometheus.Gauge
	Validations    *prometheus.CounterVec
}

// NewMetrics creates and registers the authentication metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_login_attempts_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		Logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warden_logouts_total",
			Help: "Total number of ended session bindings",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warden_active_sessions",
			Help: "Number of sessions currently bound to a user",
		}),
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_credential_validations_total",
				Help: "Total number of credential validations by credential kind and result",
			},
			[]string{"kind", "result"},
		),
	}

	reg.MustRegister(m.LoginAttempts, m.Logouts, m.ActiveSessions, m.Validations)

	// Pre-create outcome series so dashboards see zeros.
	for _, o := range auth.LoginOutcomes() {
		m.LoginAttempts.WithLabelValues(o.String())
	}
	return m
}

// OnLogin implements auth.LoginListener.
func (m *Metrics) OnLogin(auth.Binding) {
	m.LoginAttempts.WithLabelValues(auth.LoginSuccess.String()).Inc()
	m.ActiveSessions.Inc()
}

// OnLogout implements auth.LoginListener.
func (m *Metrics) OnLogout(auth.Binding) {
	m.Logouts.Inc()
	m.ActiveSessions.Dec()
}

// OnLoginFailed implements auth.LoginListener.
func (m *Metrics) OnLoginFailed(_, _ string, outcome auth.LoginOutcome) {
	m.LoginAttempts.WithLabelValues(outcome.String()).Inc()
}

// InstrumentValidator wraps v so every validation is counted.
func (m *Metrics) InstrumentValidator(v auth.CredentialValidator) auth.CredentialValidator {
	return &instrumentedValidator{next: v, counter: m.Validations}
}

type instrumentedValidator struct {
	next    auth.CredentialValidator
	counter *prometheus.CounterVec
}

func (v *instrumentedValidator) Supports(c auth.Credential) bool {
	return v.next.Supports(c)
}

func (v *instrumentedValidator) Validate(ctx context.Context, locale language.Tag, c auth.Credential) auth.ValidationResult {
	result := v.next.Validate(ctx, locale, c)
	label := "success"
	if result.IsFailure() {
		label = "failure"
	}
	v.counter.WithLabelValues(c.Kind(), label).Inc()
	return result
}

var _ auth.LoginListener = (*Metrics)(nil)
