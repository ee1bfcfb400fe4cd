// Package metrics содержит счётчики Prometheus для операций записи на воркшопы.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций для метки outcome.
const (
	OutcomeRegistered        = "registered"
	OutcomeWaitlisted        = "waitlisted"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeAlreadyWaitlisted = "already_waitlisted"
	OutcomeConflict          = "schedule_conflict"
	OutcomeNotFound          = "not_found"
	OutcomeCancelled         = "cancelled"
	OutcomeError             = "error"
)

// Registration — счётчики сервиса записи.
type Registration struct {
	Attempts    *prometheus.CounterVec
	Unregisters *prometheus.CounterVec
	Demoted     prometheus.Counter
}

// NewRegistration создаёт счётчики и регистрирует их в reg. nil reg — счётчики без регистрации.
func NewRegistration(reg prometheus.Registerer) *Registration {
	m := &Registration{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workshops",
			Name:      "register_attempts_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		Unregisters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workshops",
			Name:      "unregister_total",
			Help:      "Unregister calls by outcome.",
		}, []string{"outcome"}),
		Demoted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "workshops",
			Name:      "demoted_registrations_total",
			Help:      "Registrations cancelled because workshop capacity shrank.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Attempts, m.Unregisters, m.Demoted)
	}
	return m
}

// Attempt учитывает попытку записи с результатом outcome.
func (m *Registration) Attempt(outcome string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(outcome).Inc()
}

// Unregister учитывает отмену записи с результатом outcome.
func (m *Registration) Unregister(outcome string) {
	if m == nil {
		return
	}
	m.Unregisters.WithLabelValues(outcome).Inc()
}

// AddDemoted учитывает n отменённых при уменьшении вместимости регистраций.
func (m *Registration) AddDemoted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Demoted.Add(float64(n))
}
