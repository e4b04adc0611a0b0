// Package metrics define las métricas Prometheus del engine. Paquete
// standalone para evitar ciclos de import entre los servicios y HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests HTTP por método, ruta y status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "Duración de requests HTTP en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"method", "route"})

	ContentOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "content_operations_total",
		Help: "Operaciones del engine de contenido por tipo y resultado",
	}, []string{"op", "result"})

	ValidationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "content_validation_failures_total",
		Help: "Payloads rechazados por el schema de su definición",
	})

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "security_tokens_issued_total",
		Help: "Security tokens emitidos por propósito",
	}, []string{"purpose"})

	TokensConsumedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "security_tokens_consumed_total",
		Help: "Intentos de consumo de security tokens por resultado",
	}, []string{"result"})

	RoleChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "role_changes_total",
		Help: "Mutaciones de roles por scope y resultado",
	}, []string{"scope", "result"})
)

// Register registra todas las métricas en el registry dado (default si nil).
// Idempotente: AlreadyRegisteredError se ignora.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ContentOpsTotal,
		ValidationFailuresTotal,
		TokensIssuedTotal,
		TokensConsumedTotal,
		RoleChangesTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
