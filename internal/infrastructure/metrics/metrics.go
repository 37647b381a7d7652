// Package metrics expone contadores Prometheus del inventario y de la API HTTP.
//
// Usa un registro propio (no el global) para que cada instancia sea independiente,
// lo que permite crear varias en pruebas sin colisiones de registro.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bebidas-api/internal/application/inventory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bebidas"

var _ inventory.Recorder = (*Metrics)(nil)

// Metrics agrupa los colectores. Implementa inventory.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal  *prometheus.CounterVec
	UnitsTotal       *prometheus.CounterVec
	QuarantinedTotal prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New crea y registra los colectores. withRuntime añade los colectores de Go y del proceso.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operaciones del motor de inventario por resultado (OK o código de error).",
		}, []string{"operation", "code"}),
		UnitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Botellas ingresadas (in) o retiradas (out).",
		}, []string{"direction"}),
		QuarantinedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quarantined_batches_total",
			Help:      "Lotes pasados a cuarentena por el barrido.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.OperationsTotal, m.UnitsTotal, m.QuarantinedTotal,
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
	)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

func (m *Metrics) ObserveOperation(operation, code string) {
	m.OperationsTotal.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) AddUnits(direction string, n int) {
	if n > 0 {
		m.UnitsTotal.WithLabelValues(direction).Add(float64(n))
	}
}

func (m *Metrics) AddQuarantined(n int) {
	if n > 0 {
		m.QuarantinedTotal.Add(float64(n))
	}
}

// Handler endpoint /metrics en formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware cuenta y mide cada petición. Usa la ruta registrada (/api/beverages/:id), no el path real.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
