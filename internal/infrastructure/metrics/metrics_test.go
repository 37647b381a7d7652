package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bebidas-api/internal/application/inventory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	m := New(false)

	m.ObserveOperation(inventory.OpStockOut, "OK")
	m.ObserveOperation(inventory.OpStockOut, "OK")
	m.ObserveOperation(inventory.OpStockOut, "INSUFFICIENT_STOCK")
	m.AddUnits(inventory.DirectionIn, 24)
	m.AddUnits(inventory.DirectionOut, 5)
	m.AddUnits(inventory.DirectionOut, 0)
	m.AddQuarantined(3)
	m.AddQuarantined(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(inventory.OpStockOut, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(inventory.OpStockOut, "INSUFFICIENT_STOCK")))
	assert.Equal(t, 24.0, testutil.ToFloat64(m.UnitsTotal.WithLabelValues(inventory.DirectionIn)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.UnitsTotal.WithLabelValues(inventory.DirectionOut)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.QuarantinedTotal))
}

func TestNew_RegistrosIndependientes(t *testing.T) {
	a := New(true)
	b := New(true)
	a.AddQuarantined(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.QuarantinedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.QuarantinedTotal))
}

func TestMiddlewareYHandler(t *testing.T) {
	m := New(false)
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/beverages/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/beverages/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/beverages/:id", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "bebidas_http_requests_total"))
}
