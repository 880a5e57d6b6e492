package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/v1/inventory/:productId", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	for _, p := range []string{"/api/v1/inventory/1", "/api/v1/inventory/2"} {
		if _, err := app.Test(httptest.NewRequest("GET", p, nil)); err != nil {
			t.Fatal(err)
		}
	}

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/v1/inventory/:productId", "404"))
	if got != 2 {
		t.Fatalf("requests_total = %v, want 2", got)
	}
}

func TestBusinessCountersRegistered(t *testing.T) {
	m := NewMetrics()
	m.StockUpdates.Inc()
	m.CatalogFailures.WithLabelValues("get").Inc()
	m.ListOmitted.Add(3)

	if v := testutil.ToFloat64(m.ListOmitted); v != 3 {
		t.Fatalf("omitted = %v", v)
	}
	n, err := testutil.GatherAndCount(m.Registry, "stockroom_stock_updates_total", "stockroom_catalog_lookup_failures_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("gathered %d series", n)
	}
}

func TestSetupTracingWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}
