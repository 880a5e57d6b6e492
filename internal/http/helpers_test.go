package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stockroom/internal/catalog"
	"stockroom/internal/config"
	"stockroom/internal/http/handlers"
	"stockroom/internal/repos"
	"stockroom/internal/services"
	"stockroom/internal/telemetry"
)

type testEnv struct {
	app     *fiber.App
	db      *sqlx.DB
	metrics *telemetry.Metrics
}

// newTestApp wires the real app against in-memory sqlite and a fake catalog
// that knows products 7 (Widget) and 3 (Sprocket).
func newTestApp(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = 1000
	}

	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	names := map[string]string{"7": "Widget", "3": "Sprocket"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/products/")
		name, ok := names[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%s,"nombre":%q,"precio":9.99}`, id, name)
	}))
	t.Cleanup(srv.Close)

	m := telemetry.NewMetrics()
	svc := services.NewInventoryService(
		repos.NewStockRepo(db),
		catalog.New(catalog.Config{BaseURL: srv.URL, Timeout: time.Second}),
		services.WithMetrics(m),
		services.WithLogger(zap.L()),
	)
	app := handlers.NewApp(cfg, handlers.NewDeps(svc, m))
	return &testEnv{app: app, db: db, metrics: m}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header map[string]string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func decodeMap(t *testing.T, body string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return m
}
