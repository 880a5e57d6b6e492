package handlers_test

import (
	"net/http"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stockroom/internal/config"
)

func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestAuditAndSecurityLogs(t *testing.T) {
	logs := captureLogs(t)
	env := newTestApp(t, config.Config{AdminTokenHash: adminHash(t)})
	auth := map[string]string{"Authorization": "Bearer " + adminToken}

	if resp, _ := env.do(t, "PUT", "/api/v1/inventory/7", `{"quantity":3}`, auth); resp.StatusCode != http.StatusOK {
		t.Fatalf("put: %d", resp.StatusCode)
	}
	audit := logs.FilterMessage("inventory.update").FilterField(zap.String("kind", "audit")).All()
	if len(audit) != 1 {
		t.Fatalf("audit entries = %d", len(audit))
	}
	if _, ok := audit[0].ContextMap()["req_id"]; !ok {
		t.Fatal("audit entry has no request id")
	}
	if n := logs.FilterField(zap.String("kind", "audit")).Len(); n != 1 {
		t.Fatalf("one update wrote %d audit entries", n)
	}

	env.do(t, "PUT", "/api/v1/inventory/7", `{"quantity":3}`, nil)
	if logs.FilterMessage("access.denied.admin").Len() != 1 {
		t.Fatal("missing access.denied.admin entry")
	}

	env.do(t, "PUT", "/api/v1/inventory/7", `{"quantity":-3}`, auth)
	if logs.FilterMessage("validation.fail").Len() != 1 {
		t.Fatal("missing validation.fail entry")
	}
}
