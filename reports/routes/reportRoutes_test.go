package routes_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/internal/testutil"
	"tts-guard-backend/reports/repositories"
	"tts-guard-backend/reports/routes"
	"tts-guard-backend/reports/services"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func get(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v (%s)", path, err, raw)
	}
	return resp.StatusCode, out
}

func TestComplianceReportRoutes(t *testing.T) {
	db := testutil.DB(t)
	c := testutil.SeedClient(t, db, "Reem Island Towers")
	b := testutil.SeedBuilding(t, db, c.ID, "Reem Tower 1")
	testutil.SeedInspection(t, db, b.ID, time.Date(2026, time.March, 4, 0, 0, 0, 0, utils.DateLocation), models.CompletedInspection)

	svc := services.NewReportService(repositories.NewReportRepository(db), config.DefaultPolicy(), t.TempDir())
	app := fiber.New()
	routes.ReportRouterInit(app.Group("/api/v1"), svc)

	status, resp := get(t, app, "/api/v1/reports/compliance?year=2026&month=13")
	if status != fiber.StatusBadRequest {
		t.Fatalf("month=13: got %d (%v), want 400", status, resp)
	}
	if resp["error"] == nil {
		t.Fatalf("month=13: expected an error message, got %v", resp)
	}

	status, resp = get(t, app, "/api/v1/reports/compliance?year=2026&month=3")
	if status != fiber.StatusOK {
		t.Fatalf("month=3: got %d (%v), want 200", status, resp)
	}
	data := resp["data"].(map[string]interface{})
	if int(data["month"].(float64)) != 3 || int(data["year"].(float64)) != 2026 {
		t.Fatalf("unexpected period: %v", data)
	}
	totals := data["totals"].(map[string]interface{})
	if int(totals["scheduled"].(float64)) != 1 || int(totals["completed"].(float64)) != 1 {
		t.Fatalf("unexpected totals: %v", totals)
	}
}
