package routes_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/dashboard/repositories"
	"tts-guard-backend/dashboard/routes"
	"tts-guard-backend/dashboard/services"
	"tts-guard-backend/db"
	"tts-guard-backend/internal/testutil"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
)

var today = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

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

func TestDashboardOverSeededData(t *testing.T) {
	store := testutil.DB(t)
	pinned := utils.NormalizeDate(today)
	if err := db.EnsureSeeded(store, pinned); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	baseline := db.DemoBaseline()

	agg := services.NewAggregator(repositories.NewDashboardRepository(store), nil, config.DefaultPolicy()).
		WithClock(func() time.Time { return pinned })
	app := fiber.New()
	routes.DashboardRouterInit(app.Group("/api/v1"), agg)

	status, resp := get(t, app, "/api/v1/dashboard/overview")
	if status != fiber.StatusOK {
		t.Fatalf("overview: got %d (%v)", status, resp)
	}
	data := resp["data"].(map[string]interface{})
	checks := map[string]int64{
		"active_clients":   baseline.ActiveClients,
		"buildings":        baseline.Buildings,
		"active_contracts": baseline.ActiveContracts,
	}
	for key, want := range checks {
		if got := int64(data[key].(float64)); got != want {
			t.Fatalf("%s: got %d, want %d", key, got, want)
		}
	}
	if n := len(data["overdue_inspections"].([]interface{})); int64(n) != baseline.OverdueInspections {
		t.Fatalf("overdue inspections: got %d, want %d", n, baseline.OverdueInspections)
	}

	status, resp = get(t, app, "/api/v1/dashboard/financial-summary")
	if status != fiber.StatusOK {
		t.Fatalf("financial summary: got %d", status)
	}
	rate := resp["data"].(map[string]interface{})["collection_rate"].(float64)
	if rate < 0 || rate > 1 {
		t.Fatalf("collection rate out of range: %v", rate)
	}

	for _, path := range []string{
		"/api/v1/dashboard/overdue-inspections",
		"/api/v1/dashboard/upcoming-inspections?days=14",
		"/api/v1/dashboard/upcoming-inspections?days=0",
		"/api/v1/dashboard/upcoming-inspections",
		"/api/v1/dashboard/recent-complaints?limit=3",
		"/api/v1/dashboard/client-financials",
		"/api/v1/dashboard/metrics",
	} {
		if status, resp := get(t, app, path); status != fiber.StatusOK {
			t.Fatalf("%s: got %d (%v)", path, status, resp)
		}
	}
	for _, path := range []string{
		"/api/v1/dashboard/upcoming-inspections?days=365",
		"/api/v1/dashboard/upcoming-inspections?days=-2",
	} {
		if status, _ := get(t, app, path); status != fiber.StatusBadRequest {
			t.Fatalf("%s: got %d, want 400", path, status)
		}
	}
}
