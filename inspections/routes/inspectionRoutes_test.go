package routes_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/inspections/repositories"
	"tts-guard-backend/inspections/routes"
	"tts-guard-backend/inspections/services"
	"tts-guard-backend/internal/testutil"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var today = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	svc := services.NewInspectionService(db, repositories.NewInspectionRepository(db), config.DefaultPolicy(), nil, nil, nil).
		WithClock(func() time.Time { return utils.NormalizeDate(today) })

	app := fiber.New()
	routes.InspectionRouterInit(app.Group("/api/v1"), svc)
	return app, db
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return resp.StatusCode, out
}

func TestScheduleUnknownBuildingIs404(t *testing.T) {
	app, _ := newApp(t)

	body := `{"building_id":"` + uuid.NewString() + `","scheduled_date":"2026-03-20","technician":"Ahmed Khan"}`
	status, resp := do(t, app, http.MethodPost, "/api/v1/inspections", body)
	if status != fiber.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (%v)", status, resp)
	}
}

func TestInspectionFlowOverHTTP(t *testing.T) {
	app, db := newApp(t)
	c := testutil.SeedClient(t, db, "Khalifa City Estates")
	b := testutil.SeedBuilding(t, db, c.ID, "KC Villas")

	body := `{"building_id":"` + b.ID.String() + `","scheduled_date":"2026-03-20","technician":"ahmed khan"}`
	status, resp := do(t, app, http.MethodPost, "/api/v1/inspections", body)
	if status != fiber.StatusCreated {
		t.Fatalf("schedule: got %d (%v)", status, resp)
	}
	id := resp["data"].(map[string]interface{})["id"].(string)

	status, resp = do(t, app, http.MethodGet, "/api/v1/inspections?status=scheduled&building_id="+b.ID.String(), "")
	if status != fiber.StatusOK {
		t.Fatalf("list: got %d (%v)", status, resp)
	}
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("list: got %d items, want 1", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["status"] != "scheduled" || !strings.HasPrefix(item["scheduled_date"].(string), "2026-03-20") {
		t.Fatalf("listed inspection: %v", item)
	}

	submit := `{"checks":[{"item":"Fire pump","passed":true},{"item":"Sprinkler valve","passed":false,"remarks":"leaking"}]}`
	status, resp = do(t, app, http.MethodPost, "/api/v1/inspections/"+id+"/submit", submit)
	if status != fiber.StatusOK {
		t.Fatalf("submit: got %d (%v)", status, resp)
	}
	complaints := resp["data"].(map[string]interface{})["complaints"].([]interface{})
	if len(complaints) != 1 {
		t.Fatalf("submit: got %d complaints, want 1", len(complaints))
	}

	status, _ = do(t, app, http.MethodPost, "/api/v1/inspections/"+id+"/submit", submit)
	if status != fiber.StatusConflict {
		t.Fatalf("second submit: got %d, want 409", status)
	}

	status, _ = do(t, app, http.MethodPatch, "/api/v1/inspections/"+id+"/schedule", `{"scheduled_date":"2026-04-01"}`)
	if status != fiber.StatusConflict {
		t.Fatalf("reschedule completed: got %d, want 409", status)
	}

	complaintID := complaints[0].(map[string]interface{})["id"].(string)
	status, _ = do(t, app, http.MethodPost, "/api/v1/complaints/"+complaintID+"/close", `{"resolution":"valve replaced"}`)
	if status != fiber.StatusOK {
		t.Fatalf("close complaint: got %d", status)
	}
	status, _ = do(t, app, http.MethodPost, "/api/v1/complaints/"+complaintID+"/close", "")
	if status != fiber.StatusConflict {
		t.Fatalf("close twice: got %d, want 409", status)
	}
}

func TestBadInputsAre400(t *testing.T) {
	app, db := newApp(t)
	c := testutil.SeedClient(t, db, "Yas Business Park")
	b := testutil.SeedBuilding(t, db, c.ID, "Yas Office Park B")

	tests := []struct {
		name, method, path, body string
	}{
		{"malformed id", http.MethodPost, "/api/v1/inspections/not-a-uuid/submit", `{"checks":[]}`},
		{"bad date", http.MethodPost, "/api/v1/inspections", `{"building_id":"` + b.ID.String() + `","scheduled_date":"20/03/2026","technician":"A"}`},
		{"past date", http.MethodPost, "/api/v1/inspections", `{"building_id":"` + b.ID.String() + `","scheduled_date":"2026-01-01","technician":"A"}`},
		{"empty complaint", http.MethodPost, "/api/v1/complaints", `{"building_id":"` + b.ID.String() + `"}`},
	}
	for _, tt := range tests {
		if status, resp := do(t, app, tt.method, tt.path, tt.body); status != fiber.StatusBadRequest {
			t.Fatalf("%s: got %d, want 400 (%v)", tt.name, status, resp)
		}
	}
}
