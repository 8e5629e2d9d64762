package routes_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tts-guard-backend/clients/repositories"
	"tts-guard-backend/clients/routes"
	"tts-guard-backend/clients/services"
	"tts-guard-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	directory := services.NewDirectoryService(db, repositories.NewClientRepository(db), nil, nil, nil)

	app := fiber.New()
	routes.ClientRouterInit(app.Group("/api/v1"), directory, nil)
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

func TestBuildingForUnknownClientIs404(t *testing.T) {
	app, _ := newApp(t)

	body := `{"client_id":"` + uuid.NewString() + `","name":"Ghost Tower","address":"Nowhere"}`
	status, resp := do(t, app, http.MethodPost, "/api/v1/buildings", body)
	if status != fiber.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (%v)", status, resp)
	}
	if resp["message"] == nil || resp["error"] == nil {
		t.Fatalf("error body must carry message and error: %v", resp)
	}
}

func TestContractLifecycleOverHTTP(t *testing.T) {
	app, db := newApp(t)
	client := testutil.SeedClient(t, db, "Al Reem Properties")
	building := testutil.SeedBuilding(t, db, client.ID, "Sky Tower")

	contract := `{"building_id":"` + building.ID.String() + `","contract_number":"AMC-9","annual_value":"96000","start_date":"2026-01-01","end_date":"2099-12-31"}`

	status, resp := do(t, app, http.MethodPost, "/api/v1/contracts", contract)
	if status != fiber.StatusCreated {
		t.Fatalf("create contract: got %d (%v)", status, resp)
	}
	data := resp["data"].(map[string]interface{})

	contract = strings.Replace(contract, "AMC-9", "AMC-10", 1)
	if status, resp = do(t, app, http.MethodPost, "/api/v1/contracts", contract); status != fiber.StatusConflict {
		t.Fatalf("duplicate active contract: got %d, want 409 (%v)", status, resp)
	}

	expirePath := "/api/v1/contracts/" + data["id"].(string) + "/expire"
	if status, resp = do(t, app, http.MethodPost, expirePath, ""); status != fiber.StatusOK {
		t.Fatalf("expire: got %d (%v)", status, resp)
	}
	if status, _ = do(t, app, http.MethodPost, expirePath, ""); status != fiber.StatusConflict {
		t.Fatalf("expire twice: got %d, want 409", status)
	}
	if status, _ = do(t, app, http.MethodPost, "/api/v1/contracts/not-a-uuid/expire", ""); status != fiber.StatusBadRequest {
		t.Fatalf("bad id: got %d, want 400", status)
	}
}

func TestListClientsPaginates(t *testing.T) {
	app, db := newApp(t)
	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		testutil.SeedClient(t, db, name)
	}

	status, resp := do(t, app, http.MethodGet, "/api/v1/clients?page=1&page_size=2", "")
	if status != fiber.StatusOK {
		t.Fatalf("list: got %d", status)
	}
	items := resp["items"].([]interface{})
	meta := resp["pagination"].(map[string]interface{})
	if len(items) != 2 || meta["total_items"].(float64) != 3 || meta["next_page"] == nil {
		t.Fatalf("unexpected page: items=%d meta=%v", len(items), meta)
	}

	if status, _ := do(t, app, http.MethodGet, "/api/v1/clients?page_size=500", ""); status != fiber.StatusBadRequest {
		t.Fatalf("oversized page: got %d, want 400", status)
	}
}
