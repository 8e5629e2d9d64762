package routes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tts-guard-backend/db"
	"tts-guard-backend/internal/testutil"
	"tts-guard-backend/middleware"
	"tts-guard-backend/token"
	"tts-guard-backend/users/repositories"
	"tts-guard-backend/users/routes"
	"tts-guard-backend/users/services"

	"github.com/gofiber/fiber/v2"
)

const (
	adminEmail    = "admin@ttsguard.ae"
	adminPassword = "ChangeMe123!"
	symmetricKey  = "12345678901234567890123456789012"
)

type response struct {
	status  int
	body    map[string]interface{}
	cookies map[string]*http.Cookie
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	gdb := testutil.DB(t)
	if err := db.EnsureStaffUser(gdb); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	maker, err := token.NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Fatalf("maker: %v", err)
	}
	appCtx := &middleware.AppContext{
		PasetoMaker: maker,
		Ctx:         context.Background(),
		Sessions:    token.NewMemorySessionStore(),
	}
	users := services.NewUserService(repositories.NewUserRepository(gdb), services.NewLoginLimiter(time.Minute, 3))

	app := fiber.New()
	routes.AuthRouterInit(app.Group("/api/v1"), users, appCtx)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string, cookies ...*http.Cookie) response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, body: map[string]interface{}{}, cookies: map[string]*http.Cookie{}}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out.body); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	}
	for _, c := range resp.Cookies() {
		out.cookies[c.Name] = c
	}
	return out
}

func login(t *testing.T, app *fiber.App, email, password string) response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	return do(t, app, http.MethodPost, "/api/v1/auth/login", string(body))
}

func TestLoginAndMe(t *testing.T) {
	app := newApp(t)

	res := login(t, app, "  ADMIN@ttsguard.ae ", adminPassword)
	if res.status != http.StatusOK {
		t.Fatalf("login status = %d, body %v", res.status, res.body)
	}
	access, refresh := res.cookies["access_token"], res.cookies["refresh_token"]
	if access == nil || refresh == nil || access.Value == "" || refresh.Value == "" {
		t.Fatalf("session cookies not set: %v", res.cookies)
	}
	if !access.HttpOnly {
		t.Fatalf("access cookie must be http-only")
	}
	data := res.body["data"].(map[string]interface{})
	if _, leaked := data["password"]; leaked {
		t.Fatalf("password hash serialized: %v", data)
	}

	me := do(t, app, http.MethodGet, "/api/v1/auth/me", "", access)
	if me.status != http.StatusOK {
		t.Fatalf("me status = %d", me.status)
	}
	profile := me.body["data"].(map[string]interface{})
	if profile["email"] != adminEmail || profile["role"] != "admin" {
		t.Fatalf("profile = %v", profile)
	}
	if profile["last_login_at"] == nil {
		t.Fatalf("last_login_at not recorded")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", adminEmail, "nope"},
		{"unknown user", "ghost@ttsguard.ae", adminPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := login(t, app, tt.email, tt.password)
			if res.status != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", res.status)
			}
			if _, ok := res.cookies["access_token"]; ok {
				t.Fatalf("cookie set on failed login")
			}
		})
	}
}

func TestLoginThrottled(t *testing.T) {
	app := newApp(t)

	for i := 0; i < 3; i++ {
		if res := login(t, app, adminEmail, "wrong"); res.status != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d", i+1, res.status)
		}
	}
	if res := login(t, app, adminEmail, adminPassword); res.status != http.StatusTooManyRequests {
		t.Fatalf("throttled login status = %d, want 429", res.status)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newApp(t)

	if res := do(t, app, http.MethodGet, "/api/v1/auth/me", ""); res.status != http.StatusUnauthorized {
		t.Fatalf("no cookie status = %d", res.status)
	}
	garbage := &http.Cookie{Name: "access_token", Value: "v2.local.garbage"}
	if res := do(t, app, http.MethodGet, "/api/v1/auth/me", "", garbage); res.status != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", res.status)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	app := newApp(t)
	res := login(t, app, adminEmail, adminPassword)
	refresh := res.cookies["refresh_token"]

	rotated := do(t, app, http.MethodGet, "/api/v1/auth/me", "", refresh)
	if rotated.status != http.StatusOK {
		t.Fatalf("refresh status = %d", rotated.status)
	}
	next := rotated.cookies["refresh_token"]
	if next == nil || next.Value == refresh.Value {
		t.Fatalf("refresh token not rotated")
	}

	if reused := do(t, app, http.MethodGet, "/api/v1/auth/me", "", refresh); reused.status != http.StatusUnauthorized {
		t.Fatalf("reused refresh token status = %d, want 401", reused.status)
	}
	if again := do(t, app, http.MethodGet, "/api/v1/auth/me", "", next); again.status != http.StatusOK {
		t.Fatalf("rotated refresh token status = %d", again.status)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	app := newApp(t)
	res := login(t, app, adminEmail, adminPassword)
	access, refresh := res.cookies["access_token"], res.cookies["refresh_token"]

	out := do(t, app, http.MethodPost, "/api/v1/auth/logout", "", access, refresh)
	if out.status != http.StatusOK {
		t.Fatalf("logout status = %d", out.status)
	}
	if c := out.cookies["access_token"]; c == nil || c.Value != "" {
		t.Fatalf("access cookie not cleared: %v", c)
	}

	if after := do(t, app, http.MethodGet, "/api/v1/auth/me", "", refresh); after.status != http.StatusUnauthorized {
		t.Fatalf("refresh after logout status = %d, want 401", after.status)
	}
}

func TestAdminManagesUsers(t *testing.T) {
	app := newApp(t)
	admin := login(t, app, adminEmail, adminPassword).cookies["access_token"]

	body := `{"full_name":"Sara Tech","email":"sara@ttsguard.ae","password":"Fire$afe2026","role":"technician"}`
	created := do(t, app, http.MethodPost, "/api/v1/users", body, admin)
	if created.status != http.StatusCreated {
		t.Fatalf("create status = %d, body %v", created.status, created.body)
	}
	if dup := do(t, app, http.MethodPost, "/api/v1/users", body, admin); dup.status != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", dup.status)
	}
	weak := `{"full_name":"Weak","email":"weak@ttsguard.ae","password":"short","role":"technician"}`
	if bad := do(t, app, http.MethodPost, "/api/v1/users", weak, admin); bad.status != http.StatusBadRequest {
		t.Fatalf("weak password status = %d, want 400", bad.status)
	}

	tech := login(t, app, "sara@ttsguard.ae", "Fire$afe2026").cookies["access_token"]
	if forbidden := do(t, app, http.MethodGet, "/api/v1/users", "", tech); forbidden.status != http.StatusForbidden {
		t.Fatalf("technician listing users status = %d, want 403", forbidden.status)
	}

	id := created.body["data"].(map[string]interface{})["id"].(string)
	if res := do(t, app, http.MethodPatch, "/api/v1/users/"+id+"/status", `{"active":false}`, admin); res.status != http.StatusOK {
		t.Fatalf("deactivate status = %d", res.status)
	}
	if res := login(t, app, "sara@ttsguard.ae", "Fire$afe2026"); res.status != http.StatusUnauthorized {
		t.Fatalf("inactive login status = %d, want 401", res.status)
	}

	list := do(t, app, http.MethodGet, "/api/v1/users?role=technician", "", admin)
	if list.status != http.StatusOK {
		t.Fatalf("list status = %d", list.status)
	}
}
