package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgauth "github.com/chemtrade/chemtrade-backend/pkg/auth"
	"github.com/chemtrade/chemtrade-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-test-secret",
		Issuer:            "chemtrade",
		ExpirationMinutes: 60,
	}
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload.Error.Code
}

func TestActorMiddlewareSeedsContext(t *testing.T) {
	cfg := testJWTConfig()
	token, err := pkgauth.Issue(cfg, "调度员-01", "dispatcher")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotActor, gotRole string
	handler := Actor(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = ActorFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotActor != "调度员-01" {
		t.Fatalf("expected actor in context, got %q", gotActor)
	}
	if gotRole != "dispatcher" {
		t.Fatalf("expected role in context, got %q", gotRole)
	}
}

func TestActorMiddlewareMissingHeader(t *testing.T) {
	handler := Actor(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp.Body.Bytes()); code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED got %s", code)
	}
}

func TestActorMiddlewareRejectsTamperedToken(t *testing.T) {
	cfg := testJWTConfig()
	other := cfg
	other.Secret = "some-other-secret"
	token, err := pkgauth.Issue(other, "调度员-01", "dispatcher")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := Actor(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run with a bad signature")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestActorMiddlewareAcceptsRawToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := pkgauth.Issue(cfg, "审核员-02", "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var called bool
	handler := Actor(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if !called {
		t.Fatalf("expected handler to run for a bare token, got %d", resp.Code)
	}
}

func TestRequireRole(t *testing.T) {
	protected := RequireRole("finance", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/approvals", nil)
	resp := httptest.NewRecorder()
	protected.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without role, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/approvals", nil)
	req = req.WithContext(WithRole(req.Context(), "finance"))
	resp = httptest.NewRecorder()
	protected.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with role, got %d", resp.Code)
	}
}
