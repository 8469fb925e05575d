package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	mongorepo "github.com/todolist/todo-api/internal/infrastructure/db/mongo"
	"github.com/todolist/todo-api/internal/pkg/config"
)

// newTestRouter builds a router against an unreachable MongoDB; the driver
// dials lazily so only routes that never touch storage are exercised here.
func newTestRouter(t *testing.T, env map[string]string) *echo.Echo {
	t.Helper()

	cfg, err := config.LoadWith(envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	client, db, err := mongorepo.Connect(context.Background(), mongorepo.Config{
		URI:     "mongodb://127.0.0.1:1/router_test",
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return NewRouter(Options{
		DB:       db,
		Config:   cfg,
		Logger:   zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_TodoValidationNeverReachesStorage(t *testing.T) {
	e := newTestRouter(t, map[string]string{})

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(`{"task":"   "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Task is required and cannot be empty") {
		t.Fatalf("blank task: got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, httptest.NewRequest(http.MethodDelete, "/api/todos/not-an-id", nil))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid todo ID") {
		t.Fatalf("bad id: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_HealthAndRequestID(t *testing.T) {
	e := newTestRouter(t, map[string]string{})

	rec := do(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("expected a generated request id")
	}

	rec = do(e, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
}

func TestRouter_CORS(t *testing.T) {
	e := newTestRouter(t, map[string]string{})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/todos", nil)
		req.Header.Set(echo.HeaderOrigin, origin)
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodDelete)
		return do(e, req)
	}

	rec := preflight("http://localhost:3000")
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:3000" {
		t.Fatalf("allowed origin not echoed, got %q", got)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodDelete) {
		t.Fatalf("DELETE must be allowed, got %q", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	}

	rec = preflight("http://evil.example")
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "" {
		t.Fatalf("unexpected allow-origin for foreign origin: %q", got)
	}
}

func TestRouter_AuthRoutesFollowSecret(t *testing.T) {
	disabled := newTestRouter(t, map[string]string{})
	rec := do(disabled, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("without secret: expected 404, got %d", rec.Code)
	}

	enabled := newTestRouter(t, map[string]string{"JWT_SECRET": "s3cr3t"})
	rec = do(enabled, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("with secret: expected 401, got %d", rec.Code)
	}
}

func TestRouter_WithoutDatabase(t *testing.T) {
	cfg, err := config.LoadWith(envconfig.MapLookuper(map[string]string{"JWT_SECRET": "s3cr3t"}))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	e := NewRouter(Options{
		DB:       nil,
		Config:   cfg,
		Logger:   zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})

	rec := do(e, httptest.NewRequest(http.MethodGet, "/api/todos", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Failed to fetch todos") {
		t.Fatalf("list: got %d %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(`{"task":"offline"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = do(e, req)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Failed to add todo") {
		t.Fatalf("create: got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, httptest.NewRequest(http.MethodDelete, "/api/todos/65f1c0a2b3c4d5e6f7a8b9c0", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Failed to delete todo") {
		t.Fatalf("delete: got %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"frank@example.com","password":"secret1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = do(e, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("login: expected 500, got %d", rec.Code)
	}

	rec = do(e, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness: expected 503, got %d", rec.Code)
	}
}

func TestRouter_RequestLogCarriesAuthenticatedUser(t *testing.T) {
	cfg, err := config.LoadWith(envconfig.MapLookuper(map[string]string{"JWT_SECRET": "s3cr3t"}))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	var buf bytes.Buffer
	e := NewRouter(Options{
		Config:   cfg,
		Logger:   zerolog.New(&buf),
		Registry: prometheus.NewRegistry(),
	})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "665f1c2ab9e4d1a7c3f0e912",
		"username": "alice_w",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cr3t"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	do(e, req)

	out := buf.String()
	if !strings.Contains(out, `"username":"alice_w"`) || !strings.Contains(out, `"user_id":"665f1c2ab9e4d1a7c3f0e912"`) {
		t.Fatalf("request log must name the caller, got %s", out)
	}
}
