package main

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"github.com/Simplici0/dealdesk/internal/db"
	"github.com/Simplici0/dealdesk/internal/migrations"
	"github.com/Simplici0/dealdesk/internal/seed"
	"github.com/Simplici0/dealdesk/internal/store"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func newTestServer(t *testing.T, now time.Time) *server {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(database); err != nil {
		t.Fatalf("seed database: %v", err)
	}

	clock := func() time.Time { return now }
	return &server{
		store: store.New(database).WithClock(clock),
		log:   zaptest.NewLogger(t),
		now:   clock,
	}
}

func serve(t *testing.T, s *server, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rr := httptest.NewRecorder()
	newRouter(s, []string{"*"}).ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rr.Body.String())
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d (body=%s)", want, rr.Code, rr.Body.String())
	}
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	rr := serve(t, s, http.MethodGet, "/health", nil)
	expectStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "OK" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestMetricsExposesRequestCounters(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	expectStatus(t, serve(t, s, http.MethodGet, "/health", nil), http.StatusOK)

	rr := serve(t, s, http.MethodGet, "/metrics", nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `dealdesk_http_requests_total{method="GET",route="/health",status="200"}`) {
		t.Fatalf("expected health request counter in metrics output")
	}
}
