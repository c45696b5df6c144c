package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler("hms-portal").Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp livenessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "hms-portal" || resp.Uptime == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestReadiness(t *testing.T) {
	cases := []struct {
		name   string
		checks map[string]Checker
		code   int
		status string
	}{
		{
			name:   "all ok",
			checks: map[string]Checker{"store": func(context.Context) error { return nil }},
			code:   http.StatusOK,
			status: "ok",
		},
		{
			name: "one failing",
			checks: map[string]Checker{
				"store":   func(context.Context) error { return nil },
				"session": func(context.Context) error { return errors.New("hydrating") },
			},
			code:   http.StatusServiceUnavailable,
			status: "degraded",
		},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

		if err := NewHealthDependenciesHandler(tc.checks).Readiness(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
		}
		var resp readinessResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid json: %v", tc.name, err)
		}
		if resp.Status != tc.status || len(resp.Dependencies) != len(tc.checks) {
			t.Fatalf("%s: unexpected response %+v", tc.name, resp)
		}
		for name, dep := range resp.Dependencies {
			if (dep.Status == "unhealthy") != (dep.Error != "") {
				t.Fatalf("%s: %s reported %+v", tc.name, name, dep)
			}
		}
	}
}

func TestReadiness_NoChecksIsReady(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	if err := NewHealthDependenciesHandler(nil).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
