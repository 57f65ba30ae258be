package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/resultboard/internal/handler/health"
)

type fixedCount int

func (c fixedCount) Len() int { return int(c) }

func ok(context.Context) error { return nil }

func TestHandler(t *testing.T) {
	tests := []struct {
		name        string
		checks      map[string]health.Checker
		viewers     int
		wantStatus  int
		wantOverall string
		wantChecks  map[string]string
	}{
		{
			name:        "no dependencies",
			checks:      nil,
			viewers:     0,
			wantStatus:  http.StatusOK,
			wantOverall: "ok",
			wantChecks:  map[string]string{},
		},
		{
			name:        "redis healthy",
			checks:      map[string]health.Checker{"redis": health.CheckerFunc(ok)},
			viewers:     4,
			wantStatus:  http.StatusOK,
			wantOverall: "ok",
			wantChecks:  map[string]string{"redis": "ok"},
		},
		{
			name: "redis down",
			checks: map[string]health.Checker{
				"redis": health.CheckerFunc(func(context.Context) error { return errors.New("refused") }),
			},
			viewers:     2,
			wantStatus:  http.StatusServiceUnavailable,
			wantOverall: "degraded",
			wantChecks:  map[string]string{"redis": "error"},
		},
		{
			name: "one of two down",
			checks: map[string]health.Checker{
				"redis":   health.CheckerFunc(ok),
				"catalog": health.CheckerFunc(func(context.Context) error { return errors.New("empty") }),
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantOverall: "degraded",
			wantChecks:  map[string]string{"redis": "ok", "catalog": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.Default(), fixedCount(tt.viewers), tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body struct {
				Status  string
				Viewers int
				Checks  map[string]struct{ Status string }
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}

			if body.Status != tt.wantOverall {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantOverall)
			}
			if body.Viewers != tt.viewers {
				t.Errorf("viewers = %d, want %d", body.Viewers, tt.viewers)
			}
			for name, want := range tt.wantChecks {
				if got := body.Checks[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}
