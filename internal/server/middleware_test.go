package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/resultboard/internal/catalog"
)

func TestCORS(t *testing.T) {
	r := newRouter(slog.Default(), catalog.Default(), nopAnnouncer{}, Options{}, nil)

	tests := []struct {
		name   string
		method string
		header map[string]string
	}{
		{
			name:   "simple request",
			method: http.MethodGet,
			header: map[string]string{"Origin": "http://display.local:5173"},
		},
		{
			name:   "preflight",
			method: http.MethodOptions,
			header: map[string]string{
				"Origin":                         "http://display.local:5173",
				"Access-Control-Request-Method":  http.MethodPost,
				"Access-Control-Request-Headers": "Content-Type, X-Custom",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/programs", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://display.local:5173" {
				t.Errorf("allow-origin = %q, want request origin", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
				t.Errorf("allow-credentials = %q, want true", got)
			}
		})
	}
}
