package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testAPI(t *testing.T) *API {
	t.Helper()
	return &API{
		store: &Store{},
		config: Config{
			AllowedOrigins:     []string{"*"},
			RateLimitPerMinute: 1000,
			RequestTimeout:     5 * time.Second,
		},
		log: zerolog.Nop(),
	}
}

func TestRouterOperationalEndpoints(t *testing.T) {
	router := testAPI(t).Routes()

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "healthz", path: "/healthz", want: http.StatusOK},
		{name: "version", path: "/version", want: http.StatusOK},
		{name: "metrics", path: "/metrics", want: http.StatusOK},
		{name: "readyz without pool", path: "/readyz", want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestRouterRejectsAnonymousAPIAccess(t *testing.T) {
	router := testAPI(t).Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRouterGatesSchemaWritesToAdmin(t *testing.T) {
	router := testAPI(t).Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil)
	req.Header.Set(headerActor, "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
