package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/suyash-modi/Product-Detection/internal/config"
)

func protectedHandler(t *testing.T, password string) http.Handler {
	t.Helper()
	cfg := &config.Config{Password: password}
	return AuthMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{
			name:   "no credentials",
			setup:  func(r *http.Request) {},
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong token",
			setup:  func(r *http.Request) { r.Header.Set("X-Api-Key", "nope") },
			status: http.StatusUnauthorized,
		},
		{
			name:   "api key header",
			setup:  func(r *http.Request) { r.Header.Set("X-Api-Key", "secret") },
			status: http.StatusOK,
		},
		{
			name:   "bearer token",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret") },
			status: http.StatusOK,
		},
		{
			name:   "query parameter",
			setup:  func(r *http.Request) { r.URL.RawQuery = "token=secret" },
			status: http.StatusOK,
		},
		{
			name:   "malformed authorization header",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "secret") },
			status: http.StatusUnauthorized,
		},
	}

	handler := protectedHandler(t, "secret")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
			tc.setup(req)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	handler := protectedHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("empty password should disable auth, got %d", rec.Code)
	}
}
