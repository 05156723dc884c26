package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func skipperFor(t *testing.T, method, path string) bool {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(path)
	return authSkipper(c)
}

func TestAuthSkipper(t *testing.T) {
	open := []struct{ method, path string }{
		{http.MethodPost, "/auth/"},
		{http.MethodGet, "/health"},
		{http.MethodGet, "/health/db"},
		{http.MethodGet, "/case-information-list/:id"},
		{http.MethodGet, "/province-list/"},
		{http.MethodGet, "/city-list/"},
		{http.MethodGet, "/district-list/"},
		{http.MethodGet, "/sub-district-list/"},
	}
	for _, tc := range open {
		if !skipperFor(t, tc.method, tc.path) {
			t.Errorf("%s %s should not require a session", tc.method, tc.path)
		}
	}

	guarded := []struct{ method, path string }{
		{http.MethodGet, "/case-information-list/"},
		{http.MethodPost, "/case-information-list/"},
		{http.MethodPost, "/case-information-list/:id"},
		{http.MethodGet, "/health-facility-list/"},
		{http.MethodGet, "/received-case-list/"},
		{http.MethodPost, "/province-list/"},
		{http.MethodPost, "/sub-district-list/"},
		{http.MethodGet, "/user-detail/"},
	}
	for _, tc := range guarded {
		if skipperFor(t, tc.method, tc.path) {
			t.Errorf("%s %s must require a session", tc.method, tc.path)
		}
	}
}
