package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestSignAndParse(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour, "")
	userID := uuid.New()

	token, err := issuer.Sign(userID, "nelson@garuda.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, userID)
	}
	if claims.Email != "nelson@garuda.com" {
		t.Errorf("email = %q", claims.Email)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	issuer := NewIssuer([]byte("secret-a"), time.Hour, "")
	token, _ := issuer.Sign(uuid.New(), "x@y.com")

	other := NewIssuer([]byte("secret-b"), time.Hour, "")
	if _, err := other.Parse(token); err == nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestParse_Expired(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), -time.Minute, "")
	token, _ := issuer.Sign(uuid.New(), "x@y.com")

	if _, err := issuer.Parse(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func middlewareTestServer(issuer *Issuer, skipper func(echo.Context) bool) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(issuer, skipper))
	e.GET("/protected", func(c echo.Context) error {
		id, ok := UserIDFromContext(c.Request().Context())
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, "identity missing")
		}
		return c.JSON(http.StatusOK, map[string]string{
			"user_id": id.String(),
			"email":   EmailFromContext(c.Request().Context()),
		})
	})
	e.GET("/open", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestMiddleware_BearerToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour, "")
	e := middlewareTestServer(issuer, nil)

	token, _ := issuer.Sign(uuid.New(), "nelson@garuda.com")
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour, "")
	e := middlewareTestServer(issuer, nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_GarbageToken(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour, "")
	e := middlewareTestServer(issuer, nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_CookieFallback(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour, "sms_token")
	e := middlewareTestServer(issuer, nil)

	token, _ := issuer.Sign(uuid.New(), "nelson@garuda.com")
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "sms_token", Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestMiddleware_Skipper(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), time.Hour, "")
	e := middlewareTestServer(issuer, func(c echo.Context) bool {
		return c.Path() == "/open"
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
