package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()

	t.Setenv("FOLIO_AUTH_SECRET", strings.Repeat("z", 32))
	t.Setenv("FOLIO_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("FOLIO_ARGON2_ITERATIONS", "1")
	t.Setenv("FOLIO_AUTH_COOKIE_SECURE", "false")

	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "dashboard"), []byte("dashboard page"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "login"), []byte("login page"), 0o600))

	cfg := LoadConfig()
	cfg.WebDir = webDir

	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return a, srv
}

func noRedirectClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNew_FailsWithoutSecret(t *testing.T) {
	t.Setenv("FOLIO_AUTH_SECRET", "")
	_, err := New(context.Background(), LoadConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.ErrorContains(t, err, "FOLIO_AUTH_SECRET")

	t.Setenv("FOLIO_AUTH_SECRET", "short")
	_, err = New(context.Background(), LoadConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.ErrorContains(t, err, "at least 32 bytes")
}

func TestApp_EndToEndSession(t *testing.T) {
	_, srv := newTestApp(t)
	c := noRedirectClient(t)

	resp, _ := get(t, c, srv.URL+"/dashboard")
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	require.Equal(t, "/login?redirect=/dashboard", resp.Header.Get("Location"))

	for path, want := range map[string]string{
		"//dashboard":     "/login?redirect=/dashboard",
		"/./dashboard":    "/login?redirect=/dashboard",
		"/x/../dashboard": "/login?redirect=/dashboard",
		"//settings/":     "/login?redirect=/settings/",
	} {
		resp, body := get(t, c, srv.URL+path)
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode, path)
		require.Equal(t, want, resp.Header.Get("Location"), path)
		require.NotContains(t, body, "dashboard page", path)
	}

	resp, body := get(t, c, srv.URL+"/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "login page", body)

	resp, body = get(t, c, srv.URL+"/api/auth/me")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"user":null}`, body)

	signup, err := c.Post(srv.URL+"/api/auth/signup", "application/json",
		strings.NewReader(`{"email":"ada@example.com","password":"correct horse battery"}`))
	require.NoError(t, err)
	_ = signup.Body.Close()
	require.Equal(t, http.StatusCreated, signup.StatusCode)

	resp, body = get(t, c, srv.URL+"/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "dashboard page", body)

	resp, body = get(t, c, srv.URL+"/x/../dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "dashboard page", body)

	resp, _ = get(t, c, srv.URL+"/login")
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, body = get(t, c, srv.URL+"/api/auth/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"email":"ada@example.com"`)

	logout, err := c.Post(srv.URL+"/api/auth/logout", "application/json", nil)
	require.NoError(t, err)
	_ = logout.Body.Close()
	require.Equal(t, http.StatusNoContent, logout.StatusCode)

	resp, _ = get(t, c, srv.URL+"/dashboard")
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
}

func TestApp_OpsEndpoints(t *testing.T) {
	_, srv := newTestApp(t)
	c := noRedirectClient(t)

	resp, body := get(t, c, srv.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok\n", body)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, _ = get(t, c, srv.URL+"/readyz")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, _ = get(t, c, srv.URL+"/dashboard")
	resp, body = get(t, c, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `folio_gate_decisions_total{action="redirect_login"} 1`)
	require.Contains(t, body, "folio_http_requests_total")
}

func TestApp_ReadinessRequiresDB(t *testing.T) {
	t.Setenv("FOLIO_READINESS_REQUIRE_DB", "true")
	_, srv := newTestApp(t)

	resp, _ := get(t, noRedirectClient(t), srv.URL+"/readyz")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
