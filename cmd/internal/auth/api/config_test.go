package authapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg := LoadConfigFromEnv()

	require.True(t, cfg.CookieSecure, "cookie must default to Secure")
	require.Equal(t, http.SameSiteLaxMode, cfg.CookieSameSite)
	require.Equal(t, "/dashboard", cfg.DefaultRedirect)
	require.Equal(t, 5*time.Minute, cfg.LoginIPWindow)
}

func TestLoadConfigFromEnv_CookieGuardrails(t *testing.T) {
	t.Setenv("FOLIO_AUTH_COOKIE_SAMESITE", "none")
	t.Setenv("FOLIO_AUTH_COOKIE_SECURE", "false")
	t.Setenv("FOLIO_AUTH_DEFAULT_REDIRECT", "https://evil.example")

	cfg := LoadConfigFromEnv()

	require.Equal(t, http.SameSiteNoneMode, cfg.CookieSameSite)
	require.True(t, cfg.CookieSecure, "SameSite=None requires Secure=true")
	require.Equal(t, "/dashboard", cfg.DefaultRedirect, "absolute default redirect must be ignored")
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("FOLIO_AUTH_LOGIN_IP_MAX", "-3")
	t.Setenv("FOLIO_AUTH_LOGIN_IP_WINDOW", "soon")
	t.Setenv("FOLIO_AUTH_SIGNUP_ENABLED", "nope")

	cfg := LoadConfigFromEnv()
	require.Equal(t, 20, cfg.LoginIPMax)
	require.Equal(t, 5*time.Minute, cfg.LoginIPWindow)
	require.True(t, cfg.SignupEnabled)
}

func TestParseSameSite(t *testing.T) {
	tests := []struct {
		in   string
		want http.SameSite
	}{
		{in: "strict", want: http.SameSiteStrictMode},
		{in: "Lax", want: http.SameSiteLaxMode},
		{in: "none", want: http.SameSiteNoneMode},
		{in: "default", want: http.SameSiteDefaultMode},
		{in: "unknown", want: http.SameSiteLaxMode},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, parseSameSite(tc.in), "input %q", tc.in)
	}
}
