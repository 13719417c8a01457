package gate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name     string
		path     string
		valid    bool
		action   Action
		location string
	}{
		{name: "protected without token", path: "/dashboard", action: RedirectLogin, location: "/login?redirect=/dashboard"},
		{name: "protected nested without token", path: "/settings/billing", action: RedirectLogin, location: "/login?redirect=/settings/billing"},
		{name: "protected with token", path: "/dashboard", valid: true, action: Allow},
		{name: "portfolio with token", path: "/portfolio/abc/edit", valid: true, action: Allow},
		{name: "login with token", path: "/login", valid: true, action: RedirectHome, location: "/dashboard"},
		{name: "signup with token", path: "/signup", valid: true, action: RedirectHome, location: "/dashboard"},
		{name: "login without token", path: "/login", action: Allow},
		{name: "public page", path: "/pricing", action: Allow},
		{name: "root", path: "/", action: Allow},
		{name: "api route", path: "/api/auth/me", action: Allow},
		{name: "segment boundary", path: "/dashboards", action: Allow},
		{name: "login lookalike", path: "/login-help", valid: true, action: Allow},
		{name: "escaped redirect", path: "/portfolio/a b", action: RedirectLogin, location: "/login?redirect=/portfolio/a+b"},
		{name: "doubled slash", path: "//dashboard", action: RedirectLogin, location: "/login?redirect=/dashboard"},
		{name: "dot segment", path: "/./dashboard", action: RedirectLogin, location: "/login?redirect=/dashboard"},
		{name: "parent segment", path: "/x/../dashboard", action: RedirectLogin, location: "/login?redirect=/dashboard"},
		{name: "doubled slash with trailing slash", path: "//settings/", action: RedirectLogin, location: "/login?redirect=/settings/"},
		{name: "dot segment to login", path: "/a/../login", valid: true, action: RedirectHome, location: "/dashboard"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := cfg.Classify(tc.path, tc.valid)
			require.Equal(t, tc.action, d.Action)
			require.Equal(t, tc.location, d.Location)
		})
	}
}

func TestClassify_ProtectedBeatsAuth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []Rule{
		{Prefix: "/account", Kind: Protected},
		{Prefix: "/account", Kind: AuthOnly},
	}

	require.Equal(t, RedirectLogin, cfg.Classify("/account", false).Action)
	require.Equal(t, RedirectHome, cfg.Classify("/account", true).Action)
}

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                 "/",
		"/":                "/",
		"dashboard":        "/dashboard",
		"/dashboard":       "/dashboard",
		"/dashboard/":      "/dashboard/",
		"//dashboard":      "/dashboard",
		"/./dashboard":     "/dashboard",
		"/x/../dashboard":  "/dashboard",
		"/../../dashboard": "/dashboard",
		"/static/../x//y/": "/x/y/",
		"/.":               "/",
	}
	for in, want := range cases {
		require.Equal(t, want, CanonicalPath(in), "input %q", in)
	}
}

func TestRuleMatches(t *testing.T) {
	r := Rule{Prefix: "/dashboard/", Kind: Protected}
	require.True(t, r.Matches("/dashboard"))
	require.True(t, r.Matches("/dashboard/"))
	require.True(t, r.Matches("/dashboard/x/y"))
	require.False(t, r.Matches("/dashboardx"))
	require.False(t, r.Matches("/"))
}

func TestSafeRedirectTarget(t *testing.T) {
	cases := map[string]string{
		"/dashboard":          "/dashboard",
		"/portfolio/1?tab=a":  "/portfolio/1?tab=a",
		"":                    "/dashboard",
		"dashboard":           "/dashboard",
		"//evil.example":      "/dashboard",
		"/\\evil.example":     "/dashboard",
		"https://evil.com/":   "/dashboard",
		"/ok\r\nSet-Cookie:x": "/dashboard",
		"javascript:alert(1)": "/dashboard",
	}
	for in, want := range cases {
		require.Equal(t, want, SafeRedirectTarget(in, "/dashboard"), "input %q", in)
	}
}
