package gate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Override(t *testing.T) {
	t.Setenv("FOLIO_GATE_PROTECTED", " /app , /billing ,")
	t.Setenv("FOLIO_GATE_AUTH", "/signin")
	t.Setenv("FOLIO_GATE_LOGIN_PATH", "/signin")
	t.Setenv("FOLIO_GATE_HOME_PATH", "/app")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, []Rule{
		{Prefix: "/app", Kind: Protected},
		{Prefix: "/billing", Kind: Protected},
		{Prefix: "/signin", Kind: AuthOnly},
	}, cfg.Rules)

	d := cfg.Classify("/billing", false)
	require.Equal(t, RedirectLogin, d.Action)
	require.Equal(t, "/signin?redirect=/billing", d.Location)
	require.Equal(t, Allow, cfg.Classify("/dashboard", false).Action)
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	cases := []map[string]string{
		{"FOLIO_GATE_PROTECTED": "dashboard"},
		{"FOLIO_GATE_PROTECTED": "/dash*"},
		{"FOLIO_GATE_PROTECTED": "/login"},
		{"FOLIO_GATE_HOME_PATH": "/signup/done"},
	}
	for _, env := range cases {
		t.Run("", func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfigFromEnv()
			require.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}
