package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("FOLIO_SESSION_LOOKUP_TIMEOUT", "")
	t.Setenv("FOLIO_SESSION_REVOCATION_PREFIX", "")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, 2*time.Second, cfg.LookupTimeout)
}

func TestLoadConfigFromEnv_InvalidTimeout(t *testing.T) {
	for _, v := range []string{"-1s", "0", "soon", "1m"} {
		t.Setenv("FOLIO_SESSION_LOOKUP_TIMEOUT", v)
		_, err := LoadConfigFromEnv()
		require.ErrorIs(t, err, ErrConfig, v)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("FOLIO_SESSION_LOOKUP_TIMEOUT", "500ms")
	t.Setenv("FOLIO_SESSION_REVOCATION_PREFIX", "test:rev:")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, 500*time.Millisecond, cfg.LookupTimeout)
	require.Equal(t, "test:rev:", cfg.RevocationPrefix)
}
