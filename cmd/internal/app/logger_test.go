package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, parseLogLevel(tc.in), "input %q", tc.in)
	}
}

func TestNewLogger_JSONCarriesServiceAttr(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info", "json")
	log.Debug("hidden")
	log.Info("auth.login.ok", "user_id", "u1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, buf.String())

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "auth.login.ok", rec["msg"])
	require.Equal(t, "folio", rec["service"])
	require.Equal(t, "u1", rec["user_id"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "debug", "text").Debug("gate.redirect", "path", "/dashboard")

	require.Contains(t, buf.String(), "msg=gate.redirect")
	require.Contains(t, buf.String(), "path=/dashboard")
}
