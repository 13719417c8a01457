package main

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"folio/cmd/security/token"
)

func TestGenSecret(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"gen-secret"})
	require.NoError(t, root.Execute())

	s := strings.TrimSpace(out.String())
	raw, err := base64.RawURLEncoding.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, raw, 48)
	require.GreaterOrEqual(t, len(s), token.MinSecretBytes)
}

func TestGenSecret_RejectsShort(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"gen-secret", "--bytes", "8"})
	require.Error(t, root.Execute())
}

func TestUserCommandsRequireDatabase(t *testing.T) {
	t.Setenv("FOLIO_DATABASE_URL", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"user", "deactivate", "ada@example.com"})
	require.ErrorContains(t, root.Execute(), "FOLIO_DATABASE_URL")
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "gen-secret", "user"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
}
