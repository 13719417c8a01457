package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"folio/cmd/security/token"
)

func genSecretCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random value for " + token.SecretEnvKey,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < token.MinSecretBytes {
				return fmt.Errorf("--bytes must be at least %d", token.MinSecretBytes)
			}
			s, err := newSecret(n)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	cmd.Flags().IntVar(&n, "bytes", 48, "random bytes before encoding")
	return cmd
}

// newSecret returns n random bytes, base64url encoded. The encoded form is
// longer than n, so it always satisfies the minimum secret length.
func newSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
