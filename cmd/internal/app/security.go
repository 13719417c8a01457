package app

import (
	"errors"
	"fmt"

	"folio/cmd/security/token"
)

// ValidateSecurityConfig refuses to start without a usable signing secret.
// There is no fallback secret.
func ValidateSecurityConfig() (token.Config, error) {
	cfg, err := token.LoadConfigFromEnv()
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, token.ErrSecretMissing):
		return token.Config{}, fmt.Errorf("security policy: %s is required", token.SecretEnvKey)
	case errors.Is(err, token.ErrSecretTooShort):
		return token.Config{}, fmt.Errorf("security policy: %s must be at least %d bytes", token.SecretEnvKey, token.MinSecretBytes)
	default:
		return token.Config{}, err
	}
}
