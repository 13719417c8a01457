package gate

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrConfig is returned for invalid gate configuration.
var ErrConfig = errors.New("invalid gate config")

// Config is the classifier's static configuration. Rules are evaluated in order.
type Config struct {
	Rules []Rule

	LoginPath     string
	HomePath      string
	RedirectParam string
	CookieName    string

	// SkipPrefixes bypass the gate entirely (assets, probes, metrics).
	SkipPrefixes []string
}

var (
	defaultProtected = []string{"/dashboard", "/onboarding", "/settings", "/portfolio"}
	defaultAuth      = []string{"/login", "/signup"}
	defaultSkip      = []string{"/static/", "/_next/", "/favicon.ico", "/healthz", "/readyz", "/metrics"}
)

func DefaultConfig() Config {
	return Config{
		Rules:         append(rulesFor(Protected, defaultProtected), rulesFor(AuthOnly, defaultAuth)...),
		LoginPath:     "/login",
		HomePath:      "/dashboard",
		RedirectParam: "redirect",
		CookieName:    "auth-token",
		SkipPrefixes:  append([]string(nil), defaultSkip...),
	}
}

// LoadConfigFromEnv overlays comma-separated prefix lists onto DefaultConfig.
//
//   - FOLIO_GATE_PROTECTED (replaces the protected set)
//   - FOLIO_GATE_AUTH (replaces the auth set)
//   - FOLIO_GATE_LOGIN_PATH, FOLIO_GATE_HOME_PATH
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	protected, auth := defaultProtected, defaultAuth
	if v, ok := os.LookupEnv("FOLIO_GATE_PROTECTED"); ok {
		protected = splitList(v)
	}
	if v, ok := os.LookupEnv("FOLIO_GATE_AUTH"); ok {
		auth = splitList(v)
	}
	cfg.Rules = append(rulesFor(Protected, protected), rulesFor(AuthOnly, auth)...)

	if v := strings.TrimSpace(os.Getenv("FOLIO_GATE_LOGIN_PATH")); v != "" {
		cfg.LoginPath = v
	}
	if v := strings.TrimSpace(os.Getenv("FOLIO_GATE_HOME_PATH")); v != "" {
		cfg.HomePath = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for _, r := range c.Rules {
		if err := r.validate(); err != nil {
			return err
		}
	}
	if !strings.HasPrefix(c.LoginPath, "/") || !strings.HasPrefix(c.HomePath, "/") {
		return fmt.Errorf("%w: login and home paths must start with /", ErrConfig)
	}
	if strings.TrimSpace(c.RedirectParam) == "" || strings.TrimSpace(c.CookieName) == "" {
		return fmt.Errorf("%w: redirect param and cookie name are required", ErrConfig)
	}
	// Home under a protected prefix is fine; login under one would loop.
	for _, r := range c.Rules {
		if r.Kind == Protected && r.Matches(c.LoginPath) {
			return fmt.Errorf("%w: login path %q is protected", ErrConfig, c.LoginPath)
		}
		if r.Kind == AuthOnly && r.Matches(c.HomePath) {
			return fmt.Errorf("%w: home path %q is auth-only", ErrConfig, c.HomePath)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
