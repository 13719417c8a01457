package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls auth API behavior and cookie attributes.
type Config struct {
	SignupEnabled bool
	TrustProxy    bool
	MaxBodyBytes  int64

	CookieSecure   bool
	CookieDomain   string
	CookiePath     string
	CookieSameSite http.SameSite

	// DefaultRedirect is where login sends the browser when no safe
	// redirect target was supplied.
	DefaultRedirect string

	LoginIPMax    int
	LoginIPWindow time.Duration

	LockoutShortThreshold  int
	LockoutShortDuration   time.Duration
	LockoutLongThreshold   int
	LockoutLongDuration    time.Duration
	LockoutSevereThreshold int
	LockoutSevereDuration  time.Duration
}

// LoadConfigFromEnv loads auth config from FOLIO_AUTH_* with safe defaults.
// Unparseable values fall back to the default.
func LoadConfigFromEnv() Config {
	cfg := Config{
		SignupEnabled:          envBool("FOLIO_AUTH_SIGNUP_ENABLED", true),
		TrustProxy:             envBool("FOLIO_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:           envInt64("FOLIO_AUTH_MAX_BODY_BYTES", 64<<10),
		CookieSecure:           envBool("FOLIO_AUTH_COOKIE_SECURE", true),
		CookieDomain:           strings.TrimSpace(os.Getenv("FOLIO_AUTH_COOKIE_DOMAIN")),
		CookiePath:             "/",
		CookieSameSite:         parseSameSite(os.Getenv("FOLIO_AUTH_COOKIE_SAMESITE")),
		DefaultRedirect:        "/dashboard",
		LoginIPMax:             envInt("FOLIO_AUTH_LOGIN_IP_MAX", 20),
		LoginIPWindow:          envDuration("FOLIO_AUTH_LOGIN_IP_WINDOW", 5*time.Minute),
		LockoutShortThreshold:  envInt("FOLIO_AUTH_LOGIN_LOCKOUT_SHORT_THRESHOLD", 5),
		LockoutShortDuration:   envDuration("FOLIO_AUTH_LOGIN_LOCKOUT_SHORT_DURATION", 5*time.Minute),
		LockoutLongThreshold:   envInt("FOLIO_AUTH_LOGIN_LOCKOUT_LONG_THRESHOLD", 10),
		LockoutLongDuration:    envDuration("FOLIO_AUTH_LOGIN_LOCKOUT_LONG_DURATION", 30*time.Minute),
		LockoutSevereThreshold: envInt("FOLIO_AUTH_LOGIN_LOCKOUT_SEVERE_THRESHOLD", 20),
		LockoutSevereDuration:  envDuration("FOLIO_AUTH_LOGIN_LOCKOUT_SEVERE_DURATION", 2*time.Hour),
	}

	if v := strings.TrimSpace(os.Getenv("FOLIO_AUTH_DEFAULT_REDIRECT")); strings.HasPrefix(v, "/") {
		cfg.DefaultRedirect = v
	}

	// Browsers drop SameSite=None cookies without Secure.
	if cfg.CookieSameSite == http.SameSiteNoneMode {
		cfg.CookieSecure = true
	}

	return cfg
}

func (c Config) lockoutTiers() []lockoutTier {
	return []lockoutTier{
		{Threshold: c.LockoutSevereThreshold, Duration: c.LockoutSevereDuration},
		{Threshold: c.LockoutLongThreshold, Duration: c.LockoutLongDuration},
		{Threshold: c.LockoutShortThreshold, Duration: c.LockoutShortDuration},
	}
}

func parseSameSite(raw string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteLaxMode
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
