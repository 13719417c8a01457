package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envParse returns def when key is unset, blank, unparseable or rejected by ok.
func envParse[T any](key string, def T, parse func(string) (T, error), ok func(T) bool) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil || (ok != nil && !ok(v)) {
		return def
	}
	return v
}

func EnvString(key, def string) string {
	return envParse(key, def, func(s string) (string, error) { return s, nil }, nil)
}

func EnvBool(key string, def bool) bool {
	return envParse(key, def, strconv.ParseBool, nil)
}

// EnvInt accepts positive values only.
func EnvInt(key string, def int) int {
	return envParse(key, def, strconv.Atoi, func(n int) bool { return n > 0 })
}

// EnvInt32 accepts zero and positive values.
func EnvInt32(key string, def int32) int32 {
	parse := func(s string) (int32, error) {
		n, err := strconv.ParseInt(s, 10, 32)
		return int32(n), err
	}
	return envParse(key, def, parse, func(n int32) bool { return n >= 0 })
}

// EnvDuration accepts positive Go durations.
func EnvDuration(key string, def time.Duration) time.Duration {
	return envParse(key, def, time.ParseDuration, func(d time.Duration) bool { return d > 0 })
}

// EnvList reads a comma separated env var, dropping empty items.
func EnvList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
