package gate

import (
	"fmt"
	"strings"
)

// Kind is the class of a path rule.
type Kind uint8

const (
	// Protected paths require a valid token.
	Protected Kind = iota + 1
	// AuthOnly paths (login, signup) make no sense with a valid token.
	AuthOnly
)

func (k Kind) String() string {
	switch k {
	case Protected:
		return "protected"
	case AuthOnly:
		return "auth"
	default:
		return "unknown"
	}
}

// Rule binds a path prefix to a Kind.
type Rule struct {
	Prefix string
	Kind   Kind
}

// Matches reports whether path equals Prefix or sits below it.
// "/dashboard" matches "/dashboard" and "/dashboard/x" but not "/dashboards".
func (r Rule) Matches(path string) bool {
	p := strings.TrimSuffix(r.Prefix, "/")
	if p == "" {
		return strings.HasPrefix(path, "/")
	}
	if !strings.HasPrefix(path, p) {
		return false
	}
	rest := path[len(p):]
	return rest == "" || rest[0] == '/'
}

func (r Rule) validate() error {
	if !strings.HasPrefix(r.Prefix, "/") {
		return fmt.Errorf("%w: prefix %q must start with /", ErrConfig, r.Prefix)
	}
	if strings.ContainsAny(r.Prefix, "?#* ") {
		return fmt.Errorf("%w: prefix %q must be a plain path", ErrConfig, r.Prefix)
	}
	if r.Kind != Protected && r.Kind != AuthOnly {
		return fmt.Errorf("%w: prefix %q has no kind", ErrConfig, r.Prefix)
	}
	return nil
}

func rulesFor(kind Kind, prefixes []string) []Rule {
	out := make([]Rule, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, Rule{Prefix: p, Kind: kind})
	}
	return out
}
