package gate

import (
	"net/url"
	"path"
	"strings"
)

// Action is what the gate does with a request.
type Action uint8

const (
	Allow Action = iota
	RedirectLogin
	RedirectHome
)

func (a Action) String() string {
	switch a {
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "allow"
	}
}

// Decision is the classifier output. Location is set for redirects.
type Decision struct {
	Action   Action
	Location string
}

// Classify is a pure function of the path and token validity.
// First match wins:
//
//  1. protected path, no valid token  -> RedirectLogin (?redirect=<path>)
//  2. auth path, valid token          -> RedirectHome
//  3. anything else                   -> Allow
//
// The path is canonicalized first, so "//dashboard" and "/x/../dashboard"
// classify as "/dashboard".
func (c Config) Classify(p string, valid bool) Decision {
	p = CanonicalPath(p)
	protected, auth := c.match(p)

	switch {
	case protected && !valid:
		return Decision{Action: RedirectLogin, Location: c.loginLocation(p)}
	case auth && valid:
		return Decision{Action: RedirectHome, Location: c.HomePath}
	default:
		return Decision{Action: Allow}
	}
}

// CanonicalPath resolves dot segments and repeated slashes the way
// http.FileServer does. A trailing slash is kept.
func CanonicalPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	clean := path.Clean(p)
	if clean != "/" && strings.HasSuffix(p, "/") {
		clean += "/"
	}
	return clean
}

func (c Config) match(path string) (protected, auth bool) {
	for _, r := range c.Rules {
		if !r.Matches(path) {
			continue
		}
		switch r.Kind {
		case Protected:
			protected = true
		case AuthOnly:
			auth = true
		}
	}
	return protected, auth
}

func (c Config) loginLocation(path string) string {
	// Slashes stay readable: /login?redirect=/dashboard/x
	v := strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
	return c.LoginPath + "?" + c.RedirectParam + "=" + v
}

func (c Config) skipped(path string) bool {
	for _, p := range c.SkipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// SafeRedirectTarget returns target when it is a same-origin absolute path,
// otherwise fallback. It guards the post-login redirect against open redirects.
func SafeRedirectTarget(target, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" || len(target) > 2048 {
		return fallback
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	for _, r := range target {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return fallback
		}
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}
