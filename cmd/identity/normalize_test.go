package identity

import "testing"

func TestValidEmail(t *testing.T) {
	cases := map[string]bool{
		"ada@example.com":        true,
		" ada@example.com ":      true,
		"a.b+tag@sub.example.io": true,
		"":                       false,
		"ada":                    false,
		"ada@":                   false,
		"Ada <ada@example.com>":  false,
	}
	for in, want := range cases {
		if got := ValidEmail(in); got != want {
			t.Fatalf("ValidEmail(%q)=%v want %v", in, got, want)
		}
	}
}

func TestNormalizeFullName(t *testing.T) {
	if got := NormalizeFullName("  Grace \t Hopper\n"); got != "Grace Hopper" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeFullName("   "); got != "" {
		t.Fatalf("got %q", got)
	}
}
