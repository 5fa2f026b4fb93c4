package reccontext

import "testing"

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://WWW.Example.com/", "example.com"},
		{"example.com", "example.com"},
		{"http://example.com:8080/pricing", "example.com"},
		{"  Example.COM.  ", "example.com"},
		{"www.sub.example.com", "sub.example.com"},
	}
	for _, tc := range cases {
		got, err := NormalizeDomain(tc.in)
		if err != nil {
			t.Errorf("NormalizeDomain(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDomainRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "https://"} {
		if _, err := NormalizeDomain(in); err == nil {
			t.Errorf("NormalizeDomain(%q) should fail", in)
		}
	}
}

func TestContextKeyStable(t *testing.T) {
	a := ContextKey(1, "example.com", []string{"/pricing", "/about"})
	b := ContextKey(1, "example.com", []string{"/about/", "PRICING"})
	if a != b {
		t.Error("page set order and formatting must not change the key")
	}

	c := ContextKey(1, "example.com", []string{"/pricing"})
	if a == c {
		t.Error("different page sets must produce different keys")
	}
	d := ContextKey(2, "example.com", []string{"/pricing", "/about"})
	if a == d {
		t.Error("different accounts must produce different keys")
	}
}

func TestEmptyPageSetUsesSentinel(t *testing.T) {
	if pageSetHash(nil) != homepageOnlyHash {
		t.Errorf("nil page set hash = %q, want %q", pageSetHash(nil), homepageOnlyHash)
	}
	if pageSetHash([]string{"", "  "}) != homepageOnlyHash {
		t.Error("blank-only page set should use the sentinel")
	}
}
