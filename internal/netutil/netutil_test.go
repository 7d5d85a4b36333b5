package netutil

import (
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeIP(t *testing.T) {
	valid := map[string]string{
		"192.0.2.4:8080":    "192.0.2.4",
		"[2001:db8::1]:443": "2001:db8::1",
		"[::1]:port":        "::1",
		"fe80::1%eth0":      "fe80::1",
		"203.0.113.9":       "203.0.113.9",
		" 10.0.0.1 ":        "10.0.0.1",
	}
	for in, want := range valid {
		got, ok := NormalizeIP(in)
		if !ok || got != want {
			t.Fatalf("NormalizeIP(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}

	for _, in := range []string{"not-an-ip", "  ", "host.example:80"} {
		if _, ok := NormalizeIP(in); ok {
			t.Fatalf("NormalizeIP(%q) should fail", in)
		}
	}
}

func TestClientIPUsesRemoteAddr(t *testing.T) {
	for remote, want := range map[string]string{
		"198.51.100.7:5555":  "198.51.100.7",
		"[2001:db8::2]:5555": "2001:db8::2",
		"garbage":            "garbage",
	} {
		r := httptest.NewRequest("POST", "/v1/auth/login", nil)
		r.RemoteAddr = remote
		if got := ClientIP(r); got != want {
			t.Fatalf("ClientIP with %q = %q, want %q", remote, got, want)
		}
	}
}

func TestTruncateUserAgentCountsRunes(t *testing.T) {
	long := strings.Repeat("é", MaxUserAgentLength+10)
	if n := utf8.RuneCountInString(TruncateUserAgent(long)); n != MaxUserAgentLength {
		t.Fatalf("expected %d runes, got %d", MaxUserAgentLength, n)
	}
	if got := TruncateUserAgent("curl/8"); got != "curl/8" {
		t.Fatalf("short agents must be untouched, got %q", got)
	}
}
