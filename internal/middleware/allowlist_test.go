package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowlist(t *testing.T) {
	a := NewAllowlist([]string{"10.0.0.0/8", " 203.0.113.7 ", "bogus/99", "2001:db8::/32", ""}, "")
	tests := map[string]bool{
		"127.0.0.1":   true,
		"::1":         true,
		"10.1.2.3":    true,
		"203.0.113.7": true,
		"203.0.113.8": false,
		"2001:db8::5": true,
		"8.8.8.8":     false,
	}
	for ip, want := range tests {
		if got := a.Allowed(net.ParseIP(ip)); got != want {
			t.Fatalf("Allowed(%s) = %v, want %v", ip, got, want)
		}
	}
	if a.Allowed(nil) {
		t.Fatalf("nil ip must be rejected")
	}
}

func TestAllowlistWrap(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	serve := func(a *Allowlist, remote, fwd string) int {
		r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		r.RemoteAddr = remote
		if fwd != "" {
			r.Header.Set("X-Forwarded-For", fwd)
		}
		rec := httptest.NewRecorder()
		a.Wrap(ok).ServeHTTP(rec, r)
		return rec.Code
	}

	direct := NewAllowlist(nil, "")
	if c := serve(direct, "127.0.0.1:5000", ""); c != http.StatusNoContent {
		t.Fatalf("loopback = %d", c)
	}
	if c := serve(direct, "8.8.8.8:5000", "127.0.0.1"); c != http.StatusForbidden {
		t.Fatalf("header must be ignored without realIPHeader, got %d", c)
	}

	proxied := NewAllowlist([]string{"192.168.0.0/16"}, "X-Forwarded-For")
	if c := serve(proxied, "127.0.0.1:5000", "192.168.1.9, 10.0.0.1"); c != http.StatusNoContent {
		t.Fatalf("proxied allowed = %d", c)
	}
	if c := serve(proxied, "127.0.0.1:5000", "8.8.8.8"); c != http.StatusForbidden {
		t.Fatalf("proxied blocked = %d", c)
	}
}
