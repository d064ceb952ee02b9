package locate

import (
	"net/http/httptest"
	"testing"
)

type fakeLocator map[string]View

func (f fakeLocator) Locate(ip string) (View, bool) {
	v, ok := f[ip]
	return v, ok
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded_first_hop", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 10.0.0.1"}, "9.9.9.9:1", "1.2.3.4"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "5.6.7.8"}, "9.9.9.9:1", "5.6.7.8"},
		{"real_ip", map[string]string{"X-Real-IP": "2001:db8::1"}, "9.9.9.9:1", "2001:db8::1"},
		{"remote_addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote_no_port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/map", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Fatalf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	if v := Resolve(nil, "1.2.3.4"); v != Default() {
		t.Fatalf("nil locator = %+v", v)
	}
	hit := View{Lat: 48.8, Lon: 2.3, Zoom: 3, MinZoom: 1, MaxZoom: 6, Country: "FR", Source: "geoip"}
	loc := fakeLocator{"1.2.3.4": hit}
	if v := Resolve(loc, "1.2.3.4"); v != hit {
		t.Fatalf("hit = %+v", v)
	}
	if v := Resolve(loc, "8.8.8.8"); v != Default() {
		t.Fatalf("miss = %+v", v)
	}
	if v := Resolve(loc, ""); v != Default() {
		t.Fatalf("empty ip = %+v", v)
	}
}
