// 包 locate：根据访问者 IP 决定地图初始视野；无 GeoIP 库或未命中时回退到固定视野
package locate

import (
	"net"
	"net/http"
	"strings"

	"geo-puzzle/internal/logger"

	"github.com/oschwald/geoip2-golang"
)

// View：地图初始视野
type View struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Zoom    int     `json:"zoom"`
	MinZoom int     `json:"minZoom"`
	MaxZoom int     `json:"maxZoom"`
	Country string  `json:"country,omitempty"`
	Source  string  `json:"source"`
}

// Default：大西洋偏北，能同时看到美洲、欧洲与非洲
func Default() View {
	return View{Lat: 35, Lon: -20, Zoom: 2, MinZoom: 1, MaxZoom: 6, Source: "default"}
}

type Locator interface {
	Locate(ip string) (View, bool)
}

// GeoIP：基于 MaxMind City 库的定位
type GeoIP struct {
	r *geoip2.Reader
}

func OpenGeoIP(path string) (*GeoIP, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoIP{r: r}, nil
}

func (g *GeoIP) Close() error { return g.r.Close() }

// 文档注释：按 IP 查询城市库
// 约束：解析失败、库未命中或经纬度为 (0,0) 视为未命中；命中时视野放大一级。
func (g *GeoIP) Locate(ip string) (View, bool) {
	p := net.ParseIP(ip)
	if p == nil {
		return View{}, false
	}
	rec, err := g.r.City(p)
	if err != nil {
		logger.L().Debug("geoip_lookup_error", "ip", ip, "err", err)
		return View{}, false
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return View{}, false
	}
	v := Default()
	v.Lat = rec.Location.Latitude
	v.Lon = rec.Location.Longitude
	v.Zoom = 3
	v.Country = rec.Country.IsoCode
	v.Source = "geoip"
	return v, true
}

// Resolve：loc 可为 nil
func Resolve(loc Locator, ip string) View {
	if loc == nil || ip == "" {
		return Default()
	}
	if v, ok := loc.Locate(ip); ok {
		return v
	}
	return Default()
}

// 解析访问者 IP：优先常见反向代理头，其次 RemoteAddr
func ClientIP(r *http.Request) string {
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if x := h.Get(k); x != "" {
			return strings.TrimSpace(x)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
