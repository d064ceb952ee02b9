package middleware

import (
	"net"
	"net/http"
	"os"
	"strings"

	"geo-puzzle/internal/logger"
)

// 文档注释：运维端点的来源 IP 白名单（单 IP + CIDR）
// 背景：/metrics 与数据集重载只对内网与本机开放，公网玩家请求统一返回 403。
// 约束：
// 1) 回环地址始终允许；
// 2) 支持 IPv4/IPv6 CIDR；
// 3) 来源 IP 默认取 RemoteAddr；部署在反向代理后可通过 realIPHeader 指定头，取首个有效 IP。
type Allowlist struct {
	ips          map[string]struct{}
	cidrs        []*net.IPNet
	realIPHeader string
}

func NewAllowlist(entries []string, realIPHeader string) *Allowlist {
	a := &Allowlist{ips: map[string]struct{}{}, realIPHeader: strings.TrimSpace(realIPHeader)}
	for _, loop := range []string{"127.0.0.1", "::1"} {
		a.ips[net.ParseIP(loop).String()] = struct{}{}
	}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			if _, n, err := net.ParseCIDR(e); err == nil {
				a.cidrs = append(a.cidrs, n)
			} else {
				logger.L().Debug("allowlist_bad_cidr", "entry", e)
			}
			continue
		}
		if ip := net.ParseIP(e); ip != nil {
			a.ips[ip.String()] = struct{}{}
		}
	}
	return a
}

// AllowlistFromEnv：ADMIN_ALLOW=10.0.0.0/8,1.2.3.4；ADMIN_REAL_IP_HEADER=X-Forwarded-For
func AllowlistFromEnv() *Allowlist {
	return NewAllowlist(strings.Split(os.Getenv("ADMIN_ALLOW"), ","), os.Getenv("ADMIN_REAL_IP_HEADER"))
}

func (a *Allowlist) Allowed(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if _, ok := a.ips[ip.String()]; ok {
		return true
	}
	for _, n := range a.cidrs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (a *Allowlist) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.extractIP(r)
		if !a.Allowed(ip) {
			logger.L().Debug("allowlist_block", "path", r.URL.Path, "ip", ip)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Allowlist) extractIP(r *http.Request) net.IP {
	if a.realIPHeader != "" {
		if raw := r.Header.Get(a.realIPHeader); raw != "" {
			if ip := net.ParseIP(strings.TrimSpace(strings.Split(raw, ",")[0])); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}
