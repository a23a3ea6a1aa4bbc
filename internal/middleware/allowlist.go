package middleware

import (
	"net"
	"net/http"
	"strings"

	"usage-map/internal/logger"
)

// 文档注释：管理接口来源白名单
// 背景：POST /refresh 会绕过记录缓存直接查询记录库；除 x-admin-token 外，可再限定调用方网段。
// 约束：IPs 与 CIDRs 均为空时不做限制；RealIPHeader 取首个有效 IP，否则使用 RemoteAddr。
type Allowlist struct {
	ips          map[string]struct{}
	cidrs        []*net.IPNet
	realIPHeader string
}

// NewAllowlist：解析单 IP 与 CIDR 列表，无法解析的条目忽略并记录日志
func NewAllowlist(ips, cidrs []string, allowLocal bool, realIPHeader string) *Allowlist {
	a := &Allowlist{ips: map[string]struct{}{}, realIPHeader: strings.TrimSpace(realIPHeader)}
	for _, p := range ips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if ip := net.ParseIP(p); ip != nil {
			a.ips[ip.String()] = struct{}{}
		} else {
			logger.L().Warn("allowlist_bad_ip", "value", p)
		}
	}
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, n, err := net.ParseCIDR(c); err == nil {
			a.cidrs = append(a.cidrs, n)
		} else {
			logger.L().Warn("allowlist_bad_cidr", "value", c, "err", err)
		}
	}
	if allowLocal && (len(a.ips) > 0 || len(a.cidrs) > 0) {
		a.ips["127.0.0.1"] = struct{}{}
		a.ips["::1"] = struct{}{}
	}
	return a
}

// Empty：未配置任何条目
func (a *Allowlist) Empty() bool {
	return a == nil || (len(a.ips) == 0 && len(a.cidrs) == 0)
}

// Allowed：判断 IP 是否在允许集合
func (a *Allowlist) Allowed(ip net.IP) bool {
	if a.Empty() {
		return true
	}
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

// Wrap：不在白名单内的请求返回 403
func (a *Allowlist) Wrap(next http.Handler) http.Handler {
	if a.Empty() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.clientIP(r)
		if !a.Allowed(ip) {
			logger.L().Warn("allowlist_block", "ip", ip.String(), "path", r.URL.Path)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP：优先指定头的首个有效 IP
func (a *Allowlist) clientIP(r *http.Request) net.IP {
	if a.realIPHeader != "" {
		if raw := r.Header.Get(a.realIPHeader); raw != "" {
			first, _, _ := strings.Cut(raw, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
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
