package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/barcodeprint/backend/internal/interfaces/http/dto"
)

// SwaggerConfig guards the API documentation routes
type SwaggerConfig struct {
	Enabled bool
	// AllowedIPs holds addresses or CIDR prefixes; empty allows everyone
	AllowedIPs []string
}

// SwaggerProtection answers 404 while the docs are disabled and 403 to
// callers outside AllowedIPs.
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	allow := parseAllowList(cfg.AllowedIPs)
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(
				dto.ErrCodeNotFound, "API documentation is not available"))
			return
		}
		if restricted && !allowed(clientAddr(c), allow) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.ErrCodeForbidden, "Access to API documentation is restricted"))
			return
		}
		c.Next()
	}
}

// parseAllowList turns addresses into single-address prefixes and skips
// anything unparsable
func parseAllowList(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if p, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			out = append(out, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
		}
	}
	return out
}

// clientAddr prefers gin's proxy-aware ClientIP over the socket address
func clientAddr(c *gin.Context) netip.Addr {
	if a, err := netip.ParseAddr(c.ClientIP()); err == nil {
		return a.Unmap()
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	a, _ := netip.ParseAddr(host)
	return a.Unmap()
}

func allowed(addr netip.Addr, allow []netip.Prefix) bool {
	if !addr.IsValid() {
		return false
	}
	for _, p := range allow {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
