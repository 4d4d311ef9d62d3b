package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP resolves the client address behind the reverse proxy fronting the
// API and stores it under "real_ip" for the rate limiter and access logs.
// X-Real-IP (set by the proxy) wins, then the left-most X-Forwarded-For hop,
// then Gin's own resolution. Header values that do not parse as an IP are
// ignored rather than trusted.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ip := parseIP(c.GetHeader("X-Real-IP")); ip != "" {
			c.Set("real_ip", ip)
			c.Next()
			return
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := parseIP(first); ip != "" {
				c.Set("real_ip", ip)
				c.Next()
				return
			}
		}
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
