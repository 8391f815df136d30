package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsMaxAge       = "86400"
)

// corsPolicy is the parsed form of CORS_ALLOWED_ORIGINS.
type corsPolicy struct {
	any     bool
	origins map[string]struct{}
}

// parseOrigins accepts "*" or a comma-separated origin list. An empty value or a
// "*" entry anywhere in the list allows every origin. Entries are compared
// without case or a trailing slash, so "http://A.example/" matches
// "http://a.example".
func parseOrigins(s string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{})}
	for _, o := range strings.Split(s, ",") {
		o = normalizeOrigin(o)
		switch o {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[o] = struct{}{}
		}
	}
	if len(p.origins) == 0 {
		p.any = true
	}
	return p
}

func normalizeOrigin(o string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")
}

// allow returns the Access-Control-Allow-Origin value for origin, or "" when the
// origin is not permitted.
func (p corsPolicy) allow(origin string) string {
	if p.any {
		return "*"
	}
	if origin == "" {
		return ""
	}
	if _, ok := p.origins[normalizeOrigin(origin)]; ok {
		return origin
	}
	return ""
}

// CORS sets cross-origin headers for the configured origins. Browsers may send
// X-Request-ID and read it back, so a client can quote the id in a bug report.
// Preflights from an origin outside the list are refused with 403.
func CORS(allowedOrigins string) gin.HandlerFunc {
	policy := parseOrigins(allowedOrigins)
	allowHeaders := "Content-Type, " + HeaderRequestID

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if !policy.any {
			// The response depends on Origin even when it is refused.
			c.Writer.Header().Add("Vary", "Origin")
		}

		allowed := policy.allow(origin)
		if allowed != "" {
			c.Header("Access-Control-Allow-Origin", allowed)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", allowHeaders)
			c.Header("Access-Control-Expose-Headers", HeaderRequestID)
			c.Header("Access-Control-Max-Age", corsMaxAge)
		}

		if c.Request.Method == http.MethodOptions {
			if origin != "" && allowed == "" {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
