package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrustedHosts rejects requests whose Host header is not in allowed with
// 400. Entries may be exact names, "*.example.com" wildcards or "*", which
// accepts everything. An empty list also accepts everything.
func TrustedHosts(allowed []string) echo.MiddlewareFunc {
	exact := map[string]bool{}
	var suffixes []string
	for _, h := range allowed {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "*":
			return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		case strings.HasPrefix(h, "*."):
			suffixes = append(suffixes, h[1:])
		case h != "":
			exact[h] = true
		}
	}
	if len(exact) == 0 && len(suffixes) == 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			host := strings.ToLower(c.Request().Host)
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			if exact[host] {
				return next(c)
			}
			for _, s := range suffixes {
				if strings.HasSuffix(host, s) {
					return next(c)
				}
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid host header"})
		}
	}
}
