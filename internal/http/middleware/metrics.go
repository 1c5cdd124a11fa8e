package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/atlas-backend/internal/observability"
)

// unmatchedRoute labels requests gin could not route so arbitrary paths do not
// grow the label set.
const unmatchedRoute = "unmatched"

var unmeteredRoutes = map[string]bool{
	"/metrics":     true,
	"/healthcheck": true,
}

// Metrics records request counts, latency and in-flight requests per route
// template. Scrapes and health probes are not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if unmeteredRoutes[c.FullPath()] {
			c.Next()
			return
		}
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
