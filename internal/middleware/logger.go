package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-tracker/internal/metrics"
)

// RequestLogger writes one structured line per request and records it in
// m. Handler errors are resolved through the echo error handler first so
// the logged status is the one the client saw.
func RequestLogger(m *metrics.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			latency := time.Since(start)

			req := c.Request()
			res := c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(req.Method, route, res.Status, latency)

			ev := log.Info()
			if res.Status >= 500 {
				ev = log.Error()
			}
			ev.Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency_ms", latency).
				Str("ip", c.RealIP()).
				Msg("HTTP Request")
			return nil
		}
	}
}
