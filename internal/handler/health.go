package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Health is the liveness endpoint.  It answers "ok" as long as the process
// is serving requests.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// PingFunc adapts a plain function, such as a Redis ping, to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Ready returns the readiness endpoint.  It answers 503 with the failing
// dependency name when any pinger fails within two seconds.
func Ready(deps map[string]Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        for name, p := range deps {
            if err := p.PingContext(ctx); err != nil {
                return c.String(http.StatusServiceUnavailable, name+" unavailable")
            }
        }
        return c.String(http.StatusOK, "ready")
    }
}
