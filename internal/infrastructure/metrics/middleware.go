package metrics

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Middleware returns an echo middleware that records metrics for each
// request. Routes are labelled by their registered path, not the raw URL,
// to keep cardinality bounded.
func Middleware(collector *Collector, exporter *PrometheusExporter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			route := c.Path()
			method := c.Request().Method
			duration := time.Since(start).Seconds()

			collector.RecordRequest(route)
			collector.RecordDuration(route, duration)
			if exporter != nil {
				exporter.RecordRequest(method, route)
				exporter.RecordDuration(method, route, duration)
			}

			if err != nil || c.Response().Status >= 400 {
				collector.RecordError(route)
				if exporter != nil {
					exporter.RecordError(method, route)
				}
			}

			return err
		}
	}
}
