package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tphakala/vocab-manager/internal/logger"
)

// RequestRecorder receives one observation per request; satisfied by
// *metrics.HTTPMetrics.
type RequestRecorder interface {
	RecordHTTPRequest(method, path string, statusCode int, seconds float64, sizeBytes int64)
}

// NewRequestID tags each request with an X-Request-ID and puts it on the
// request context as the trace id.
func NewRequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.ContextWithTraceID(req.Context(), id)))
		},
	})
}

// NewRequestLogger logs every request and, when recorder is non-nil,
// records it. Metrics use the route pattern, not the raw URI.
func NewRequestLogger(log logger.Logger, recorder RequestRecorder, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:         skipper,
		LogStatus:       true,
		LogURI:          true,
		LogRoutePath:    true,
		LogMethod:       true,
		LogLatency:      true,
		LogRemoteIP:     true,
		LogError:        true,
		LogResponseSize: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if recorder != nil {
				route := v.RoutePath
				if route == "" {
					route = "unmatched"
				}
				recorder.RecordHTTPRequest(v.Method, route, v.Status, v.Latency.Seconds(), v.ResponseSize)
			}
			if log == nil {
				return nil
			}

			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.String("ip", v.RemoteIP),
				logger.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, logger.Error(v.Error))
			}
			l := log.WithContext(c.Request().Context())
			if v.Status >= 500 {
				l.Warn("request", fields...)
				return nil
			}
			l.Debug("request", fields...)
			return nil
		},
	})
}
