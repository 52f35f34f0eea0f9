package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// LoggingMiddleware emits one structured line per handled request, keyed
// the way the rest of the service logs: request id, client IP, method,
// route and final status. It runs after the handler so the status is the
// one actually written.
type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			if m.logger != nil {
				status := c.Response().Status
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
				m.logger.WithFields(logrus.Fields{
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					"ip":         c.RealIP(),
					"method":     c.Request().Method,
					"path":       c.Path(),
					"status":     status,
				}).Debug("request handled")
			}

			return err
		}
	}
}
