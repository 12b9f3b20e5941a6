package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func RequestLogger(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := uuid.NewString()
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is known.
				c.Error(err)
			}

			fields := []any{
				"requestID", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"clientIP", c.RealIP(),
				"latency", time.Since(start).String(),
			}
			if session, ok := SessionFrom(c); ok {
				fields = append(fields, "user", session.UserID)
			}
			if err != nil {
				log.Warnw("request failed", append(fields, "error", err)...)
			} else {
				log.Infow("request", fields...)
			}
			return nil
		}
	}
}
