package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

const sessionKey = "session"

// TokenVerifier resolves a bearer token to a session.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (model.Session, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// session on the context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return apperrors.ErrUnauthorized
			}

			session, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func SessionFrom(c echo.Context) (model.Session, bool) {
	session, ok := c.Get(sessionKey).(model.Session)
	return session, ok
}
