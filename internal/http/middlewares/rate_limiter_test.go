package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

func TestFixedWindow_ResetsAfterWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	w := newFixedWindow(2, time.Minute)
	w.now = func() time.Time { return now }

	assert.True(t, w.allow("a"))
	assert.True(t, w.allow("a"))
	assert.False(t, w.allow("a"))
	assert.True(t, w.allow("b"))

	now = now.Add(time.Minute)
	assert.True(t, w.allow("a"))
}

func TestFixedWindow_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	w := newFixedWindow(5, time.Minute)
	w.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		require.True(t, w.allow(key))
	}
	require.Equal(t, 3, w.size())

	now = now.Add(2 * time.Minute)
	require.True(t, w.allow("d"))

	assert.Equal(t, 1, w.size())
}

func TestRateLimiter_KeysBySession(t *testing.T) {
	e := echo.New()
	limiter := RateLimiter(1, time.Minute)
	handler := limiter(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	call := func(userID string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		c := e.NewContext(req, httptest.NewRecorder())
		if userID != "" {
			c.Set(sessionKey, model.Session{UserID: userID})
		}
		return handler(c)
	}

	require.NoError(t, call("u1"))
	require.NoError(t, call("u2"))
	require.NoError(t, call(""))

	assert.ErrorIs(t, call("u1"), apperrors.ErrRateLimited)
	assert.ErrorIs(t, call(""), apperrors.ErrRateLimited)
}
