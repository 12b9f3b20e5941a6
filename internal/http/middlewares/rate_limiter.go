package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "task-manager.com/task-manager/internal/errors"
)

// fixedWindow counts requests per key in windows of a fixed length.
type fixedWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	counters  map[string]*windowCounter
	lastSweep time.Time
}

type windowCounter struct {
	count int
	start time.Time
}

func newFixedWindow(limit int, window time.Duration) *fixedWindow {
	return &fixedWindow{
		limit:    limit,
		window:   window,
		now:      time.Now,
		counters: make(map[string]*windowCounter),
	}
}

// allow records one request for key and reports whether it fits the window.
func (w *fixedWindow) allow(key string) bool {
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.lastSweep) > w.window {
		w.sweep(now)
	}

	c, ok := w.counters[key]
	if !ok || now.Sub(c.start) >= w.window {
		c = &windowCounter{start: now}
		w.counters[key] = c
	}
	if c.count >= w.limit {
		return false
	}
	c.count++
	return true
}

// sweep drops counters whose window has passed so idle clients do not
// accumulate.
func (w *fixedWindow) sweep(now time.Time) {
	for key, c := range w.counters {
		if now.Sub(c.start) >= w.window {
			delete(w.counters, key)
		}
	}
	w.lastSweep = now
}

func (w *fixedWindow) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.counters)
}

// RateLimiter allows limit requests per window. Signed-in users are
// counted by user id, everyone else by client IP.
func RateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	return rateLimit(newFixedWindow(limit, window))
}

func rateLimit(w *fixedWindow) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if session, ok := SessionFrom(c); ok {
				key = "user:" + session.UserID
			}

			if !w.allow(key) {
				return apperrors.ErrRateLimited
			}
			return next(c)
		}
	}
}
