package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "task-manager.com/task-manager/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.HTTPErrorHandler = ErrorHandler(h.log)
	e.Use(middleware.RequestLogger(h.log))

	public := middleware.RateLimiter(rateLimitPerMinute, time.Minute)
	protected := []echo.MiddlewareFunc{
		middleware.Authenticate(h.authService),
		middleware.RateLimiter(rateLimitPerMinute, time.Minute),
	}

	e.GET("/health", h.Health)

	e.POST("/auth/signup", h.SignUp, public)
	e.POST("/auth/signin", h.SignIn, public)
	e.POST("/auth/signout", h.SignOut, protected...)
	e.GET("/auth/session", h.Session, protected...)

	e.GET("/tasks", h.ListTasks, protected...)
	e.POST("/tasks", h.CreateTask, protected...)
	e.PATCH("/tasks/:id", h.UpdateTask, protected...)
	e.DELETE("/tasks/:id", h.DeleteTask, protected...)

	e.GET("/suppliers", h.ListSuppliers, protected...)
	e.POST("/suppliers", h.CreateSupplier, protected...)
	e.PATCH("/suppliers/:id", h.UpdateSupplier, protected...)
	e.DELETE("/suppliers/:id", h.DeleteSupplier, protected...)

	e.GET("/changes", h.Changes, protected...)
}
