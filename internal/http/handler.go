package http

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "task-manager.com/task-manager/internal/errors"
	middleware "task-manager.com/task-manager/internal/http/middlewares"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/realtime"
	"task-manager.com/task-manager/internal/services"
)

type Handler struct {
	taskService     *services.TaskService
	supplierService *services.SupplierService
	authService     *services.AuthService
	feed            realtime.Feed
	log             *zap.SugaredLogger

	streamsDone chan struct{}
	closeOnce   sync.Once
}

func NewHandler(
	taskService *services.TaskService,
	supplierService *services.SupplierService,
	authService *services.AuthService,
	feed realtime.Feed,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		taskService:     taskService,
		supplierService: supplierService,
		authService:     authService,
		feed:            feed,
		log:             log,
		streamsDone:     make(chan struct{}),
	}
}

// CloseStreams ends every open change stream. Server shutdown waits for
// active requests, so it must run first; see http.Server.RegisterOnShutdown.
func (h *Handler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.streamsDone) })
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// bind decodes the JSON body only; path and query values are read explicitly.
func bind(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return apperrors.ErrInvalidJSON
	}
	return nil
}

// session is set by the Authenticate middleware on every protected route.
func session(c echo.Context) model.Session {
	s, _ := middleware.SessionFrom(c)
	return s
}
