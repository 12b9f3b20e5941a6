package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "task-manager.com/task-manager/internal/http/middlewares"
	"task-manager.com/task-manager/internal/http/validators"
	model "task-manager.com/task-manager/internal/models"
)

func (h *Handler) SignUp(c echo.Context) error {
	var creds model.Credentials
	if err := bind(c, &creds); err != nil {
		return err
	}
	if err := validators.ValidateCredentials(creds, true); err != nil {
		return err
	}

	s, err := h.authService.SignUp(c.Request().Context(), creds)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) SignIn(c echo.Context) error {
	var creds model.Credentials
	if err := bind(c, &creds); err != nil {
		return err
	}
	if err := validators.ValidateCredentials(creds, false); err != nil {
		return err
	}

	s, err := h.authService.SignIn(c.Request().Context(), creds)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, s)
}

func (h *Handler) SignOut(c echo.Context) error {
	if err := h.authService.SignOut(c.Request().Context(), middleware.BearerToken(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, session(c))
}
