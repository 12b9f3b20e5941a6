package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "task-manager.com/task-manager/internal/errors"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorHandler renders every error as an errorResponse with the status
// carried by the error.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := errorResponse{
			Error:   apperrors.Code(err),
			Message: err.Error(),
			Fields:  apperrors.Fields(err),
		}
		status := apperrors.StatusCode(err)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			body.Error = strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
			body.Message = fmt.Sprint(httpErr.Message)
		}

		if status >= http.StatusInternalServerError {
			log.Errorw("request error", "path", c.Request().URL.Path, "error", err)
			body.Message = http.StatusText(status)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warnw("failed to write error response", "error", err)
		}
	}
}
