package errors

import "net/http"

var ErrTaskNotFound = register(&Exception{
	Code:       "task_not_found",
	Message:    "task not found",
	StatusCode: http.StatusNotFound,
})
