package errors

import "net/http"

var ErrTaskIDRequired = register(&Exception{
	Code:       "task_id_required",
	Message:    "task id is required",
	StatusCode: http.StatusBadRequest,
})
