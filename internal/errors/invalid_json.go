package errors

import "net/http"

var ErrInvalidJSON = register(&Exception{
	Code:       "invalid_json",
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
})

var ErrValidationFailed = register(&Exception{
	Code:       "validation_failed",
	Message:    "validation failed",
	StatusCode: http.StatusUnprocessableEntity,
})

var ErrRateLimited = register(&Exception{
	Code:       "rate_limited",
	Message:    "rate limit exceeded",
	StatusCode: http.StatusTooManyRequests,
})
