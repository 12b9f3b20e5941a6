package errors

import "net/http"

var ErrUnauthorized = register(&Exception{
	Code:       "unauthorized",
	Message:    "missing or invalid session token",
	StatusCode: http.StatusUnauthorized,
})

var ErrInvalidCredentials = register(&Exception{
	Code:       "invalid_credentials",
	Message:    "invalid email or password",
	StatusCode: http.StatusUnauthorized,
})

var ErrEmailTaken = register(&Exception{
	Code:       "email_taken",
	Message:    "email is already registered",
	StatusCode: http.StatusConflict,
})
