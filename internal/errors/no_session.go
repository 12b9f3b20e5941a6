package errors

import "net/http"

// ErrNoSession is returned by client-side operations attempted without an
// authenticated, unexpired session.
var ErrNoSession = register(&Exception{
	Code:       "no_session",
	Message:    "no authenticated session",
	StatusCode: http.StatusUnauthorized,
})

var ErrStoreClosed = register(&Exception{
	Code:       "store_closed",
	Message:    "task store is closed",
	StatusCode: http.StatusServiceUnavailable,
})
