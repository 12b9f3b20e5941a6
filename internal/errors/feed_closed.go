package errors

import "net/http"

var ErrFeedClosed = register(&Exception{
	Code:       "feed_closed",
	Message:    "change feed is closed",
	StatusCode: http.StatusServiceUnavailable,
})
