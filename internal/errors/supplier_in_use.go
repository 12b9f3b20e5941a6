package errors

import "net/http"

// ErrSupplierInUse is returned when a supplier is still linked to tasks.
var ErrSupplierInUse = register(&Exception{
	Code:       "supplier_in_use",
	Message:    "supplier is still linked to tasks",
	StatusCode: http.StatusConflict,
})
