package errors

import "net/http"

var ErrSupplierNotFound = register(&Exception{
	Code:       "supplier_not_found",
	Message:    "supplier not found",
	StatusCode: http.StatusNotFound,
})

var ErrSupplierIDRequired = register(&Exception{
	Code:       "supplier_id_required",
	Message:    "supplier id is required",
	StatusCode: http.StatusBadRequest,
})
