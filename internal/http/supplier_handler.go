package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"task-manager.com/task-manager/internal/http/validators"
	model "task-manager.com/task-manager/internal/models"
)

func (h *Handler) ListSuppliers(c echo.Context) error {
	suppliers, err := h.supplierService.ListSuppliers(c.Request().Context(), session(c).UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":     len(suppliers),
		"suppliers": suppliers,
	})
}

func (h *Handler) CreateSupplier(c echo.Context) error {
	var in model.SupplierInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := validators.ValidateSupplierInput(in); err != nil {
		return err
	}

	supplier, err := h.supplierService.CreateSupplier(c.Request().Context(), session(c).UserID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, supplier)
}

func (h *Handler) UpdateSupplier(c echo.Context) error {
	var patch model.SupplierPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	if err := validators.ValidateSupplierPatch(patch); err != nil {
		return err
	}

	supplier, err := h.supplierService.UpdateSupplier(c.Request().Context(), session(c).UserID, c.Param("id"), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier answers 409 supplier_in_use while tasks still link to it.
func (h *Handler) DeleteSupplier(c echo.Context) error {
	if err := h.supplierService.DeleteSupplier(c.Request().Context(), session(c).UserID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
