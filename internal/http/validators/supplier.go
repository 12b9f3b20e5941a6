package validators

import (
	"regexp"
	"strings"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateSupplierInput(in model.SupplierInput) error {
	return ValidateSupplierPatch(model.PatchFromInput(in))
}

func ValidateSupplierPatch(p model.SupplierPatch) error {
	errs := map[string]string{}

	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs["name"] = "name is required"
	}
	if p.Phone != nil && strings.TrimSpace(*p.Phone) == "" {
		errs["phone"] = "phone is required"
	}
	if p.Email != nil && *p.Email != "" && !emailPattern.MatchString(strings.TrimSpace(*p.Email)) {
		errs["email"] = "email is invalid"
	}

	return apperrors.NewValidationError(errs)
}
