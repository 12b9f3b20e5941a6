package validators

import (
	"strings"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

const minPasswordLength = 6

// ValidateCredentials checks a sign-in form. Sign-up also enforces the
// minimum password length.
func ValidateCredentials(creds model.Credentials, signUp bool) error {
	errs := map[string]string{}

	email := strings.TrimSpace(creds.Email)
	switch {
	case email == "":
		errs["email"] = "email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "email is invalid"
	}

	switch {
	case creds.Password == "":
		errs["password"] = "password is required"
	case signUp && len(creds.Password) < minPasswordLength:
		errs["password"] = "password must have at least 6 characters"
	}

	return apperrors.NewValidationError(errs)
}
