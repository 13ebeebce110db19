package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperr "github.com/matzehuels/erdsync/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks validate tags on req and returns an INVALID_INPUT
// error listing every failing field.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request")
	}
	msgs := make([]string, len(verrs))
	for i, e := range verrs {
		msgs[i] = formatFieldError(e)
	}
	return apperr.New(apperr.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
