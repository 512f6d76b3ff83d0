package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/meridian/absence-engine/absence"
)

// paramValidator checks service parameter structs against their `validate`
// tags. Shared by all services; validator.Validate is safe for concurrent
// use.
var paramValidator = validator.New(validator.WithRequiredStructEnabled())

// checkRequiredFields runs struct validation and folds the failures into a
// single MissingFieldsError naming every offending field.
func checkRequiredFields(params any) error {
	err := paramValidator.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	missing := make([]string, 0, len(verrs))
	for _, fieldErr := range verrs {
		missing = append(missing, fieldErr.Field())
	}
	return &absence.MissingFieldsError{Fields: missing}
}
