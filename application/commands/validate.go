package commands

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"idadmin/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation on a command and converts failures into
// the application's coded validation error
func Validate(cmd interface{}) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewValidationError(err.Error()).WithCode("INVALID_COMMAND")
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return errors.NewValidationError("invalid command input").
		WithCode("INVALID_COMMAND").WithDetails(details)
}
