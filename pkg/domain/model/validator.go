package model

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs tag based validation and converts the first failure into a goerr
// wrapping sentinel, carrying the field name and the failed rule.
func validateStruct(v any, sentinel error) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return goerr.Wrap(err, "failed to validate")
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}

	first := verrs[0]
	return goerr.Wrap(sentinel, "validation failed",
		goerr.V(FieldKey, first.Field()),
		goerr.V(RuleKey, first.Tag()),
		goerr.V(InvalidFieldsKey, strings.Join(fields, ",")),
	)
}
