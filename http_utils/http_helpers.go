package http_utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// ValidationErrors turns a validator error into a response listing every
// failed field. ok is false when err is nil.
func ValidationErrors(err error) (ValidationErrorResponse, bool) {
	if err == nil {
		return ValidationErrorResponse{}, false
	}

	response := ValidationErrorResponse{
		BaseResponse: NewBaseResponse(false, "invalid body, validation failed"),
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		response.Errors = []string{err.Error()}
		return response, true
	}

	response.Errors = lo.Map(fieldErrors, func(item validator.FieldError, index int) string {
		return item.Error()
	})

	return response, true
}

// ValidateStruct validates s with v and reports failures the same way as
// ValidationErrors.
func ValidateStruct(v *validator.Validate, s interface{}) (ValidationErrorResponse, bool) {
	return ValidationErrors(v.Struct(s))
}
