package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the struct's validate tags and folds every failure into
// a single error. Controllers surface the message verbatim in 400 responses,
// so it lists each offending field in plain words.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var problems []string
	for _, fieldErr := range err.(validator.ValidationErrors) {
		problems = append(problems, describeFieldError(fieldErr))
	}
	return fmt.Errorf("%s", strings.Join(problems, ", "))
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := strings.ToLower(fieldErr.Field())
	param := fieldErr.Param()

	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param + " characters"
	case "max":
		return field + " must be at most " + param + " characters"
	case "email":
		return field + " must be a valid email"
	case "len":
		return field + " must be exactly " + param + " characters"
	case "eqfield":
		return field + " must match " + strings.ToLower(param)
	}
	return field + " is invalid"
}
