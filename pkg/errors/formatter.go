package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func msgForTag(tag string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short or too small"
	case "max":
		return "Value is too long or too large"
	case "len":
		return "Value must be exact length"
	case "numeric":
		return "Value must be numeric"
	case "url", "http_url":
		return "Invalid URL format"
	case "uuid", "uuid4":
		return "Invalid identifier format"
	case "oneof":
		return "Value is not one of the accepted options"
	case "datetime":
		return "Invalid date format"
	case "eq":
		return "Value is not accepted"
	case "gt", "gte", "lt", "lte":
		return "Value is out of range"
	default:
		return "Invalid value"
	}
}

func msgForTagWithParam(fieldError validator.FieldError) string {
	param := fieldError.Param()
	if param == "" {
		return msgForTag(fieldError.Tag())
	}

	switch fieldError.Tag() {
	case "min":
		if fieldError.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", param)
		}
		return fmt.Sprintf("Must be at least %s", param)
	case "max":
		if fieldError.Kind() == reflect.String {
			return fmt.Sprintf("Must not exceed %s characters", param)
		}
		return fmt.Sprintf("Must not exceed %s", param)
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", param)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.Join(strings.Fields(param), ", "))
	case "gt":
		return fmt.Sprintf("Must be greater than %s", param)
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", param)
	case "lt":
		return fmt.Sprintf("Must be less than %s", param)
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", param)
	case "datetime":
		return "Must be a date in YYYY-MM-DD format"
	}

	return msgForTag(fieldError.Tag())
}

func getJSONFieldName(structType reflect.Type, fieldName string) string {
	if structType == nil {
		return fieldName
	}

	field, found := structType.FieldByName(fieldName)
	if !found {
		return fieldName
	}

	jsonTag := field.Tag.Get("json")
	if jsonTag == "" || jsonTag == "-" {
		return fieldName
	}

	return strings.Split(jsonTag, ",")[0]
}

// FormatValidationErrors converts binding failures into per-field messages keyed by JSON name.
func FormatValidationErrors(err error, model interface{}) []ValidationErrorResponse {
	var errorsList []ValidationErrorResponse

	if err == nil {
		return errorsList
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorResponse{
			{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("Invalid type for field %s. Expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
			},
		}
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errorsList
	}

	var structType reflect.Type
	if model != nil {
		structType = reflect.TypeOf(model)
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
	}

	errorsList = make([]ValidationErrorResponse, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		errorsList = append(errorsList, ValidationErrorResponse{
			Field:   getJSONFieldName(structType, fieldError.StructField()),
			Message: msgForTagWithParam(fieldError),
		})
	}

	return errorsList
}
