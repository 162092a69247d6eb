// Package web defines common components for a web application.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Data wraps a payload into the response envelope.
func Data(data any) Response {
	return Response{Data: data}
}

// Error wraps err into the response envelope.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg renders a human readable message for a failed validation rule.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s field is required", fe.Field())
	case "currency":
		return fmt.Sprintf("%s field has unsupported currency", fe.Field())
	case "decimal":
		return fmt.Sprintf("%s field must be a decimal number", fe.Field())
	case "max":
		return fmt.Sprintf("%s field must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s field must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s field must be one of [%s]", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%s field must be a valid uuid", fe.Field())
	}

	return fmt.Sprintf("%s field is invalid", fe.Field())
}
