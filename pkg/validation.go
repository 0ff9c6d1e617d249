package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// NewValidator returns a validator that reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func ValidationMessages(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s: failed on '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			messages = append(messages, fmt.Sprintf("%s: failed on '%s'", fe.Field(), fe.Tag()))
		}
	}
	return messages
}

// WriteValidationErrors responds 422 with the validation messages as JSON.
func WriteValidationErrors(w http.ResponseWriter, err error) {
	body, mErr := json.Marshal(ValidationErrorResponse{Errors: ValidationMessages(err)})
	if mErr != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	WriteResponseBytes(w, ContentType.JSON, body, http.StatusUnprocessableEntity)
}
