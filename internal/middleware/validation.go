package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tarcin/docissuer/internal/pkg/validation"
)

// UseJSONFieldNames makes gin's validator report fields by their json name
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// ValidationDetails lists one message per failing field
func ValidationDetails(errs validator.ValidationErrors) []map[string]string {
	out := make([]map[string]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, map[string]string{
			"field":   e.Field(),
			"message": formatValidationError(e),
		})
	}
	return out
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof", "oneofci":
		return e.Field() + " must be one of: " + e.Param()
	default:
		if msg, ok := validation.Message(e.Field(), e.Tag()); ok {
			return msg
		}
		return e.Field() + " validation failed: " + e.Tag()
	}
}
