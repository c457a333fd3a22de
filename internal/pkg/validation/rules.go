package validation

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
)

// Custom binding tags
const (
	// TagCourseCode accepts a course code usable inside a certificate ID
	TagCourseCode = "coursecode"
	// TagBirthDate accepts DD-MM-YYYY or YYYY-MM-DD
	TagBirthDate = "birthdate"
)

var rules = map[string]validator.Func{
	TagCourseCode: func(fl validator.FieldLevel) bool {
		return models.ValidCourseCode(strings.TrimSpace(fl.Field().String()))
	},
	TagBirthDate: func(fl validator.FieldLevel) bool {
		_, ok := helpers.ParseBirthDate(fl.Field().String())
		return ok
	},
}

// Register adds the document rules to v
func Register(v *validator.Validate) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin adds the document rules to gin's default validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Message returns the user-facing text for a failed custom rule
func Message(field, tag string) (string, bool) {
	switch tag {
	case TagCourseCode:
		return field + " must not contain '/' or spaces", true
	case TagBirthDate:
		return field + " must be a date in DD-MM-YYYY or YYYY-MM-DD format", true
	}
	return "", false
}
