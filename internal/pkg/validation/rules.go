package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Custom rule tags usable in binding tags
const (
	// TagNotBlank rejects strings that are empty after trimming whitespace
	TagNotBlank = "notblank"
	// TagPhone accepts loosely formatted phone numbers
	TagPhone = "phone"
)

// Validation rule patterns
var (
	PhonePattern = `^\+?[0-9][0-9 ()\-]{5,19}$`

	phoneRegexp = regexp.MustCompile(PhonePattern)
)

// Register adds the custom rules to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagNotBlank, notBlank); err != nil {
		return fmt.Errorf("register %s: %w", TagNotBlank, err)
	}
	if err := v.RegisterValidation(TagPhone, phone); err != nil {
		return fmt.Errorf("register %s: %w", TagPhone, err)
	}
	return nil
}

// RegisterWithGin adds the custom rules to gin's binding validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func phone(fl validator.FieldLevel) bool {
	return phoneRegexp.MatchString(fl.Field().String())
}
