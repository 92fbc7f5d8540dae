package validation

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// vnPhonePattern matches Vietnamese mobile numbers: a leading zero followed
// by exactly nine digits.
var vnPhonePattern = regexp.MustCompile(`^0\d{9}$`)

var upperPattern = regexp.MustCompile(`[A-Z]`)

// ValidVNPhone reports whether s is a valid Vietnamese phone number.
func ValidVNPhone(s string) bool {
	return vnPhonePattern.MatchString(s)
}

// ValidPassword enforces the account password policy: at least 8 characters,
// one uppercase letter and one of the symbols @ ! ?.
func ValidPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	if !upperPattern.MatchString(s) {
		return false
	}
	return strings.ContainsAny(s, "@!?")
}

func vnPhone(fl validator.FieldLevel) bool {
	return ValidVNPhone(fl.Field().String())
}

func strongPassword(fl validator.FieldLevel) bool {
	return ValidPassword(fl.Field().String())
}

// Register installs the custom validators on gin's binding engine. Call once
// at startup before routes are set up.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("vnphone", vnPhone); err != nil {
		return err
	}
	return v.RegisterValidation("strongpw", strongPassword)
}
