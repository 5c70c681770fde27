package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/davicafu/rosterlab/internal/shared/domain/outcome"
)

// phonePattern acepta números locales o internacionales: +27 79 554 7786, (079) 554-7786...
var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-\(\)]{7,20}$`)

// Validator envuelve validator.Validate con las reglas propias del dominio.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Usamos el nombre del tag json para que los errores casen con el payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordStrong(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct valida s y devuelve los errores por campo, o nil si es válido.
func (val *Validator) Struct(s interface{}) outcome.FieldErrors {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return outcome.FieldErrors{"_": err.Error()}
	}

	fields := make(outcome.FieldErrors, len(verr))
	for _, fe := range verr {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "phone":
		return "must be a valid phone number"
	case "password":
		return "must have 8+ characters with a digit, a lowercase, an uppercase and a symbol"
	default:
		return "is invalid"
	}
}

// PasswordStrong aplica la política de contraseñas de las cuentas.
func PasswordStrong(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var digit, lower, upper, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsNumber(r):
			symbol = true
		}
	}
	return digit && lower && upper && symbol
}
