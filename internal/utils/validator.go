// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	innPattern         = regexp.MustCompile(`^(\d{10}|\d{12})$`)
	kppPattern         = regexp.MustCompile(`^\d{9}$`)
	ogrnPattern        = regexp.MustCompile(`^(\d{13}|\d{15})$`)
	bankAccountPattern = regexp.MustCompile(`^\d{20}$`)
	bikPattern         = regexp.MustCompile(`^\d{9}$`)
	phonePattern       = regexp.MustCompile(`^\+?\d{10,15}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("inn", matchPattern(innPattern))
	validate.RegisterValidation("kpp", matchPattern(kppPattern))
	validate.RegisterValidation("ogrn", matchPattern(ogrnPattern))
	validate.RegisterValidation("bank_account", matchPattern(bankAccountPattern))
	validate.RegisterValidation("bik", matchPattern(bikPattern))
	validate.RegisterValidation("phone", matchPattern(phonePattern))
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func matchPattern(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// NormalizePhone strips the separators people type into phone fields.
func NormalizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return replacer.Replace(strings.TrimSpace(phone))
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "required_without":
		return e.Field() + " or " + e.Param() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "inn":
		return "INN must contain 10 or 12 digits"
	case "kpp":
		return "KPP must contain 9 digits"
	case "ogrn":
		return "OGRN must contain 13 or 15 digits"
	case "bank_account":
		return e.Field() + " must contain 20 digits"
	case "bik":
		return "BIK must contain 9 digits"
	case "phone":
		return "Invalid phone number"
	default:
		return e.Field() + " is invalid"
	}
}
