package forms

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvcPattern    = regexp.MustCompile(`^[0-9]{3,4}$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their json name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		s := strings.ReplaceAll(fl.Field().String(), " ", "")
		return len(s) == 16 && digitsOnly(s) == s
	})
	validate.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("cvc", func(fl validator.FieldLevel) bool {
		return cvcPattern.MatchString(fl.Field().String())
	})
}

// IsValidURL reports whether s is empty or an absolute URL
func IsValidURL(s string) bool {
	if s == "" {
		return true
	}
	return validate.Var(s, "url") == nil
}

// CardPayment is the checkout card form
type CardPayment struct {
	CardNumber     string `json:"card_number" validate:"cardnumber"`
	Expiry         string `json:"expiry" validate:"expiry"`
	CVC            string `json:"cvc" validate:"cvc"`
	CardholderName string `json:"cardholder_name" validate:"required"`
}

// FieldErrors maps a json field name to a human-readable message
type FieldErrors map[string]string

// ValidateCardPayment checks every card field and reports all failures at
// once. An empty result means the form may be submitted.
func ValidateCardPayment(p CardPayment) FieldErrors {
	p.CardholderName = strings.TrimSpace(p.CardholderName)

	out := FieldErrors{}
	err := validate.Struct(p)
	if err == nil {
		return out
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = "invalid payment details"
		return out
	}

	for _, fe := range ve {
		out[fe.Field()] = cardMessage(fe.Tag())
	}
	return out
}

func cardMessage(tag string) string {
	switch tag {
	case "cardnumber":
		return "Card number must be 16 digits"
	case "expiry":
		return "Expiry date must be in MM/YY format"
	case "cvc":
		return "CVC must be 3 or 4 digits"
	case "required":
		return "Cardholder name is required"
	default:
		return "Invalid value"
	}
}
