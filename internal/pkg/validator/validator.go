package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// ISO 4217 currency codes accepted by the payment provider
	validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		currency := fl.Field().String()
		validCurrencies := []string{"NGN", "USD", "GHS", "ZAR", "KES"}
		for _, c := range validCurrencies {
			if currency == c {
				return true
			}
		}
		return false
	})

	// Order side validation
	validate.RegisterValidation("order_side", func(fl validator.FieldLevel) bool {
		side := fl.Field().String()
		return side == "buy" || side == "sell"
	})

	// KYC document type validation
	validate.RegisterValidation("doc_type", func(fl validator.FieldLevel) bool {
		docType := fl.Field().String()
		validTypes := []string{"passport", "national_id", "drivers_license", "utility_bill"}
		for _, t := range validTypes {
			if docType == t {
				return true
			}
		}
		return false
	})

	// Property type validation
	validate.RegisterValidation("property_type", func(fl validator.FieldLevel) bool {
		propType := fl.Field().String()
		validTypes := []string{"apartment", "house", "land", "commercial", ""}
		for _, t := range validTypes {
			if propType == t {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "currency":
			errors[field] = "Unsupported currency code"
		case "order_side":
			errors[field] = "Invalid order side. Must be: buy or sell"
		case "doc_type":
			errors[field] = "Invalid document type. Must be: passport, national_id, drivers_license, or utility_bill"
		case "property_type":
			errors[field] = "Invalid property type. Must be: apartment, house, land, or commercial"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
