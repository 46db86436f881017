package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cnc-voile/cantine-service/internal/models"
)

// Validator wraps struct validation with the custom rules used by the
// reservation API.
type Validator struct {
	validate *validator.Validate
}

// ValidationError describes a single failed field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerRules()
	return v
}

// Validate checks a struct against its validate tags.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	var errs ValidationErrors

	err := v.validate.Struct(s)
	if err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Message: errorMessage(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
	}

	return errs
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("user_status", func(fl validator.FieldLevel) bool {
		return models.IsValidStatus(fl.Field().String())
	})

	v.validate.RegisterValidation("extra_category", func(fl validator.FieldLevel) bool {
		return models.IsValidExtraCategory(fl.Field().String())
	})

	// Dates exchanged in JSON bodies are YYYY-MM-DD.
	v.validate.RegisterValidation("date_ymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})

	// The booking deadline is an HH:MM wall-clock time.
	v.validate.RegisterValidation("deadline_time", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
}

func errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "email":
		return "must be a valid email address"
	case "user_status":
		return "must be a valid user status"
	case "extra_category":
		return "must be a valid extra meal category"
	case "date_ymd":
		return "must be a date in YYYY-MM-DD format"
	case "deadline_time":
		return "must be a time in HH:MM format"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
