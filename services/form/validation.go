package form

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"tripdesk/models"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("booking form is invalid")

// ValidationErrors maps a form field to its user-facing message.
type ValidationErrors map[models.BookingField]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for f, msg := range v {
		parts = append(parts, string(f)+": "+msg)
	}
	sort.Strings(parts)
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Is lets callers match any ValidationErrors against ErrValidation.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Strings converts the errors to a JSON-friendly map.
func (v ValidationErrors) Strings() map[string]string {
	out := make(map[string]string, len(v))
	for f, msg := range v {
		out[string(f)] = msg
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("date_required", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero()
	})
	// The comparison only applies once both dates are set.
	_ = v.RegisterValidation("date_not_before", func(fl validator.FieldLevel) bool {
		end, ok := fl.Field().Interface().(time.Time)
		if !ok || end.IsZero() {
			return true
		}
		other := fl.Parent().FieldByName(fl.Param())
		if !other.IsValid() {
			return true
		}
		start, ok := other.Interface().(time.Time)
		if !ok || start.IsZero() {
			return true
		}
		return !end.Before(start)
	})
	return v
}

// validateFields checks the named fields of draft, or every field when none are named.
func validateFields(draft models.BookingDraft, fields ...models.BookingField) ValidationErrors {
	var err error
	if len(fields) == 0 {
		err = validate.Struct(draft)
	} else {
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.StructField())
		}
		err = validate.StructPartial(draft, names...)
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{}
	}
	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[models.BookingField(fe.Field())] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "date_required":
		switch models.BookingField(fe.Field()) {
		case models.FieldPhone:
			return "Phone number is required"
		case models.FieldStartDate:
			return "Start date is required"
		case models.FieldEndDate:
			return "End date is required"
		}
		return "This field is required"
	case "date_not_before":
		return "End date cannot be before start date"
	case "min":
		return "Must be at least " + fe.Param()
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "email":
		return "Invalid email address"
	case "oneof":
		return "Must be one of " + fe.Param()
	}
	return "Invalid value"
}
