package book

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// isbnShape checks digit grouping only: 3 digits, then 1-5, 1-7, 1-7 and a
// final digit, each group optionally separated by a hyphen. No checksum.
var isbnShape = regexp.MustCompile(`^\d{3}-?\d{1,5}-?\d{1,7}-?\d{1,7}-?\d$`)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("isbn_shape", validateISBNShape)
}

func validateISBNShape(fl validator.FieldLevel) bool {
	return IsValidISBN(fl.Field().String())
}

// IsValidISBN reports whether isbn has the accepted ISBN digit grouping.
func IsValidISBN(isbn string) bool {
	return isbnShape.MatchString(isbn)
}

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned by Validate and carries every rejected field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Validate checks a candidate book before it is persisted.
func Validate(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		field := fe.Field()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
		case "isbn_shape":
			message = fmt.Sprintf("%s must look like 978-3-16-148410-0", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		out.Fields = append(out.Fields, FieldError{Field: field, Message: message})
	}
	return out
}
