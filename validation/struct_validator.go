package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/voxnote/errors"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// tagOrder lists the struct tags consulted for field names.
var tagOrder = []string{"mapstructure", "json", "form"}

func structs() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
		structValidator.RegisterTagNameFunc(fieldName)
	})
	return structValidator
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range tagOrder {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return toSnakeCase(fld.Name)
}

// Validate validates a struct using struct tags and returns an invalid-input
// AppError listing every failing field.
func Validate(s any) error {
	err := structs().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Validation("validation failed").WithCause(err)
	}
	v := New()
	for _, fe := range fieldErrs {
		v.AddError(fieldPath(fe), message(fe))
	}
	return v.Validate()
}

// fieldPath returns the namespace without the root struct name,
// e.g. "refinement.max_tokens".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// fixedMessages covers tags whose message ignores the parameter.
var fixedMessages = map[string]string{
	"required":      "is required",
	"required_if":   "is required",
	"url":           "must be a valid URL",
	"http_url":      "must be a valid URL",
	"hostname_port": "must be host:port",
}

var paramMessages = map[string]string{
	"gte":   "must be greater than or equal to ",
	"lte":   "must be less than or equal to ",
	"gt":    "must be greater than ",
	"oneof": "must be one of: ",
}

func message(fe validator.FieldError) string {
	tag := fe.Tag()
	if m, ok := fixedMessages[tag]; ok {
		return m
	}
	if m, ok := paramMessages[tag]; ok {
		return m + fe.Param()
	}
	var bound string
	switch tag {
	case "min":
		bound = "must be at least "
	case "max":
		bound = "must be at most "
	default:
		return "is invalid"
	}
	if fe.Kind() == reflect.String {
		return bound + fe.Param() + " characters"
	}
	return bound + fe.Param()
}

// toSnakeCase maps a Go field name such as MaxTokens to max_tokens.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
