package validation

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/voxnote/errors"
)

// FieldError is one failed check, reported under "fields" in the error
// details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates failed checks. Its methods return the receiver so
// checks chain; Validate turns the result into an error.
type Validator struct {
	errs []FieldError
}

// New returns an empty Validator.
func New() *Validator { return &Validator{} }

// AddError records a failed check.
func (v *Validator) AddError(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

func (v *Validator) Errors() []FieldError { return v.errs }

// Validate returns nil, or an INVALID_INPUT AppError whose message joins
// every failure and whose details carry them as a list.
func (v *Validator) Validate() error {
	if len(v.errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(v.errs))
	for _, e := range v.errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", v.errs)
}

// Required fails on an empty or blank value.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength fails when value is longer than maxLen bytes.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// Extension fails when a non-empty file name does not end in one of the
// allowed extensions. allowed entries are lower case with the leading dot.
func (v *Validator) Extension(field, fileName string, allowed []string) *Validator {
	if fileName == "" {
		return v
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !slices.Contains(allowed, ext) {
		if ext == "" {
			v.AddError(field, "file name has no extension")
		} else {
			v.AddError(field, fmt.Sprintf("unsupported file type %q", ext))
		}
	}
	return v
}

// Custom records message when ok is false.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// IsUUID reports whether value parses as a non-nil UUID.
func IsUUID(value string) bool {
	id, err := uuid.Parse(value)
	return err == nil && id != uuid.Nil
}
