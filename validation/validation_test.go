package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/voxnote/errors"
)

type section struct {
	Model       string  `mapstructure:"model" validate:"required"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Provider    string  `json:"provider" validate:"omitempty,oneof=local s3"`
	Inner       inner   `mapstructure:"inner"`
}

type inner struct {
	MaxTokens int `mapstructure:"max_tokens" validate:"gte=0"`
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(section{Model: "gpt-4o-mini", Temperature: 0.3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsTaggedFieldNames(t *testing.T) {
	err := Validate(section{Temperature: 3, Provider: "ftp", Inner: inner{MaxTokens: -1}})
	if !errors.IsKind(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"model: is required",
		"temperature: must be less than or equal to 2",
		"provider: must be one of: local s3",
		"inner.max_tokens: must be greater than or equal to 0",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 4 {
		t.Errorf("expected 4 field errors, got %v", appErr.Details["fields"])
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if err := Validate("not a struct"); !errors.IsKind(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestValidatorRequired(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"standup.m4a", false},
		{"", true},
		{"   ", true},
	}
	for _, tc := range tests {
		v := New().Required("audio", tc.value)
		if v.HasErrors() != tc.wantErr {
			t.Errorf("Required(%q) errors = %v, want %v", tc.value, v.Errors(), tc.wantErr)
		}
	}
}

func TestValidatorExtension(t *testing.T) {
	allowed := []string{".m4a", ".wav"}
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"a.m4a", false},
		{"A.WAV", false},
		{"", false},
		{"notes.txt", true},
		{"noext", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().Extension("audio", tc.name, allowed)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("Extension(%q) errors = %v, want %v", tc.name, v.Errors(), tc.wantErr)
			}
		})
	}
}

func TestValidatorChaining(t *testing.T) {
	err := New().
		Required("audio", "").
		MaxLength("prompt", strings.Repeat("x", 11), 10).
		Extension("audio", "notes", []string{".m4a"}).
		Custom(false, "refine", "must be a boolean").
		Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	appErr, _ := errors.AsAppError(err)
	fields := appErr.Details["fields"].([]FieldError)
	if len(fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d", len(fields))
	}
	if fields[2].Message != "file name has no extension" {
		t.Errorf("unexpected extension message %q", fields[2].Message)
	}
	if !strings.HasPrefix(appErr.Message, "audio: is required; prompt:") {
		t.Errorf("expected failures joined in order, got %q", appErr.Message)
	}
}

func TestValidatorNoErrors(t *testing.T) {
	if err := New().Required("a", "b").MaxLength("p", "", 1).Custom(true, "x", "y").Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestIsUUID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{uuid.NewString(), true},
		{uuid.Nil.String(), false},
		{"nope", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsUUID(tc.in); got != tc.want {
			t.Errorf("IsUUID(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxTokens"); got != "max_tokens" {
		t.Errorf("toSnakeCase = %q", got)
	}
}
