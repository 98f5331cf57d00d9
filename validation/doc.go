// Package validation checks configuration sections and upload requests.
//
// Struct tag validation uses go-playground/validator and reports field names
// from mapstructure, json or form tags, in that order:
//
//	type Section struct {
//	    Model string `mapstructure:"model" validate:"required"`
//	}
//	err := validation.Validate(section)
//
// Programmatic validation collects errors:
//
//	v := validation.New()
//	v.Required("audio", name).Extension("audio", name, transcription.Extensions())
//	if err := v.Validate(); err != nil { ... }
package validation
