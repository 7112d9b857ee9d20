// Package validation checks request and configuration shapes.
//
// It supports struct tag validation (using the validator library) and
// programmatic validation with error collection. Both produce an
// errors.AppError with code INVALID_INPUT and a per-field breakdown under
// Details["fields"].
//
// # Struct Tag Validation
//
//	type Config struct {
//	    EnvMode string `mapstructure:"env_mode" validate:"oneof=merge replace"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(len(args) > 0, "args", "must not be empty")
//	err := v.Validate()
package validation
