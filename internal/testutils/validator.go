package testutils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewTestValidator creates a validator that reports mapstructure field names,
// so test assertions can match the keys used in configuration files.
func NewTestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
