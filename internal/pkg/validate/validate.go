// Package validate wraps go-playground/validator behind a tiny API so
// handlers can reject malformed requests before they reach a service.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is initialised once at package load time. Custom registrations must
// happen in init() before the first call to Struct.
var v = validator.New()

// Struct validates s using its `validate` tags and returns a single
// human-readable error covering every failed field, or nil.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
