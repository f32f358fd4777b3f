package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// firstViolation turns a validator error into a single-line message
// suitable for the API error body.
func firstViolation(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed on the %s rule", fe.Field(), fe.Tag())
	}
	return err.Error()
}
