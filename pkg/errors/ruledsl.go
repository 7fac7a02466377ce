package errors

import (
	"errors"

	"teagate/pkg/ruledsl"
)

// FromSyntaxError maps a rule compile failure to ErrInvalidRule. Other
// errors are returned as ErrInternal.
func FromSyntaxError(err error) *Error {
	if err == nil {
		return nil
	}
	var syntaxErr *ruledsl.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return Wrap(err, ErrInternal)
	}
	return ErrInvalidRule.
		WithCause(err).
		WithDetail("reason", string(syntaxErr.Reason)).
		WithDetail("message", syntaxErr.Error())
}
