package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teagate/pkg/ruledsl"
)

func TestError_WithDetailDoesNotMutateBase(t *testing.T) {
	err := ErrNotFound.WithDetail("id", int64(7))

	assert.Equal(t, int64(7), err.Details["id"])
	assert.Empty(t, ErrNotFound.Details)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: resource not found", ErrNotFound.Error())

	err := ErrValidation.WithDetail("message", "moisture must be between 0.0 and 100.0")
	assert.Equal(t, "VALIDATION_ERROR: moisture must be between 0.0 and 100.0", err.Error())

	wrapped := Wrap(fmt.Errorf("connection refused"), ErrInternal)
	assert.Equal(t, "INTERNAL_ERROR: internal server error (caused by: connection refused)", wrapped.Error())
	assert.Nil(t, Wrap(nil, ErrInternal))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrValidation.WithDetail("field", "lotCode"), http.StatusBadRequest},
		{ErrInvalidRule, http.StatusUnprocessableEntity},
		{ErrConflict, http.StatusConflict},
		{ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("wrapped: %w", ErrConflict), http.StatusConflict},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.err), tt.err.Error())
	}
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrNotFound.WithDetail("id", int64(3)))
	assert.Equal(t, "resource not found", resp["error"])
	assert.Equal(t, "NOT_FOUND", resp["error_code"])
	assert.Equal(t, map[string]interface{}{"id": int64(3)}, resp["details"])

	resp = ToErrorResponse(fmt.Errorf("boom"))
	assert.Equal(t, "INTERNAL_ERROR", resp["error_code"])
	assert.NotContains(t, resp, "details")
}

func TestRetryableClassification(t *testing.T) {
	assert.False(t, ErrValidation.IsRetryable())
	assert.True(t, ErrValidation.IsFatal())
	assert.False(t, ErrInvalidRule.IsRetryable())
	assert.True(t, ErrInternal.IsRetryable())
	assert.True(t, ErrInternal.AsFatal().IsFatal())
	assert.True(t, ErrValidation.AsRetryable().IsRetryable())
}

func TestFromSyntaxError(t *testing.T) {
	_, compileErr := ruledsl.Compile(`rule("X") { then BLOCK }`)
	require.Error(t, compileErr)

	err := FromSyntaxError(compileErr)
	require.NotNil(t, err)
	assert.True(t, IsInvalidRule(err))
	assert.Equal(t, "unsupported-condition", err.Details["reason"])
	assert.Equal(t, http.StatusUnprocessableEntity, ToHTTPStatus(err))
	assert.ErrorIs(t, err, ruledsl.ErrUnsupportedCondition)

	assert.Nil(t, FromSyntaxError(nil))
	assert.Equal(t, ErrInternal.Code, FromSyntaxError(fmt.Errorf("db down")).Code)
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("bad state")
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, true, appErr.Details["panic"])
	assert.True(t, appErr.IsFatal())
}
