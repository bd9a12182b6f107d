package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message only",
			err:  &AppError{Code: ErrCodeForbidden, Message: "forbidden"},
			want: "forbidden",
		},
		{
			name: "with description",
			err:  NotFound("the requested resource was not found: abc"),
			want: "not found: the requested resource was not found: abc",
		},
		{
			name: "with cause",
			err:  Wrap(errors.New("boom"), ErrCodeInternal, "failed to process"),
			want: "failed to process: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Unauthorized(""), http.StatusUnauthorized},
		{Forbidden(""), http.StatusForbidden},
		{NotFound(""), http.StatusNotFound},
		{Validation(""), http.StatusBadRequest},
		{Conflict(""), http.StatusConflict},
		{AllocationExhausted(""), http.StatusServiceUnavailable},
		{Internal(""), http.StatusInternalServerError},
		{&AppError{Code: ErrCodeValidation, Status: http.StatusTeapot}, http.StatusTeapot},
		{&AppError{Code: "unknown"}, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NotFound("x"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.Equal(t, ErrCodeNotFound, GetCode(wrapped))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))

	assert.True(t, IsUnauthorized(Unauthorized("")))
	assert.True(t, IsForbidden(Forbidden("")))
	assert.True(t, IsValidation(ValidationField("longurl", "must be url")))
	assert.True(t, IsAllocationExhausted(AllocationExhausted("")))
	assert.True(t, IsInternal(Internal("")))
}

func TestStructured(t *testing.T) {
	t.Run("caller facing errors are structured", func(t *testing.T) {
		for _, err := range []error{
			Unauthorized("unauthorized"),
			Forbidden("forbidden"),
			fmt.Errorf("wrapped: %w", NotFound("missing")),
			Validation("bad"),
			Conflict("dup"),
			AllocationExhausted("none left"),
		} {
			appErr, ok := Structured(err)
			require.True(t, ok, err.Error())
			assert.NotNil(t, appErr)
		}
	})

	t.Run("internal errors escalate", func(t *testing.T) {
		_, ok := Structured(Internal("app admin role id is null"))
		assert.False(t, ok)
	})

	t.Run("plain errors are unclassified", func(t *testing.T) {
		_, ok := Structured(errors.New("boom"))
		assert.False(t, ok)
	})

	t.Run("status outside the http range is unclassified", func(t *testing.T) {
		_, ok := Structured(&AppError{Code: ErrCodeValidation, Status: 42})
		assert.False(t, ok)
		_, ok = Structured(&AppError{Code: "mystery"})
		assert.False(t, ok)
	})
}
