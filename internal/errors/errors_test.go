package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindStore, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("start: %w", Conflict("Charger is already in use."))
	got := From(wrapped)
	assert.Equal(t, KindConflict, got.Kind)
	assert.Equal(t, "Charger is already in use.", got.Message)
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))

	cause := errors.New("connection refused")
	store := From(cause)
	assert.Equal(t, KindStore, store.Kind)
	assert.Equal(t, GenericMessage, store.Message)
	assert.ErrorIs(t, store, cause)
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "Card creation failed. Card value cannot be empty.", Validation("Card creation failed.", "Card value cannot be empty.").Error())
	assert.Equal(t, "Card not found.", NotFound("Card not found.").Error())
	assert.Equal(t, "An error occurred. boom", Store(errors.New("boom")).Error())
}
