package util

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"certify_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"plain sentinel", ErrTestLocked, KindForbidden},
		{"wrapped sentinel", fmt.Errorf("submit: %w", ErrTestNotFound), KindNotFound},
		{"double wrapped", fmt.Errorf("a: %w", fmt.Errorf("b: %w", ErrMissingScope)), KindInvalidRequest},
		{"unauthorized", ErrUnauthorized, KindUnauthorized},
		{"permission", ErrPermissionDenied, KindForbidden},
		{"unknown", fmt.Errorf("connection refused"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusFor(KindUnauthorized))
	assert.Equal(t, http.StatusForbidden, StatusFor(KindForbidden))
	assert.Equal(t, http.StatusNotFound, StatusFor(KindNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(KindInvalidRequest))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(KindInternal))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, model.Student, "a@b.c", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Student, claims.Role)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(1, model.Student, "", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestOptionalUint(t *testing.T) {
	v, err := OptionalUint("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = OptionalUint("7")
	require.NoError(t, err)
	assert.Equal(t, uint(7), *v)

	_, err = OptionalUint("abc")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = OptionalUint("0")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
