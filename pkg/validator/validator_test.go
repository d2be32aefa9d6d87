package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"notblank,max=50"`
}

func TestValidate_FieldMessagesUseJSONNames(t *testing.T) {
	err := Validate(signUpRequest{Email: "nope", Password: "123", Username: "   "})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])
	assert.Equal(t, "is required", fields["username"])
	assert.Contains(t, err.Error(), "field 'email'")
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(signUpRequest{Email: "a@b.co", Password: "secret", Username: "jo"}))
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"secret","username":"jo"}`))
	var dst signUpRequest
	require.NoError(t, DecodeAndValidate(r, &dst))
	assert.Equal(t, "jo", dst.Username)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	err := DecodeAndValidate(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
