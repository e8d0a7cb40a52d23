package validator

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type migrationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2"`
	Role  string `json:"role" validate:"omitempty,oneof=developer manager admin"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(migrationRequest{
		Email: "user@moby.com",
		Name:  "Ana Garcia",
		Role:  "developer",
	})
	assert.NoError(t, err)
}

func TestValidate_RequiredField(t *testing.T) {
	err := Validate(migrationRequest{Name: "Ana"})
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Error(), "Email")
	assert.Contains(t, vErr.Error(), "is required")
}

func TestValidate_InvalidEmail(t *testing.T) {
	err := Validate(migrationRequest{Email: "not-an-email", Name: "Ana"})
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "must be a valid email address", vErr.Fields()["Email"])
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate(migrationRequest{Email: "user@moby.com", Name: "Ana", Role: "pirate"})
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields()["Role"], "must be one of")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	req := httptest.NewRequest("POST", "/migrateUser",
		strings.NewReader(`{"email":"user@moby.com","name":"Ana Garcia"}`))

	var dst migrationRequest
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "user@moby.com", dst.Email)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/migrateUser", strings.NewReader(`{`))

	var dst migrationRequest
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
