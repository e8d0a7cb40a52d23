package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDomainPolicy(t *testing.T) {
	tests := []struct {
		name    string
		claims  IdentityClaims
		wantErr string
	}{
		{
			name:   "allowed verified email",
			claims: IdentityClaims{Email: "ana@moby.com", EmailVerified: true},
		},
		{
			name:    "missing email",
			claims:  IdentityClaims{EmailVerified: true},
			wantErr: "no email claim",
		},
		{
			name:    "unverified email",
			claims:  IdentityClaims{Email: "ana@moby.com", EmailVerified: false},
			wantErr: "not verified",
		},
		{
			name:    "foreign domain",
			claims:  IdentityClaims{Email: "ana@other.com", EmailVerified: true},
			wantErr: "outside the allowed domain",
		},
		{
			name:    "allowed domain as substring only",
			claims:  IdentityClaims{Email: "ana@notmoby.com", EmailVerified: true},
			wantErr: "outside the allowed domain",
		},
		{
			name:    "case sensitive match",
			claims:  IdentityClaims{Email: "ana@MOBY.com", EmailVerified: true},
			wantErr: "outside the allowed domain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDomainPolicy(tt.claims, "moby.com")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFlowError(t *testing.T) {
	cause := errors.New("directory returned 502")
	err := NewFlowError(FlowServerError, "resolving", cause)

	assert.Contains(t, err.Error(), "resolving")
	assert.Contains(t, err.Error(), "server_error")
	assert.ErrorIs(t, err, cause)

	var flowErr *FlowError
	require.True(t, errors.As(err, &flowErr))
	assert.Equal(t, FlowServerError, flowErr.Kind)
}

func TestFlowError_NoCause(t *testing.T) {
	err := NewFlowError(FlowInvalidEmail, "policy", nil)
	assert.Contains(t, err.Error(), "invalid_email")
	assert.Nil(t, err.Unwrap())
}
