package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticVerifier(t *testing.T) {
	v := &StaticVerifier{Token: "secret-token", Subject: "pantry-app"}

	id, err := v.Verify("secret-token")
	require.NoError(t, err)
	assert.Equal(t, "pantry-app", id.Subject)

	_, err = v.Verify("wrong-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaticVerifierEmptyConfiguredToken(t *testing.T) {
	v := &StaticVerifier{}
	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken, "empty configured token must never match")
}

func TestFromAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc123", "abc123", false},
		{"lowercase scheme", "bearer abc123", "abc123", false},
		{"missing scheme", "abc123", "", true},
		{"empty", "", "", true},
		{"scheme only", "Bearer ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAuthorizationHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
