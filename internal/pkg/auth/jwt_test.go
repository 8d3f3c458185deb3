package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect/internal/pkg/auth"
)

func newService(exp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "campusconnect.test", TokenExp: exp})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newService(time.Hour)

	token, err := svc.Issue("uid-1", "ada@campus.edu")
	require.NoError(t, err)

	claims, err := svc.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID())
	assert.Equal(t, "ada@campus.edu", claims.Email)
}

func TestValidateRejects(t *testing.T) {
	svc := newService(time.Hour)

	t.Run("expired", func(t *testing.T) {
		token, err := newService(-time.Minute).Issue("uid-1", "a@b.c")
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.True(t, errors.Is(err, auth.ErrExpiredToken))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", TokenIssuer: "campusconnect.test"})
		token, err := other.Issue("uid-1", "a@b.c")
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "elsewhere"})
		token, err := other.Issue("uid-1", "a@b.c")
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("empty subject", func(t *testing.T) {
		token, err := svc.Issue("", "a@b.c")
		require.NoError(t, err)
		_, err = svc.ValidateAndExtractClaims(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.ValidateAndExtractClaims("")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer a.b.c", want: "a.b.c"},
		{name: "raw", header: "a.b.c", want: "a.b.c"},
		{name: "quoted", header: `"Bearer a.b.c"`, want: "a.b.c"},
		{name: "empty", header: "", wantErr: true},
		{name: "not a jwt", header: "Bearer abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
