package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewAuthService("secret", time.Hour)

	resp, err := svc.IssueToken("user_42")
	require.NoError(t, err)
	assert.Equal(t, "user_42", resp.UserID)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user_42", claims.UserID)
	assert.Equal(t, "user_42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestIssueTokenGeneratesUserID(t *testing.T) {
	svc := NewAuthService("secret", time.Hour)

	resp, err := svc.IssueToken("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.UserID, "user_"))
	assert.Len(t, resp.UserID, len("user_")+8)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewAuthService("secret", time.Hour)
	resp, err := svc.IssueToken("user_1")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewAuthService("other", time.Hour).ValidateToken(resp.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewAuthService("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(resp.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other signing method", func(t *testing.T) {
		claims := &model.UserClaims{UserID: "user_1"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		claims := &model.UserClaims{}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenWithoutExpiry(t *testing.T) {
	svc := NewAuthService("secret", 0)

	resp, err := svc.IssueToken("user_1")
	require.NoError(t, err)
	assert.Zero(t, resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}
