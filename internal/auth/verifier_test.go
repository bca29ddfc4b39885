package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/auth"
	"storybook-server/internal/mocks"
	"storybook-server/internal/models"
)

const testSecret = "test-secret"

func TestNewVerifier_EmptySecret(t *testing.T) {
	_, err := auth.NewVerifier("", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestVerifySession_Valid(t *testing.T) {
	v, err := auth.NewVerifier(testSecret, nil, zap.NewNop())
	require.NoError(t, err)

	token, err := auth.GenerateToken(testSecret, 7, "family", []string{models.EntitlementPersonalization}, time.Hour)
	require.NoError(t, err)

	session, err := v.VerifySession(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.UserID)
	assert.Equal(t, "family", session.Plan)
	assert.True(t, session.HasEntitlement(models.EntitlementPersonalization))
	assert.NotEmpty(t, session.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 2*time.Second)
}

func TestVerifySession_Rejections(t *testing.T) {
	v, err := auth.NewVerifier(testSecret, nil, zap.NewNop())
	require.NoError(t, err)

	expired, err := auth.GenerateToken(testSecret, 7, "", nil, -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("other-secret", 7, "", nil, time.Hour)
	require.NoError(t, err)
	noUser, err := auth.GenerateToken(testSecret, 0, "", nil, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.Claims{UserID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"expired", expired, models.ErrTokenExpired},
		{"wrong secret", foreign, models.ErrTokenInvalid},
		{"missing user", noUser, models.ErrTokenInvalid},
		{"unsigned", none, models.ErrTokenInvalid},
		{"garbage", "not-a-token", models.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifySession(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifySession_Revoked(t *testing.T) {
	revoker := mocks.NewMockRevoker(t)
	v, err := auth.NewVerifier(testSecret, revoker, zap.NewNop())
	require.NoError(t, err)

	token, err := auth.GenerateToken(testSecret, 7, "", nil, time.Hour)
	require.NoError(t, err)

	revoker.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()
	_, err = v.VerifySession(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrTokenRevoked)

	revoker.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, errors.New("redis down")).Once()
	_, err = v.VerifySession(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrInternalServer)

	revoker.AssertExpectations(t)
}

func TestInvalidate(t *testing.T) {
	revoker := mocks.NewMockRevoker(t)
	v, err := auth.NewVerifier(testSecret, revoker, zap.NewNop())
	require.NoError(t, err)

	token, err := auth.GenerateToken(testSecret, 7, "", nil, time.Hour)
	require.NoError(t, err)

	revoker.On("IsRevoked", mock.Anything, mock.Anything).Return(false, nil).Once()
	session, err := v.VerifySession(context.Background(), token)
	require.NoError(t, err)

	revoker.On("Revoke", mock.Anything, session.TokenID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil).Once()
	require.NoError(t, v.Invalidate(context.Background(), session))

	err = v.Invalidate(context.Background(), models.Session{UserID: 7})
	assert.ErrorIs(t, err, models.ErrTokenInvalid)

	revoker.AssertExpectations(t)
}
