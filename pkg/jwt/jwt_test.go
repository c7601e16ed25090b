package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func TestGenerateAndParse_CarriesRole(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: 7, Email: "staff@example.com", Nickname: "阿明", Role: "Staff"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Staff", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)

	refresh, err := m.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), refresh.UserID)
	assert.Equal(t, TokenTypeRefresh, refresh.Type)
	assert.Empty(t, refresh.Role)
}

func TestParse_TokenTypesAreNotInterchangeable(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: 3, Role: "Admin"})
	require.NoError(t, err)

	_, err = m.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = m.ParseRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	pair, err := NewManager("secret-a", time.Hour, time.Hour).GenerateToken(Identity{UserID: 1, Role: "Admin"})
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour, time.Hour).ParseAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: 1, Role: "Regular"})
	require.NoError(t, err)

	_, err = m.ParseAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
