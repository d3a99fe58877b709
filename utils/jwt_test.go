package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtract(t *testing.T) {
	token, err := GenerateToken("user-1", "amani@example.com", AccessTokenTTL)
	require.NoError(t, err)

	id, err := ExtractIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	a, err := GenerateToken("user-1", "amani@example.com", AccessTokenTTL)
	require.NoError(t, err)
	b, err := GenerateToken("user-1", "amani@example.com", AccessTokenTTL)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	ra, err := GenerateRefreshToken("user-1")
	require.NoError(t, err)
	rb, err := GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, ra, rb)
}

func TestExtractRefreshSubjectRejectsAccessToken(t *testing.T) {
	access, err := GenerateToken("user-1", "amani@example.com", AccessTokenTTL)
	require.NoError(t, err)

	_, err = ExtractRefreshSubject(access)
	assert.Error(t, err)

	refresh, err := GenerateRefreshToken("user-1")
	require.NoError(t, err)
	sub, err := ExtractRefreshSubject(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	token, err := GenerateToken("user-1", "amani@example.com", -AccessTokenTTL)
	require.NoError(t, err)

	_, err = ExtractIDFromToken(token)
	assert.Error(t, err)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
