package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func Test_TokenManager_IssueAndVerify(t *testing.T) {
	manager := NewTokenManager(testSecret, "shoply", time.Hour)
	userID := uuid.NewString()

	signed, err := manager.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	token, err := manager.Verify(context.Background(), signed)
	require.NoError(t, err)

	subject, ok := token.Subject()
	require.True(t, ok)
	assert.Equal(t, userID, subject)
}

func Test_TokenManager_Verify_Expired(t *testing.T) {
	manager := NewTokenManager(testSecret, "shoply", -time.Minute)

	signed, err := manager.Issue(uuid.NewString())
	require.NoError(t, err)

	_, err = manager.Verify(context.Background(), signed)
	assert.Error(t, err)
}

func Test_TokenManager_Verify_WrongSecret(t *testing.T) {
	manager := NewTokenManager(testSecret, "shoply", time.Hour)
	other := NewTokenManager("ffffffffffffffffffffffffffffffff", "shoply", time.Hour)

	signed, err := manager.Issue(uuid.NewString())
	require.NoError(t, err)

	_, err = other.Verify(context.Background(), signed)
	assert.Error(t, err)
}

func Test_TokenManager_Verify_WrongIssuer(t *testing.T) {
	manager := NewTokenManager(testSecret, "shoply", time.Hour)
	other := NewTokenManager(testSecret, "someone-else", time.Hour)

	signed, err := manager.Issue(uuid.NewString())
	require.NoError(t, err)

	_, err = other.Verify(context.Background(), signed)
	assert.Error(t, err)
}
