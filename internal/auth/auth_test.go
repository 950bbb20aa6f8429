package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialsFromHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	creds, err := NewCredentials("admin", string(hash), "")
	require.NoError(t, err)

	assert.True(t, creds.Verify("admin", "s3cret"))
	assert.False(t, creds.Verify("admin", "wrong"))
	assert.False(t, creds.Verify("other", "s3cret"))
}

func TestCredentialsFromPlaintext(t *testing.T) {
	creds, err := NewCredentials("admin", "", "dev-password")
	require.NoError(t, err)
	assert.True(t, creds.Verify("admin", "dev-password"))
}

func TestCredentialsUnconfigured(t *testing.T) {
	_, err := NewCredentials("admin", "", "")
	assert.Error(t, err)

	_, err = NewCredentials("", "x", "")
	assert.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("admin", "admin", "gocampus", "test-key", time.Hour)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := Parse(token, "test-key", "gocampus")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseRejectsWrongKeyAndIssuer(t *testing.T) {
	token, _, err := Issue("admin", "admin", "gocampus", "test-key", time.Hour)
	require.NoError(t, err)

	_, err = Parse(token, "other-key", "gocampus")
	assert.Error(t, err)

	_, err = Parse(token, "test-key", "someone-else")
	assert.Error(t, err)
}
