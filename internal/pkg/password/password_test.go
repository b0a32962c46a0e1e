package password_test

import (
	"strings"
	"testing"

	"reqflow/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, password.Verify("correct-horse", hash))
	assert.False(t, password.Verify("wrong-password", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := password.Hash("correct-horse")
	require.NoError(t, err)
	second, err := password.Hash("correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashTokenIsDeterministic(t *testing.T) {
	assert.Equal(t, password.HashToken("token"), password.HashToken("token"))
	assert.NotEqual(t, password.HashToken("token"), password.HashToken("other"))
	assert.Len(t, password.HashToken("token"), 64) // sha256 hex
}

func TestValidate(t *testing.T) {
	assert.True(t, password.Validate("12345678"))
	assert.False(t, password.Validate("1234567"))
	assert.False(t, password.Validate(""))
}
