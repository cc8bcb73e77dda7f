package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWithCost_RoundTrip(t *testing.T) {
	hash, err := HashWithCost("correct horse", MinCost)
	require.NoError(t, err)

	assert.True(t, Verify("correct horse", hash))
	assert.False(t, Verify("wrong horse", hash))
}

func TestHashWithCost_Rejects(t *testing.T) {
	_, err := HashWithCost("", MinCost)
	assert.Error(t, err)

	_, err = HashWithCost("secret", 99)
	assert.Error(t, err)
}

func TestVerify_MalformedHash(t *testing.T) {
	assert.False(t, Verify("secret", "not-a-bcrypt-hash"))
}
