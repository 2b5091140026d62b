package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_SaltedPerCall(t *testing.T) {
	h1, err := Hash("483920")
	require.NoError(t, err)
	h2, err := Hash("483920")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "two hashes of the same input must differ")
	assert.True(t, Verify("483920", h1))
	assert.True(t, Verify("483920", h2))
}

func TestVerify_WrongPlaintext(t *testing.T) {
	h, err := Hash("123456")
	require.NoError(t, err)
	assert.False(t, Verify("654321", h))
}

func TestVerify_MalformedHash(t *testing.T) {
	assert.False(t, Verify("123456", "garbage"))
	assert.False(t, Verify("123456", ""))
	assert.False(t, Verify("123456", "$argon2id$v=19$m=65536,t=3,p=2$c29tZXNhbHQ$hash"))
}
