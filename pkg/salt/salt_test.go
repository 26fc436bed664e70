package salt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sdjwt/core/pkg/hashcap"
)

func TestSecureProviderUnique(t *testing.T) {
	p := New(hashcap.CryptoRandom{})
	s1, err := p.Next()
	require.NoError(t, err)
	s2, err := p.Next()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
	assert.NotEmpty(t, s1)
}

func TestDeterministicReplaysInOrderThenExhausts(t *testing.T) {
	p := NewDeterministic("s1", "s2")
	s1, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "s1", s1)

	s2, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "s2", s2)

	_, err = p.Next()
	assert.Error(t, err)
}
