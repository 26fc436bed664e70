package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderPlainAndFlat(t *testing.T) {
	set, err := NewBuilder().
		Plain(map[string]any{"iss": "https://issuer.example"}).
		Flat(map[string]any{"given_name": "Alice"}).
		Build()
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, KindPlain, set[0].Kind())
	assert.Equal(t, KindFlatDisclosed, set[1].Kind())
}

func TestBuilderStructuredWithFlatClaims(t *testing.T) {
	set, err := NewBuilder().
		StructuredWithFlatClaims("address", map[string]any{"locality": "Musterstadt"}).
		Build()
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, KindStructuredDisclosed, set[0].Kind())
	assert.Equal(t, "address", set[0].Name())
	require.Len(t, set[0].Children(), 1)
	assert.Equal(t, KindFlatDisclosed, set[0].Children()[0].Kind())
}

func TestBuilderArray(t *testing.T) {
	set, err := NewBuilder().
		Array("nationalities", ArrayPlain("DE"), ArrayDisclosed("US")).
		Build()
	require.NoError(t, err)
	require.Len(t, set, 1)
	items := set[0].Items()
	require.Len(t, items, 2)
	assert.False(t, items[0].Disclosed())
	assert.True(t, items[1].Disclosed())
}

func TestBuilderRejectsReservedKey(t *testing.T) {
	_, err := NewBuilder().Plain(map[string]any{"_sd": []any{}}).Build()
	assert.ErrorIs(t, err, ErrReservedKey)
}

func TestBuilderRejectsDuplicateClaim(t *testing.T) {
	_, err := NewBuilder().
		Plain(map[string]any{"name": "a"}).
		Flat(map[string]any{"name": "b"}).
		Build()
	assert.ErrorIs(t, err, ErrDuplicateClaim)
}

func TestBuilderRejectsKeyCollision(t *testing.T) {
	_, err := NewBuilder().
		Plain(map[string]any{"address": "inline"}).
		Structured("address", func(b *Builder) {
			b.Flat(map[string]any{"locality": "x"})
		}).
		Build()
	assert.ErrorIs(t, err, ErrKeyCollision)
}

func TestBuilderLatchesFirstError(t *testing.T) {
	_, err := NewBuilder().
		Plain(map[string]any{"_sd": 1}).
		Flat(map[string]any{"name": "a"}).
		Build()
	assert.ErrorIs(t, err, ErrReservedKey)
}
