package discloser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sdjwt/core/pkg/element"
	"github.com/go-sdjwt/core/pkg/hashcap"
	"github.com/go-sdjwt/core/pkg/salt"
)

func testOptions(decoys int, saltSeq ...string) Options {
	return Options{
		HashAlg:   hashcap.SHA256,
		Hashes:    hashcap.New(hashcap.CryptoRandom{}),
		Salts:     salt.NewDeterministic(saltSeq...),
		NumDecoys: decoys,
	}
}

func TestDisclosePlainClaimsStayVerbatim(t *testing.T) {
	set, err := element.NewBuilder().
		Plain(map[string]any{"iss": "https://issuer.example"}).
		Build()
	require.NoError(t, err)

	out, err := Disclose(set, testOptions(0))
	require.NoError(t, err)
	assert.Equal(t, "https://issuer.example", out.ClaimSet["iss"])
	assert.Empty(t, out.Disclosures)
	assert.NotContains(t, out.ClaimSet, "_sd_alg")
}

func TestDiscloseFlatClaimsProduceDisclosuresAndSD(t *testing.T) {
	set, err := element.NewBuilder().
		Flat(map[string]any{"given_name": "Alice"}).
		Build()
	require.NoError(t, err)

	out, err := Disclose(set, testOptions(0, "s1"))
	require.NoError(t, err)
	require.Len(t, out.Disclosures, 1)
	assert.Equal(t, "given_name", out.Disclosures[0].Name())
	assert.Equal(t, "sha-256", out.ClaimSet["_sd_alg"])

	sd, ok := out.ClaimSet["_sd"].([]any)
	require.True(t, ok)
	require.Len(t, sd, 1)
}

func TestDiscloseIsDeterministicUnderFixedSalts(t *testing.T) {
	set, err := element.NewBuilder().
		Flat(map[string]any{"given_name": "Alice", "family_name": "Doe"}).
		Build()
	require.NoError(t, err)

	out1, err := Disclose(set, testOptions(0, "s1", "s2"))
	require.NoError(t, err)
	out2, err := Disclose(set, testOptions(0, "s1", "s2"))
	require.NoError(t, err)

	assert.Equal(t, out1.ClaimSet, out2.ClaimSet)
}

func TestDiscloseStructuredRecursesAndAccumulates(t *testing.T) {
	set, err := element.NewBuilder().
		StructuredWithFlatClaims("address", map[string]any{"locality": "Musterstadt"}).
		Build()
	require.NoError(t, err)

	out, err := Disclose(set, testOptions(0, "s1"))
	require.NoError(t, err)
	require.Len(t, out.Disclosures, 1)

	addr, ok := out.ClaimSet["address"].(map[string]any)
	require.True(t, ok)
	_, hasSD := addr["_sd"]
	assert.True(t, hasSD)
}

func TestDiscloseArrayElementMarkers(t *testing.T) {
	set, err := element.NewBuilder().
		Array("nationalities", element.ArrayPlain("DE"), element.ArrayDisclosed("US")).
		Build()
	require.NoError(t, err)

	out, err := Disclose(set, testOptions(0, "s1"))
	require.NoError(t, err)
	require.Len(t, out.Disclosures, 1)

	arr, ok := out.ClaimSet["nationalities"].([]any)
	require.True(t, ok)
	require.Len(t, arr, 2)
	assert.Equal(t, "DE", arr[0])

	marker, ok := arr[1].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, marker, "...")
}

func TestDiscloseDecoysOnlyAddedWhenRealDisclosuresExist(t *testing.T) {
	plainOnly, err := element.NewBuilder().
		Plain(map[string]any{"iss": "https://issuer.example"}).
		Build()
	require.NoError(t, err)

	out, err := Disclose(plainOnly, testOptions(3))
	require.NoError(t, err)
	assert.NotContains(t, out.ClaimSet, "_sd")

	withFlat, err := element.NewBuilder().
		Flat(map[string]any{"given_name": "Alice"}).
		Build()
	require.NoError(t, err)

	out2, err := Disclose(withFlat, testOptions(3, "s1"))
	require.NoError(t, err)
	sd, ok := out2.ClaimSet["_sd"].([]any)
	require.True(t, ok)
	assert.Len(t, sd, 4) // one real + three decoys
}

func TestDiscloseSDArrayIsSorted(t *testing.T) {
	set, err := element.NewBuilder().
		Flat(map[string]any{"a": "1", "b": "2", "c": "3"}).
		Build()
	require.NoError(t, err)

	out, err := Disclose(set, testOptions(0, "s1", "s2", "s3"))
	require.NoError(t, err)
	sd, ok := out.ClaimSet["_sd"].([]any)
	require.True(t, ok)

	sorted := make([]string, len(sd))
	for i, v := range sd {
		sorted[i] = v.(string)
	}
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i-1], sorted[i])
	}
}

func TestDiscloseArrayDecoysOnlyAddedWhenArrayHasRealDisclosures(t *testing.T) {
	noDisclosed, err := element.NewBuilder().
		Array("nationalities", element.ArrayPlain("DE"), element.ArrayPlain("FR")).
		Build()
	require.NoError(t, err)

	out, err := Disclose(noDisclosed, testOptions(2))
	require.NoError(t, err)
	arr, ok := out.ClaimSet["nationalities"].([]any)
	require.True(t, ok)
	assert.Len(t, arr, 2) // no decoys: nothing in this array is disclosed

	withDisclosed, err := element.NewBuilder().
		Array("nationalities", element.ArrayPlain("DE"), element.ArrayDisclosed("US")).
		Build()
	require.NoError(t, err)

	out2, err := Disclose(withDisclosed, testOptions(2, "s1"))
	require.NoError(t, err)
	arr2, ok := out2.ClaimSet["nationalities"].([]any)
	require.True(t, ok)
	assert.Len(t, arr2, 4) // "DE" + 1 real marker + 2 decoy markers

	assert.Equal(t, "DE", arr2[0])
	for _, item := range arr2[1:] {
		marker, ok := item.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, marker, "...")
	}
}

func TestDiscloseRejectsUnsupportedAlgorithm(t *testing.T) {
	set, err := element.NewBuilder().Build()
	require.NoError(t, err)

	opts := testOptions(0)
	opts.HashAlg = hashcap.Algorithm("sha-1")
	_, err = Disclose(set, opts)
	assert.ErrorIs(t, err, hashcap.ErrUnsupportedAlgorithm)
}
