package recreate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sdjwt/core/pkg/claimpath"
	"github.com/go-sdjwt/core/pkg/discloser"
	"github.com/go-sdjwt/core/pkg/disclosure"
	"github.com/go-sdjwt/core/pkg/element"
	"github.com/go-sdjwt/core/pkg/hashcap"
	"github.com/go-sdjwt/core/pkg/salt"
)

func discloseFixture(t *testing.T) *discloser.DisclosedClaims {
	t.Helper()
	set, err := element.NewBuilder().
		Plain(map[string]any{"iss": "https://issuer.example"}).
		Flat(map[string]any{"given_name": "Alice"}).
		StructuredWithFlatClaims("address", map[string]any{"locality": "Musterstadt"}).
		Array("nationalities", element.ArrayPlain("DE"), element.ArrayDisclosed("US")).
		Build()
	require.NoError(t, err)

	out, err := discloser.Disclose(set, discloser.Options{
		HashAlg:   hashcap.SHA256,
		Hashes:    hashcap.New(hashcap.CryptoRandom{}),
		Salts:     salt.NewDeterministic("s1", "s2", "s3"),
		NumDecoys: 1,
	})
	require.NoError(t, err)
	return out
}

func encodedDisclosures(disclosed *discloser.DisclosedClaims) []string {
	out := make([]string, len(disclosed.Disclosures))
	for i, d := range disclosed.Disclosures {
		out[i] = d.Encoded()
	}
	return out
}

func TestRecreateFullRoundTrip(t *testing.T) {
	disclosed := discloseFixture(t)
	hashes := hashcap.New(hashcap.CryptoRandom{})

	result, err := Recreate(disclosed.ClaimSet, encodedDisclosures(disclosed), hashes)
	require.NoError(t, err)

	assert.Equal(t, "https://issuer.example", result.Claims["iss"])
	assert.Equal(t, "Alice", result.Claims["given_name"])

	addr, ok := result.Claims["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Musterstadt", addr["locality"])

	arr, ok := result.Claims["nationalities"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"DE", "US"}, arr)

	_, found := result.Lookup(claimpath.New(claimpath.Key("given_name")))
	assert.True(t, found)

	// Deep-equality check via go-cmp rather than field-by-field assert, for
	// the nested object/array shape round-tripping exactly.
	want := map[string]any{
		"iss":        "https://issuer.example",
		"given_name": "Alice",
		"address":    map[string]any{"locality": "Musterstadt"},
		"nationalities": []any{"DE", "US"},
	}
	if diff := cmp.Diff(want, result.Claims); diff != "" {
		t.Errorf("recreated claims mismatch (-want +got):\n%s", diff)
	}
}

func TestRecreatePartialDisclosureOmitsClaim(t *testing.T) {
	disclosed := discloseFixture(t)
	hashes := hashcap.New(hashcap.CryptoRandom{})

	result, err := Recreate(disclosed.ClaimSet, nil, hashes)
	require.NoError(t, err)
	assert.NotContains(t, result.Claims, "given_name")
	assert.Equal(t, "https://issuer.example", result.Claims["iss"])
}

func TestRecreateRejectsDuplicateDisclosure(t *testing.T) {
	disclosed := discloseFixture(t)
	hashes := hashcap.New(hashcap.CryptoRandom{})

	raw := encodedDisclosures(disclosed)
	raw = append(raw, raw[0])

	_, err := Recreate(disclosed.ClaimSet, raw, hashes)
	assert.ErrorIs(t, err, ErrDuplicateDisclosure)
}

func TestRecreateRejectsUnusedDisclosure(t *testing.T) {
	disclosed := discloseFixture(t)
	hashes := hashcap.New(hashcap.CryptoRandom{})

	foreign, err := element.NewBuilder().Flat(map[string]any{"extra": "value"}).Build()
	require.NoError(t, err)
	foreignDisclosed, err := discloser.Disclose(foreign, discloser.Options{
		HashAlg: hashcap.SHA256,
		Hashes:  hashes,
		Salts:   salt.NewDeterministic("zz"),
	})
	require.NoError(t, err)

	raw := encodedDisclosures(disclosed)
	raw = append(raw, encodedDisclosures(foreignDisclosed)...)

	_, err = Recreate(disclosed.ClaimSet, raw, hashes)
	assert.ErrorIs(t, err, ErrUnusedDisclosure)
}

// TestRecreateRejectsClaimCollision is seed scenario S6 (spec.md §8):
// payload declares x:1 plain and a disclosure reveals x:2; recreation must
// fail with ErrClaimCollision.
func TestRecreateRejectsClaimCollision(t *testing.T) {
	hashes := hashcap.New(hashcap.CryptoRandom{})

	d, err := disclosure.Encode("s1", "x", 2)
	require.NoError(t, err)
	digest, err := d.Digest(hashes, hashcap.SHA256)
	require.NoError(t, err)

	payload := map[string]any{
		"x":       1,
		"_sd":     []any{digest},
		"_sd_alg": "sha-256",
	}

	_, err = Recreate(payload, []string{d.Encoded()}, hashes)
	assert.ErrorIs(t, err, ErrClaimCollision)
}

func TestRecreateDefaultsToSHA256WhenNoSDAlg(t *testing.T) {
	hashes := hashcap.New(hashcap.CryptoRandom{})
	payload := map[string]any{"iss": "https://issuer.example"}

	result, err := Recreate(payload, nil, hashes)
	require.NoError(t, err)
	assert.Equal(t, "https://issuer.example", result.Claims["iss"])
}
