package verifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sdjwt/core/pkg/discloser"
	"github.com/go-sdjwt/core/pkg/element"
	"github.com/go-sdjwt/core/pkg/hashcap"
	"github.com/go-sdjwt/core/pkg/keybinding"
	"github.com/go-sdjwt/core/pkg/salt"
	"github.com/go-sdjwt/core/pkg/serialize"
)

// fakeJWT is a minimal stand-in that carries header/claims as plain Go
// values rather than a real JOSE signature — this package is polymorphic
// over jwtcap precisely so tests never need a concrete signer.
type fakeJWT struct {
	header map[string]any
	claims map[string]any
}

type fakeSigVerifier struct {
	tokens map[string]fakeJWT
	err    error
}

func (f *fakeSigVerifier) Verify(ctx context.Context, jwt string) (map[string]any, map[string]any, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	tok, ok := f.tokens[jwt]
	if !ok {
		return nil, nil, assert.AnError
	}
	return tok.header, tok.claims, nil
}

type fakeKBVerifier struct {
	tokens map[string]map[string]any
	err    error
}

func (f *fakeKBVerifier) VerifyKeyBinding(ctx context.Context, kbJWT string) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	claims, ok := f.tokens[kbJWT]
	if !ok {
		return nil, assert.AnError
	}
	return claims, nil
}

func buildIssuance(t *testing.T) (jwt string, disclosures []string, claims map[string]any) {
	t.Helper()
	set, err := element.NewBuilder().
		Flat(map[string]any{"given_name": "Alice"}).
		Build()
	require.NoError(t, err)

	disclosed, err := discloser.Disclose(set, discloser.Options{
		HashAlg: hashcap.SHA256,
		Hashes:  hashcap.New(hashcap.CryptoRandom{}),
		Salts:   salt.NewDeterministic("s1"),
	})
	require.NoError(t, err)

	encoded := make([]string, len(disclosed.Disclosures))
	for i, d := range disclosed.Disclosures {
		encoded[i] = d.Encoded()
	}
	return "issuer-jwt", encoded, disclosed.ClaimSet
}

func TestVerifyAcceptsValidPresentationWithoutKeyBinding(t *testing.T) {
	jwt, disclosures, claims := buildIssuance(t)
	combined := serialize.CombineIssuance(jwt, disclosures)

	sigVerifier := &fakeSigVerifier{tokens: map[string]fakeJWT{
		jwt: {header: map[string]any{"alg": "ES256"}, claims: claims},
	}}

	result, err := Verify(context.Background(), combined, sigVerifier, nil, Options{
		Hashes: hashcap.New(hashcap.CryptoRandom{}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", result.Claims["given_name"])
}

func TestVerifyRejectsInvalidSignature(t *testing.T) {
	jwt, disclosures, _ := buildIssuance(t)
	combined := serialize.CombineIssuance(jwt, disclosures)

	sigVerifier := &fakeSigVerifier{err: assert.AnError}

	_, err := Verify(context.Background(), combined, sigVerifier, nil, Options{
		Hashes: hashcap.New(hashcap.CryptoRandom{}),
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRequiresKeyBindingWhenConfigured(t *testing.T) {
	jwt, disclosures, claims := buildIssuance(t)
	combined := serialize.CombineIssuance(jwt, disclosures)

	sigVerifier := &fakeSigVerifier{tokens: map[string]fakeJWT{
		jwt: {header: map[string]any{}, claims: claims},
	}}

	_, err := Verify(context.Background(), combined, sigVerifier, nil, Options{
		Hashes:            hashcap.New(hashcap.CryptoRandom{}),
		RequireKeyBinding: true,
	})
	assert.ErrorIs(t, err, ErrInvalidKeyBinding)
}

func TestVerifyWithValidKeyBinding(t *testing.T) {
	jwt, disclosures, claims := buildIssuance(t)
	hashes := hashcap.New(hashcap.CryptoRandom{})

	presentationWithoutKB := serialize.CombinePresentation(jwt, disclosures, "")
	sdHash, err := keybinding.SDHash(hashes, hashcap.SHA256, presentationWithoutKB)
	require.NoError(t, err)

	kbJWT := "kb-jwt-token"
	combined := serialize.CombinePresentation(jwt, disclosures, kbJWT)

	sigVerifier := &fakeSigVerifier{tokens: map[string]fakeJWT{
		jwt: {header: map[string]any{}, claims: claims},
	}}
	kbVerifier := &fakeKBVerifier{tokens: map[string]map[string]any{
		kbJWT: {keybinding.SDHashClaim: sdHash, "aud": "https://verifier.example"},
	}}

	result, err := Verify(context.Background(), combined, sigVerifier, kbVerifier, Options{
		Hashes:           hashes,
		ExpectedAudience: "https://verifier.example",
	})
	require.NoError(t, err)
	assert.Equal(t, sdHash, result.KeyBindingClaims[keybinding.SDHashClaim])
}

func TestVerifyRejectsSDHashMismatch(t *testing.T) {
	jwt, disclosures, claims := buildIssuance(t)
	hashes := hashcap.New(hashcap.CryptoRandom{})

	kbJWT := "kb-jwt-token"
	combined := serialize.CombinePresentation(jwt, disclosures, kbJWT)

	sigVerifier := &fakeSigVerifier{tokens: map[string]fakeJWT{
		jwt: {header: map[string]any{}, claims: claims},
	}}
	kbVerifier := &fakeKBVerifier{tokens: map[string]map[string]any{
		kbJWT: {keybinding.SDHashClaim: "wrong-hash"},
	}}

	_, err := Verify(context.Background(), combined, sigVerifier, kbVerifier, Options{Hashes: hashes})
	assert.ErrorIs(t, err, ErrInvalidKeyBinding)
}

func TestVerifyRejectsAudienceMismatch(t *testing.T) {
	jwt, disclosures, claims := buildIssuance(t)
	hashes := hashcap.New(hashcap.CryptoRandom{})

	presentationWithoutKB := serialize.CombinePresentation(jwt, disclosures, "")
	sdHash, err := keybinding.SDHash(hashes, hashcap.SHA256, presentationWithoutKB)
	require.NoError(t, err)

	kbJWT := "kb-jwt-token"
	combined := serialize.CombinePresentation(jwt, disclosures, kbJWT)

	sigVerifier := &fakeSigVerifier{tokens: map[string]fakeJWT{
		jwt: {header: map[string]any{}, claims: claims},
	}}
	kbVerifier := &fakeKBVerifier{tokens: map[string]map[string]any{
		kbJWT: {keybinding.SDHashClaim: sdHash, "aud": "https://someone-else.example"},
	}}

	_, err = Verify(context.Background(), combined, sigVerifier, kbVerifier, Options{
		Hashes:           hashes,
		ExpectedAudience: "https://verifier.example",
	})
	assert.ErrorIs(t, err, ErrInvalidKeyBinding)
}

func TestVerifyRejectsMalformedCombined(t *testing.T) {
	_, err := Verify(context.Background(), "no-tilde", &fakeSigVerifier{}, nil, Options{
		Hashes: hashcap.New(hashcap.CryptoRandom{}),
	})
	assert.Error(t, err)
}
