// Package keybinding implements key-binding JWT assembly and the SD-JWT
// digest (sd_hash) of spec.md §4.7. Grounded in full on
// dc4eu-vc/pkg/sdjwtvc/keybinding.go (CreateKeyBindingJWT,
// calculateSDHash), generalized from a concrete golang-jwt/jwt call to the
// core's injected jwtcap.KeyBindingSigner, per spec.md §9's
// polymorphism-over-JWT requirement.
package keybinding

import (
	"context"
	"fmt"

	"github.com/go-sdjwt/core/pkg/hashcap"
	"github.com/go-sdjwt/core/pkg/jwtcap"
	"github.com/go-sdjwt/core/pkg/serialize"
)

// SDHashClaim is the key-binding JWT claim carrying the SD-JWT digest
// (spec.md §6).
const SDHashClaim = "sd_hash"

// TypeHeader is the required "typ" header value for a key-binding JWT.
const TypeHeader = "kb+jwt"

// SDHash computes the SD-JWT digest of spec.md §4.7: serialize the
// presentation without key binding, keep everything up to and including
// the last "~", hash the ASCII bytes with alg, and base64url-no-pad encode.
func SDHash(hashes hashcap.Hashes, alg hashcap.Algorithm, presentationWithoutKB string) (string, error) {
	trimmed := serialize.TrimToLastTilde(presentationWithoutKB)
	digest, err := hashes.Digest(alg, trimmed)
	if err != nil {
		return "", fmt.Errorf("sdjwt: computing sd_hash: %w", err)
	}
	return digest, nil
}

// Params are the caller-supplied fields of a key-binding JWT payload
// beyond sd_hash (spec.md §4.7: "typically iat, aud, nonce").
type Params struct {
	Audience string
	Nonce    string
	IssuedAt int64
	// Extra carries any additional claims the caller wants in the KB-JWT
	// payload (e.g. a transaction identifier); Extra must not set
	// SDHashClaim, which Create always overwrites.
	Extra map[string]any
}

// Create computes sd_hash over presentationWithoutKB and asks signer to
// produce the serialized key-binding JWT (spec.md §4.7). presentationWithoutKB
// is the combined-format presentation string before the KB-JWT segment is
// appended.
func Create(ctx context.Context, signer jwtcap.KeyBindingSigner, hashes hashcap.Hashes, alg hashcap.Algorithm, presentationWithoutKB string, params Params) (string, error) {
	sdHash, err := SDHash(hashes, alg, presentationWithoutKB)
	if err != nil {
		return "", err
	}

	payload := make(map[string]any, len(params.Extra)+4)
	for k, v := range params.Extra {
		payload[k] = v
	}
	payload["aud"] = params.Audience
	payload["nonce"] = params.Nonce
	payload["iat"] = params.IssuedAt
	payload[SDHashClaim] = sdHash

	kbJWT, err := signer.SignKeyBinding(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("sdjwt: signing key-binding JWT: %w", err)
	}
	return kbJWT, nil
}
