// Package josedemo is a concrete golang-jwt/jwt/v5-backed implementation of
// the pkg/jwtcap capability interfaces, for cmd/sdjwtdemo to exercise the
// core end to end. It is not part of the core itself (spec.md §1 places
// concrete JOSE signing out of scope) — it is the kind of adapter spec.md
// §9's polymorphism exists to make possible. Key-type/algorithm detection is
// grounded on dc4eu-vc/pkg/sdjwtvc/methods.go:getSigningMethodFromKey and the
// signature-verification switch in
// dc4eu-vc/pkg/sdjwtvc/verification.go:verifyJWTSignature.
package josedemo

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/go-sdjwt/core/pkg/keybinding"
)

// signingMethodFor picks an algorithm from the private key's concrete type
// and, for ECDSA, its curve, and for RSA, its modulus size — exactly the
// rule sdjwtvc/methods.go applies.
func signingMethodFor(key any) (jwt.SigningMethod, error) {
	switch k := key.(type) {
	case *ecdsa.PrivateKey:
		switch k.Curve.Params().Name {
		case "P-256":
			return jwt.SigningMethodES256, nil
		case "P-384":
			return jwt.SigningMethodES384, nil
		case "P-521":
			return jwt.SigningMethodES512, nil
		default:
			return jwt.SigningMethodES256, nil
		}
	case *rsa.PrivateKey:
		switch {
		case k.N.BitLen() >= 4096:
			return jwt.SigningMethodRS512, nil
		case k.N.BitLen() >= 3072:
			return jwt.SigningMethodRS384, nil
		default:
			return jwt.SigningMethodRS256, nil
		}
	default:
		return nil, fmt.Errorf("josedemo: unsupported private key type %T", key)
	}
}

// IssuerSigner implements jwtcap.IssuerSigner over a single private key.
type IssuerSigner struct {
	PrivateKey any
	KeyID      string
}

// SignIssuance builds and signs an issuer JWT from header and payload.
func (s *IssuerSigner) SignIssuance(ctx context.Context, header, payload map[string]any) (string, error) {
	method, err := signingMethodFor(s.PrivateKey)
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(method, jwt.MapClaims(payload))
	h := map[string]any{"alg": method.Alg(), "typ": "dc+sd-jwt"}
	for k, v := range header {
		h[k] = v
	}
	if s.KeyID != "" {
		h["kid"] = s.KeyID
	}
	token.Header = h
	return token.SignedString(s.PrivateKey)
}

// KeyBindingSigner implements jwtcap.KeyBindingSigner over a single private
// key, always emitting the required kb+jwt typ header (spec.md §6).
type KeyBindingSigner struct {
	PrivateKey any
	KeyID      string
}

// SignKeyBinding builds and signs a key-binding JWT from payload.
func (s *KeyBindingSigner) SignKeyBinding(ctx context.Context, payload map[string]any) (string, error) {
	method, err := signingMethodFor(s.PrivateKey)
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(method, jwt.MapClaims(payload))
	h := map[string]any{"alg": method.Alg(), "typ": keybinding.TypeHeader}
	if s.KeyID != "" {
		h["kid"] = s.KeyID
	}
	token.Header = h
	return token.SignedString(s.PrivateKey)
}

// Verifier implements both jwtcap.SignatureVerifier and
// jwtcap.KeyBindingVerifier over a single public key, rejecting any
// signing method that doesn't match the key's own family (ECDSA key ->
// ECDSA method, RSA key -> RSA method), exactly as
// sdjwtvc/verification.go:verifyJWTSignature does.
type Verifier struct {
	PublicKey any
}

func (v *Verifier) keyFunc(token *jwt.Token) (any, error) {
	switch v.PublicKey.(type) {
	case *ecdsa.PublicKey:
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("josedemo: unexpected signing method %v, expected ECDSA", token.Header["alg"])
		}
	case *rsa.PublicKey:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("josedemo: unexpected signing method %v, expected RSA", token.Header["alg"])
		}
	default:
		return nil, fmt.Errorf("josedemo: unsupported public key type %T", v.PublicKey)
	}
	return v.PublicKey, nil
}

// Verify verifies an issuer-signed JWT, returning its header and claims.
func (v *Verifier) Verify(ctx context.Context, token string) (map[string]any, map[string]any, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, err := parser.Parse(token, v.keyFunc)
	if err != nil {
		return nil, nil, fmt.Errorf("josedemo: signature verification failed: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil, fmt.Errorf("josedemo: unexpected claims type %T", parsed.Claims)
	}
	return parsed.Header, claims, nil
}

// VerifyKeyBinding verifies a key-binding JWT, returning its claims.
func (v *Verifier) VerifyKeyBinding(ctx context.Context, kbJWT string) (map[string]any, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, err := parser.Parse(kbJWT, v.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("josedemo: key-binding verification failed: %w", err)
	}
	typ, _ := parsed.Header["typ"].(string)
	if typ != keybinding.TypeHeader {
		return nil, fmt.Errorf("josedemo: unexpected kb-jwt typ header %q", typ)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("josedemo: unexpected claims type %T", parsed.Claims)
	}
	return claims, nil
}
