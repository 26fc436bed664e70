// Package jwtcap declares the capability interfaces the core is
// polymorphic over (spec.md §1, §9): the core never imports a concrete JOSE
// library, only these narrow contracts. Concrete integrations (e.g.
// internal/josedemo, built on golang-jwt/jwt/v5) implement them without the
// core depending on golang-jwt at all — mirroring the teacher's own
// dc4eu-vc/pkg/sdjwtvc/jwt.go Signer interface, which exists for the same
// reason (HSM-backed signers implement it without sdjwtvc depending on an
// HSM library).
package jwtcap

import "context"

// SignatureVerifier verifies an issuer-signed JWT's signature and returns
// its header and claims (spec.md §4.8 VerifyIssuerSignature). Implementors
// must return an error whenever the signature does not verify; the core
// treats any error from Verify as spec.md §7's InvalidSignature.
type SignatureVerifier interface {
	Verify(ctx context.Context, jwt string) (header map[string]any, claims map[string]any, err error)
}

// KeyBindingSigner signs a key-binding JWT payload on the holder's behalf
// (spec.md §4.7: "The KB-JWT is signed with a signer provided externally").
type KeyBindingSigner interface {
	SignKeyBinding(ctx context.Context, payload map[string]any) (string, error)
}

// KeyBindingVerifier verifies a key-binding JWT's signature and returns its
// claims (spec.md §4.8 VerifyKeyBinding). Any error is treated as spec.md
// §7's InvalidKeyBinding.
type KeyBindingVerifier interface {
	VerifyKeyBinding(ctx context.Context, kbJWT string) (claims map[string]any, err error)
}

// IssuerSigner signs an issuer-signed JWT payload, returning the serialized
// token (spec.md §9: the core never builds a concrete JWT representation
// itself, only asks an external signer to produce one from a claim set).
type IssuerSigner interface {
	SignIssuance(ctx context.Context, header, payload map[string]any) (string, error)
}
