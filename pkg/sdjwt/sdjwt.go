// Package sdjwt is the top-level facade spec.md §2 and §3 describe: the
// issuer-facing Issuance type and Issue operation, and the holder-facing
// Presentation type and Present/AddKeyBinding operations, wiring together
// pkg/element, pkg/discloser, pkg/recreate, pkg/presentation,
// pkg/keybinding and pkg/serialize the way a caller of the library actually
// uses them end to end. Grounded on dc4eu-vc/pkg/sdjwtvc/methods.go's
// top-level MakeCredentialWithOptions/CreatePresentation entry points,
// which bundle the same sub-steps behind one call for library consumers.
package sdjwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sdjwt/core/internal/b64"
	"github.com/go-sdjwt/core/pkg/claimpath"
	"github.com/go-sdjwt/core/pkg/discloser"
	"github.com/go-sdjwt/core/pkg/element"
	"github.com/go-sdjwt/core/pkg/hashcap"
	"github.com/go-sdjwt/core/pkg/jwtcap"
	"github.com/go-sdjwt/core/pkg/keybinding"
	"github.com/go-sdjwt/core/pkg/presentation"
	"github.com/go-sdjwt/core/pkg/recreate"
	"github.com/go-sdjwt/core/pkg/serialize"
)

// ErrMalformedJWT is returned when a JWT's structure can't even be split
// into header/payload/signature segments.
var ErrMalformedJWT = errors.New("sdjwt: malformed JWT")

// Issuance is the SdJwt.Issuance<JWT> value of spec.md §3: an issuer-signed
// JWT plus every disclosure it commits to, in Combined Issuance Format.
type Issuance struct {
	JWT         string
	Disclosures []string
}

// Combined renders the Combined Issuance Format of spec.md §6.
func (i Issuance) Combined() string {
	return serialize.CombineIssuance(i.JWT, i.Disclosures)
}

// IssueOptions configure one Issue call.
type IssueOptions struct {
	discloser.Options
	// Header carries additional JWT header fields (e.g. "vct", "kid");
	// Issue always sets "alg" and "typ" itself via the injected signer.
	Header map[string]any
}

// Issue runs the issuer side end to end (spec.md §4.4 followed by signing):
// build the disclosed claim set and disclosures from elements, then ask
// signer to produce the issuer-signed JWT over that claim set.
func Issue(ctx context.Context, elements element.Set, opts IssueOptions, signer jwtcap.IssuerSigner) (*Issuance, error) {
	disclosed, err := discloser.Disclose(elements, opts.Options)
	if err != nil {
		return nil, err
	}

	jwt, err := signer.SignIssuance(ctx, opts.Header, disclosed.ClaimSet)
	if err != nil {
		return nil, fmt.Errorf("sdjwt: signing issuance: %w", err)
	}

	encoded := make([]string, len(disclosed.Disclosures))
	for i, d := range disclosed.Disclosures {
		encoded[i] = d.Encoded()
	}
	return &Issuance{JWT: jwt, Disclosures: encoded}, nil
}

// Presentation is the SdJwt.Presentation<JWT, KB> value of spec.md §3: an
// issuer-signed JWT, the disclosures a holder chose to reveal, and an
// optional key-binding JWT.
type Presentation struct {
	JWT           string
	Disclosures   []string
	KeyBindingJWT string
}

// Combined renders the Combined Presentation Format of spec.md §6.
func (p Presentation) Combined() string {
	return serialize.CombinePresentation(p.JWT, p.Disclosures, p.KeyBindingJWT)
}

// Present runs the holder side of spec.md §4.6: recreate the full claim set
// from issuance, then select the disclosures needed to reveal every path in
// query. An empty query yields a Presentation with no disclosures at all
// (spec.md §4.6 step 4); hashes must agree with the algorithm issuance's
// "_sd_alg" names.
func Present(issuance Issuance, hashes hashcap.Hashes, query []claimpath.Path) (*Presentation, error) {
	claims, err := decodeJWTPayload(issuance.JWT)
	if err != nil {
		return nil, err
	}

	recreated, err := recreate.Recreate(claims, issuance.Disclosures, hashes)
	if err != nil {
		return nil, err
	}

	selected, err := presentation.Select(recreated, query)
	if err != nil {
		return nil, err
	}

	encoded := make([]string, len(selected))
	for i, d := range selected {
		encoded[i] = d.Encoded()
	}
	return &Presentation{JWT: issuance.JWT, Disclosures: encoded}, nil
}

// AddKeyBinding computes sd_hash over p (without key binding) and asks
// signer to produce the key-binding JWT, per spec.md §4.7. alg must match
// the issuance's "_sd_alg" ("sha-256" if the issuance never set one).
func (p *Presentation) AddKeyBinding(ctx context.Context, signer jwtcap.KeyBindingSigner, hashes hashcap.Hashes, alg hashcap.Algorithm, params keybinding.Params) error {
	withoutKB := serialize.CombinePresentation(p.JWT, p.Disclosures, "")
	kbJWT, err := keybinding.Create(ctx, signer, hashes, alg, withoutKB, params)
	if err != nil {
		return err
	}
	p.KeyBindingJWT = kbJWT
	return nil
}

// decodeJWTPayload extracts a JWT's payload claims without verifying its
// signature — a holder already trusts the issuance it received, so no
// jwtcap.SignatureVerifier is needed here (that capability exists for the
// verifier side of spec.md §4.8, a different trust boundary).
func decodeJWTPayload(jwt string) (map[string]any, error) {
	parts := strings.Split(jwt, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 dot-separated segments, got %d", ErrMalformedJWT, len(parts))
	}
	raw, err := b64.Decode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJWT, err)
	}
	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJWT, err)
	}
	return claims, nil
}
