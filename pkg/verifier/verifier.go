// Package verifier implements the verifier orchestration state machine of
// spec.md §4.8: ParseCombined -> VerifyIssuerSignature -> ValidateDisclosures
// -> Recreate -> VerifyKeyBinding -> Accept. Grounded end to end on
// dc4eu-vc/pkg/sdjwtvc/verification.go:ParseAndVerify, adapted to delegate
// signature and key-binding verification to the core's injected
// jwtcap capabilities rather than calling golang-jwt directly, per spec.md
// §1's out-of-scope boundary for JOSE signing and §9's polymorphism
// requirement.
package verifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sdjwt/core/internal/xlog"
	"github.com/go-sdjwt/core/pkg/hashcap"
	"github.com/go-sdjwt/core/pkg/jwtcap"
	"github.com/go-sdjwt/core/pkg/keybinding"
	"github.com/go-sdjwt/core/pkg/recreate"
	"github.com/go-sdjwt/core/pkg/serialize"
)

// Errors for the two terminal failure states spec.md §4.8 names directly;
// every other failure propagates one of pkg/serialize's, pkg/disclosure's,
// pkg/recreate's, or pkg/hashcap's own errors unchanged, per spec.md §7
// ("the core returns a success/failure value at every fallible operation").
var (
	ErrInvalidSignature  = errors.New("sdjwt: invalid signature")
	ErrInvalidKeyBinding = errors.New("sdjwt: invalid key binding")
)

// Options configure one verification run.
type Options struct {
	// Hashes computes digests during recreation.
	Hashes hashcap.Hashes
	// RequireKeyBinding fails verification if no KB-JWT is present.
	RequireKeyBinding bool
	// ExpectedAudience, if non-empty, must match the KB-JWT's "aud".
	ExpectedAudience string
	// ExpectedNonce, if non-empty, must match the KB-JWT's "nonce".
	ExpectedNonce string
	// Log receives terminal-state transitions. Defaults to a discard
	// logger when nil (the pure core itself never logs; this is
	// orchestration-layer observability, per SPEC_FULL.md §10).
	Log *xlog.Log
}

// Result is the Accept state's payload: the recreated claim set plus
// whatever the verifier needs to inspect further.
type Result struct {
	Header           map[string]any
	Claims           map[string]any
	Recreation       *recreate.Result
	KeyBindingClaims map[string]any
}

// Verify runs the state machine of spec.md §4.8 over a combined-format
// SD-JWT (issuance or presentation).
func Verify(ctx context.Context, sdjwt string, sigVerifier jwtcap.SignatureVerifier, kbVerifier jwtcap.KeyBindingVerifier, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = xlog.Discard()
	}

	// ParseCombined
	jwt, disclosures, kbJWT, err := serialize.ParseCombined(sdjwt)
	if err != nil {
		log.Info("sdjwt rejected: malformed combined format", "error", err)
		return nil, err
	}

	// VerifyIssuerSignature
	header, claims, err := sigVerifier.Verify(ctx, jwt)
	if err != nil {
		log.Info("sdjwt rejected: invalid signature", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	// ValidateDisclosures + Recreate: decoding, duplicate- and
	// unused-disclosure checks all happen inside Recreate.
	recreated, err := recreate.Recreate(claims, disclosures, opts.Hashes)
	if err != nil {
		log.Info("sdjwt rejected: recreation failed", "error", err)
		return nil, err
	}

	// VerifyKeyBinding
	var kbClaims map[string]any
	switch {
	case kbJWT != "":
		kbClaims, err = verifyKeyBinding(ctx, jwt, disclosures, claims, kbJWT, kbVerifier, opts)
		if err != nil {
			log.Info("sdjwt rejected: invalid key binding", "error", err)
			return nil, err
		}
	case opts.RequireKeyBinding:
		log.Info("sdjwt rejected: key binding required but absent")
		return nil, fmt.Errorf("%w: key binding required but not present", ErrInvalidKeyBinding)
	}

	// Accept
	log.Info("sdjwt accepted", "disclosuresPresented", len(disclosures), "keyBound", kbJWT != "")
	return &Result{
		Header:           header,
		Claims:           recreated.Claims,
		Recreation:       recreated,
		KeyBindingClaims: kbClaims,
	}, nil
}

func verifyKeyBinding(ctx context.Context, jwt string, disclosures []string, claims map[string]any, kbJWT string, kbVerifier jwtcap.KeyBindingVerifier, opts Options) (map[string]any, error) {
	if kbVerifier == nil {
		return nil, fmt.Errorf("%w: no key-binding verifier configured", ErrInvalidKeyBinding)
	}

	kbClaims, err := kbVerifier.VerifyKeyBinding(ctx, kbJWT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyBinding, err)
	}

	sdAlg := hashcap.Default
	if alg, ok := claims["_sd_alg"].(string); ok {
		sdAlg = hashcap.Algorithm(alg)
	}

	presentationWithoutKB := serialize.CombinePresentation(jwt, disclosures, "")
	expectedSDHash, err := keybinding.SDHash(opts.Hashes, sdAlg, presentationWithoutKB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyBinding, err)
	}

	actualSDHash, _ := kbClaims[keybinding.SDHashClaim].(string)
	if actualSDHash != expectedSDHash {
		return nil, fmt.Errorf("%w: sd_hash mismatch", ErrInvalidKeyBinding)
	}

	if opts.ExpectedAudience != "" {
		aud, _ := kbClaims["aud"].(string)
		if aud != opts.ExpectedAudience {
			return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidKeyBinding)
		}
	}

	if opts.ExpectedNonce != "" {
		nonce, _ := kbClaims["nonce"].(string)
		if nonce != opts.ExpectedNonce {
			return nil, fmt.Errorf("%w: nonce mismatch", ErrInvalidKeyBinding)
		}
	}

	return kbClaims, nil
}
