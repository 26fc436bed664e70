// Package disclosure implements the disclosure encoder/decoder of spec.md
// §4.1: the base64url-no-pad encoding of a JSON [salt, claimName, claimValue]
// (object claim) or [salt, claimValue] (array element) triple, and its
// digest. Grounded on dc4eu-vc/pkg/sdjwtvc/types.go (Discloser.Hash) for
// encoding and dc4eu-vc/pkg/sdjwtvc/verification.go (parseDisclosure) plus
// utils.go (ParseSelectiveDisclosure) for decoding.
package disclosure

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sdjwt/core/internal/b64"
	"github.com/go-sdjwt/core/pkg/hashcap"
)

// Errors per the issuer-side and decode-side taxonomy of spec.md §7.
var (
	ErrInvalidClaimName  = errors.New("sdjwt: invalid claim name")
	ErrInvalidClaimValue = errors.New("sdjwt: invalid claim value")
	ErrMalformedDisclosure = errors.New("sdjwt: malformed disclosure")
)

// reservedClaimName is the one claim name a disclosure may never carry
// (spec.md §4.1): its digest goes in "_sd", so a claim named "_sd" would be
// ambiguous with the array itself.
const reservedClaimName = "_sd"

// Disclosure is the encoded salt/name/value (or salt/value) triple and the
// exact base64url string it decoded from or was encoded into. The encoded
// form is cached rather than regenerated on every digest computation,
// because spec.md §4.1 requires the digest be a function of the disclosure's
// literal encoded bytes, not of a re-serialization of its parsed parts.
type Disclosure struct {
	encoded string
	salt    string
	name    string // empty and meaningless when IsArrayElement
	value   any
	isArray bool
}

// Encoded returns the base64url-no-pad wire form of the disclosure.
func (d *Disclosure) Encoded() string { return d.encoded }

// Salt returns the disclosure's salt.
func (d *Disclosure) Salt() string { return d.salt }

// Name returns the claim name. Empty for array-element disclosures.
func (d *Disclosure) Name() string { return d.name }

// Value returns the disclosed claim value.
func (d *Disclosure) Value() any { return d.value }

// IsArrayElement reports whether this disclosure reveals an array element
// ([salt, value]) rather than an object property ([salt, name, value]).
func (d *Disclosure) IsArrayElement() bool { return d.isArray }

// Encode constructs and encodes an object-property disclosure (spec.md
// §4.1). It fails with ErrInvalidClaimName if name is "_sd", and with
// ErrInvalidClaimValue if value recursively contains a JSON null leaf or an
// object keyed "_sd".
func Encode(saltValue, name string, value any) (*Disclosure, error) {
	if name == reservedClaimName {
		return nil, fmt.Errorf("%w: %q", ErrInvalidClaimName, name)
	}
	if err := validateValue(value); err != nil {
		return nil, err
	}
	encoded, err := encodeArray([]any{saltValue, name, value})
	if err != nil {
		return nil, err
	}
	return &Disclosure{encoded: encoded, salt: saltValue, name: name, value: value}, nil
}

// EncodeArrayElement constructs and encodes an array-element disclosure
// ([salt, value], spec.md §4.1).
func EncodeArrayElement(saltValue string, value any) (*Disclosure, error) {
	if err := validateValue(value); err != nil {
		return nil, err
	}
	encoded, err := encodeArray([]any{saltValue, value})
	if err != nil {
		return nil, err
	}
	return &Disclosure{encoded: encoded, salt: saltValue, value: value, isArray: true}, nil
}

func encodeArray(arr []any) (string, error) {
	raw, err := json.Marshal(arr)
	if err != nil {
		return "", fmt.Errorf("sdjwt: encoding disclosure: %w", err)
	}
	return b64.Encode(raw), nil
}

// validateValue rejects a JSON null leaf or an object keyed "_sd" anywhere
// in value, per spec.md §4.1.
func validateValue(value any) error {
	switch v := value.(type) {
	case nil:
		return fmt.Errorf("%w: value contains a null leaf", ErrInvalidClaimValue)
	case map[string]any:
		if _, ok := v[reservedClaimName]; ok {
			return fmt.Errorf("%w: value contains a reserved %q key", ErrInvalidClaimValue, reservedClaimName)
		}
		for _, child := range v {
			if err := validateValue(child); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range v {
			if err := validateValue(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode is the inverse of Encode/EncodeArrayElement. It rejects arrays
// whose length is neither 2 nor 3 with ErrMalformedDisclosure. Decode MUST
// NOT canonicalize: s is retained verbatim as Encoded(), since the
// disclosure's digest is a function of the original encoded bytes (spec.md
// §4.1 "Canonicalization rationale").
func Decode(s string) (*Disclosure, error) {
	raw, err := b64.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDisclosure, err)
	}

	var arr []any
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDisclosure, err)
	}

	switch len(arr) {
	case 3:
		saltValue, ok := arr[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: salt must be a string", ErrMalformedDisclosure)
		}
		name, ok := arr[1].(string)
		if !ok {
			return nil, fmt.Errorf("%w: claim name must be a string", ErrMalformedDisclosure)
		}
		return &Disclosure{encoded: s, salt: saltValue, name: name, value: arr[2]}, nil
	case 2:
		saltValue, ok := arr[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: salt must be a string", ErrMalformedDisclosure)
		}
		return &Disclosure{encoded: s, salt: saltValue, value: arr[1], isArray: true}, nil
	default:
		return nil, fmt.Errorf("%w: expected 2 or 3 elements, got %d", ErrMalformedDisclosure, len(arr))
	}
}

// Digest computes the disclosure's digest under alg via the injected Hashes
// capability (spec.md §4.2): base64urlNoPad(alg(ascii_bytes_of(encoded))).
func (d *Disclosure) Digest(hashes hashcap.Hashes, alg hashcap.Algorithm) (string, error) {
	return hashes.Digest(alg, d.encoded)
}
