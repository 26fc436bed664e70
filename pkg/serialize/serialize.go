// Package serialize implements the wire formats of spec.md §6: the
// combined issuance/presentation format and the JWS-JSON form. Combined
// format grounded on dc4eu-vc/pkg/sdjwtvc/jwt.go:Combine and
// keybinding.go:CombineWithKeyBinding; JWS-JSON grounded on
// dc4eu-vc/pkg/sdjwt/presentations.go's PresentationJWS, generalized to a
// multi-signature "signatures" array per RFC 7515 §7.2 (SPEC_FULL.md §12),
// since the teacher only modeled the single-signature flattened form.
package serialize

import (
	"errors"
	"fmt"
	"strings"
)

// Media types recognized for SD-JWT content (spec.md §6).
const (
	MediaTypeSDJWT       = "application/sd-jwt"
	MediaTypeSDJWTJSON   = "application/sd-jwt+json"
	MediaTypeKBJWT       = "application/kb+jwt"
	MediaTypeDCSDJWT     = "application/dc+sd-jwt"
)

// ErrMalformed is returned when a combined-format string doesn't split the
// way spec.md §6 requires.
var ErrMalformed = errors.New("sdjwt: malformed combined-format SD-JWT")

// CombineIssuance builds the Combined Issuance format of spec.md §6:
// "<JWT>~<D1>~<D2>~...~<Dn>~", always terminated by "~", never carrying a
// key binding.
func CombineIssuance(jwt string, disclosures []string) string {
	if len(disclosures) == 0 {
		return jwt + "~"
	}
	return jwt + "~" + strings.Join(disclosures, "~") + "~"
}

// CombinePresentation builds the Combined Presentation format of spec.md
// §6: "<JWT>~<D_i1>~...~<D_ik>~<KB-JWT?>". kbJWT may be empty.
func CombinePresentation(jwt string, disclosures []string, kbJWT string) string {
	base := CombineIssuance(jwt, disclosures)
	return base + kbJWT
}

// ParseCombined splits a combined-format SD-JWT into its issuer JWT,
// disclosures, and (possibly empty) key-binding JWT, per the
// ParseCombined state of spec.md §4.8: split on "~", first segment is the
// JWT, middle segments are disclosures, last segment is the KB-JWT.
func ParseCombined(s string) (jwt string, disclosures []string, kbJWT string, err error) {
	parts := strings.Split(s, "~")
	if len(parts) < 2 {
		return "", nil, "", fmt.Errorf("%w: expected at least one \"~\"", ErrMalformed)
	}
	jwt = parts[0]
	if jwt == "" {
		return "", nil, "", fmt.Errorf("%w: empty issuer JWT segment", ErrMalformed)
	}
	kbJWT = parts[len(parts)-1]
	disclosures = parts[1 : len(parts)-1]
	return jwt, disclosures, kbJWT, nil
}

// TrimToLastTilde implements spec.md §4.7 step 2: strip any trailing
// partial content after the last "~", keeping everything up to and
// including it. Used to compute the sd_hash input from a presentation
// string that may or may not yet carry a key-binding JWT.
func TrimToLastTilde(s string) string {
	idx := strings.LastIndex(s, "~")
	if idx < 0 {
		return s
	}
	return s[:idx+1]
}

// JWSSignature is one entry of a JWS-JSON "signatures" array (RFC 7515
// §7.2.1).
type JWSSignature struct {
	Protected string `json:"protected"`
	Signature string `json:"signature"`
}

// JWSJSON is the JWS-JSON form of spec.md §6: the JWS fields plus the two
// SD-JWT-specific fields "disclosures" and "kb_jwt".
type JWSJSON struct {
	Payload     string         `json:"payload"`
	Protected   string         `json:"protected,omitempty"`
	Signature   string         `json:"signature,omitempty"`
	Signatures  []JWSSignature `json:"signatures,omitempty"`
	Disclosures []string       `json:"disclosures"`
	KBJWT       string         `json:"kb_jwt,omitempty"`
}

// NewFlattened builds the flattened single-signature JWS-JSON form (RFC
// 7515 §7.2.2), the shape the teacher's PresentationJWS models.
func NewFlattened(protected, payload, signature string, disclosures []string, kbJWT string) *JWSJSON {
	return &JWSJSON{
		Payload:     payload,
		Protected:   protected,
		Signature:   signature,
		Disclosures: disclosures,
		KBJWT:       kbJWT,
	}
}

// NewGeneral builds the general JWS-JSON form with a "signatures" array
// (RFC 7515 §7.2.1), for callers presenting the same payload signed by
// more than one key.
func NewGeneral(payload string, signatures []JWSSignature, disclosures []string, kbJWT string) *JWSJSON {
	return &JWSJSON{
		Payload:     payload,
		Signatures:  signatures,
		Disclosures: disclosures,
		KBJWT:       kbJWT,
	}
}
