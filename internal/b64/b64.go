// Package b64 provides the base64url-no-pad codec shared by disclosures,
// digests and salts. It exists as its own package because every layer above
// the primitives layer needs the exact same encoding and must never drift
// (spec.md §2.1).
package b64

import "encoding/base64"

// Encode returns the base64url-no-pad encoding of b.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode reverses Encode. It rejects padded or standard-alphabet input.
func Decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
