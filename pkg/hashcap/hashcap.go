// Package hashcap implements the "Hashes" capability described in spec.md
// §4.2 and §9: a narrow, injectable interface over the closed set of hash
// algorithms an SD-JWT may name in its "_sd_alg" claim, plus decoy digest
// generation. Grounded on dc4eu-vc's pkg/sdjwtvc/methods.go
// (getHashAlgorithmName, getHashFromAlgorithm, generateDecoyDigest), which
// inlined the same logic per credential; here it is a constructor-injected
// capability so the pure core never reaches for a global registry.
package hashcap

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"sort"

	"github.com/go-sdjwt/core/internal/b64"
	"golang.org/x/crypto/sha3"
)

// Algorithm is one of the closed set of hash algorithms SD-JWT payloads may
// name via "_sd_alg" (spec.md §3, §6).
type Algorithm string

const (
	SHA256  Algorithm = "sha-256"
	SHA384  Algorithm = "sha-384"
	SHA512  Algorithm = "sha-512"
	SHA3256 Algorithm = "sha3-256"
	SHA3384 Algorithm = "sha3-384"
	SHA3512 Algorithm = "sha3-512"
)

// ErrUnsupportedAlgorithm is returned when an algorithm identifier falls
// outside the closed set (spec.md §7).
var ErrUnsupportedAlgorithm = errors.New("sdjwt: unsupported hash algorithm")

// Default is the algorithm used when a payload has no "_sd_alg" claim
// (spec.md §4.5 step 1).
const Default = SHA256

func newHasher(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	case SHA3256:
		return sha3.New256(), nil
	case SHA3384:
		return sha3.New384(), nil
	case SHA3512:
		return sha3.New512(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// Valid reports whether alg is a member of the closed set.
func Valid(alg Algorithm) bool {
	_, err := newHasher(alg)
	return err == nil
}

// Hashes is the capability injected into the discloser and recreation
// engines. A default implementation is provided by New; callers may supply
// their own for testing or to route through an HSM.
type Hashes interface {
	// Digest hashes the ASCII bytes of a disclosure's encoded form and
	// returns its base64url-no-pad digest (spec.md §4.2).
	Digest(alg Algorithm, asciiDisclosure string) (string, error)
	// Decoys returns count digest-shaped random values for alg,
	// indistinguishable from real digests (spec.md §4.2, §5).
	Decoys(alg Algorithm, count int) ([]string, error)
}

// Random is the secure-randomness capability backing decoy generation and,
// via pkg/salt, salt generation (spec.md §5, §9).
type Random interface {
	Bytes(n int) ([]byte, error)
}

// CryptoRandom is the default Random backed by crypto/rand.
type CryptoRandom struct{}

// Bytes returns n cryptographically secure random bytes.
func (CryptoRandom) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

type defaultHashes struct {
	rnd Random
}

// New returns the default Hashes capability, drawing decoy entropy from rnd.
// Pass hashcap.CryptoRandom{} for the standard host-platform source.
func New(rnd Random) Hashes {
	return &defaultHashes{rnd: rnd}
}

func (d *defaultHashes) Digest(alg Algorithm, asciiDisclosure string) (string, error) {
	h, err := newHasher(alg)
	if err != nil {
		return "", err
	}
	h.Reset()
	if _, err := h.Write([]byte(asciiDisclosure)); err != nil {
		return "", err
	}
	return b64.Encode(h.Sum(nil)), nil
}

func (d *defaultHashes) Decoys(alg Algorithm, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	h, err := newHasher(alg)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		raw, err := d.rnd.Bytes(32)
		if err != nil {
			return nil, fmt.Errorf("sdjwt: generating decoy digest: %w", err)
		}
		h.Reset()
		if _, err := h.Write(raw); err != nil {
			return nil, err
		}
		out = append(out, b64.Encode(h.Sum(nil)))
	}
	return out, nil
}

// SortDigests sorts digests ascending by their lexicographic string value,
// the deterministic order spec.md §4.4 step 3 and §5 mandate for "_sd"
// arrays.
func SortDigests(digests []string) {
	sort.Strings(digests)
}
