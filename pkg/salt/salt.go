// Package salt implements the SaltProvider capability (spec.md §3, §9):
// one-time, high-entropy salts for disclosures. Grounded on
// dc4eu-vc/pkg/sdjwtvc/methods.go:generateSalt (128 bits of crypto/rand,
// base64url-no-pad encoded).
package salt

import (
	"fmt"
	"sync"

	"github.com/go-sdjwt/core/internal/b64"
	"github.com/go-sdjwt/core/pkg/hashcap"
)

// MinEntropyBytes is 128 bits, the entropy spec.md §3 requires of a Salt.
const MinEntropyBytes = 16

// Provider generates one-time salts for disclosures. Implementations MUST
// be safe for concurrent use (spec.md §5).
type Provider interface {
	Next() (string, error)
}

type secureProvider struct {
	rnd hashcap.Random
}

// New returns the default Provider, drawing entropy from rnd.
func New(rnd hashcap.Random) Provider {
	return &secureProvider{rnd: rnd}
}

func (p *secureProvider) Next() (string, error) {
	raw, err := p.rnd.Bytes(MinEntropyBytes)
	if err != nil {
		return "", fmt.Errorf("sdjwt: generating salt: %w", err)
	}
	return b64.Encode(raw), nil
}

// Deterministic is a test-only Provider that replays a fixed sequence of
// salts, used to make disclose() a pure function under test (spec.md §8
// property 2). It is grounded on the seed-scenario fixtures of spec.md §8
// ("salt provider returning s1, s2").
type Deterministic struct {
	Salts []string
	mu    sync.Mutex
	next  int
}

// NewDeterministic returns a Deterministic provider handing out salts once
// each, in order; it errors once exhausted rather than wrapping, so tests
// notice an unexpectedly large disclosure count.
func NewDeterministic(salts ...string) *Deterministic {
	return &Deterministic{Salts: salts}
}

func (d *Deterministic) Next() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.next >= len(d.Salts) {
		return "", fmt.Errorf("sdjwt: deterministic salt provider exhausted after %d salts", len(d.Salts))
	}
	s := d.Salts[d.next]
	d.next++
	return s, nil
}
