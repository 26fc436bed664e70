// Package presentation implements presentation selection (spec.md §4.6):
// computing the disclosures a holder must present to reveal a chosen set
// of claim paths. Grounded on dc4eu-vc/pkg/sdjwt/presentations.go
// (PresentationFlat, which already models "all disclosures unchanged"),
// generalized to path-scoped selection as spec.md §4.6 requires.
package presentation

import (
	"errors"
	"sort"

	"github.com/go-sdjwt/core/pkg/claimpath"
	"github.com/go-sdjwt/core/pkg/disclosure"
	"github.com/go-sdjwt/core/pkg/recreate"
)

// ErrUnsatisfiable is returned when a non-empty query matches no revealed
// claim path (spec.md §4.6 step 4, §7).
var ErrUnsatisfiable = errors.New("sdjwt: no satisfiable presentation for the given query")

// Select computes the disclosures needed to reveal every path in query,
// given the recreation result of the full issuance. A path p in
// result.PerPath matches a query path q iff they are equal (spec.md §4.6
// step 2 — "len(p) == len(q) and p ⊑ q" reduces to path equality). The
// returned set is the union of DisclosuresPerClaimPath[p] over every
// matched p (step 3), deduplicated and returned in a deterministic order
// (disclosure order itself carries no meaning per spec.md §5).
//
// An empty query matches nothing and returns an empty, non-error result —
// distinguishable from a non-empty query that fails to match anything,
// which returns ErrUnsatisfiable (spec.md §4.6 step 4).
func Select(result *recreate.Result, query []claimpath.Path) ([]*disclosure.Disclosure, error) {
	if len(query) == 0 {
		return nil, nil
	}

	seen := make(map[string]*disclosure.Disclosure)
	matched := false

	for _, pd := range result.PerPath {
		for _, q := range query {
			if pd.Path.Equal(q) {
				matched = true
				for _, d := range pd.Disclosures {
					seen[d.Encoded()] = d
				}
			}
		}
	}

	if !matched {
		return nil, ErrUnsatisfiable
	}

	out := make([]*disclosure.Disclosure, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Encoded() < out[j].Encoded() })
	return out, nil
}
