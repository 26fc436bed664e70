// Package recreate implements the recreation engine of spec.md §4.5: the
// inverse of pkg/discloser. Given a JWT payload and a set of disclosures it
// reproduces the logical claim set and, per claim path, the disclosures
// required to reveal it. Grounded on dc4eu-vc/pkg/sdjwtvc/verification.go
// (reconstructClaims, verifyDisclosureHash) and utils.go (Token.Parse),
// generalized to recurse into nested objects and arrays — the teacher's own
// comment at verification.go:verifyDisclosureHash notes nested "_sd"
// resolution was a TODO; this closes that gap per spec.md §4.5 step 5.
package recreate

import (
	"errors"
	"fmt"

	"github.com/go-sdjwt/core/pkg/claimpath"
	"github.com/go-sdjwt/core/pkg/disclosure"
	"github.com/go-sdjwt/core/pkg/hashcap"
)

// Errors per the recreation-side integrity taxonomy of spec.md §7.
var (
	ErrDuplicateDisclosure = errors.New("sdjwt: duplicate disclosure")
	ErrUnusedDisclosure    = errors.New("sdjwt: unused disclosure")
	ErrClaimCollision      = errors.New("sdjwt: claim collision")
	ErrMalformedPayload    = errors.New("sdjwt: malformed payload")
)

const (
	sdAlgClaim       = "_sd_alg"
	sdClaim          = "_sd"
	arrayMarkerClaim = "..."
)

// PathDisclosures pairs a revealed ClaimPath with the disclosures required
// to reveal it, outermost-first (spec.md §3 DisclosuresPerClaimPath).
type PathDisclosures struct {
	Path        claimpath.Path
	Disclosures []*disclosure.Disclosure
}

// Result is the output of Recreate: the plain claim set plus, per revealed
// claim path, its disclosures.
type Result struct {
	Claims  map[string]any
	PerPath []PathDisclosures
}

// Lookup returns the disclosures required to reveal p, if p was resolved
// from a digest during recreation.
func (r *Result) Lookup(p claimpath.Path) ([]*disclosure.Disclosure, bool) {
	for _, pd := range r.PerPath {
		if pd.Path.Equal(p) {
			return pd.Disclosures, true
		}
	}
	return nil, false
}

// Recreate runs the procedure of spec.md §4.5 over payload and the raw
// (still base64url-encoded) disclosures the holder presented.
func Recreate(payload map[string]any, rawDisclosures []string, hashes hashcap.Hashes) (*Result, error) {
	sdAlg := hashcap.Default
	if raw, ok := payload[sdAlgClaim]; ok {
		algName, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q must be a string", ErrMalformedPayload, sdAlgClaim)
		}
		sdAlg = hashcap.Algorithm(algName)
		if !hashcap.Valid(sdAlg) {
			return nil, fmt.Errorf("%w: %q", hashcap.ErrUnsupportedAlgorithm, algName)
		}
	}

	index := make(map[string]*disclosure.Disclosure, len(rawDisclosures))
	for _, raw := range rawDisclosures {
		d, err := disclosure.Decode(raw)
		if err != nil {
			return nil, err
		}
		digest, err := d.Digest(hashes, sdAlg)
		if err != nil {
			return nil, fmt.Errorf("sdjwt: digesting supplied disclosure: %w", err)
		}
		if _, exists := index[digest]; exists {
			return nil, fmt.Errorf("%w: digest %q matches more than one supplied disclosure", ErrDuplicateDisclosure, digest)
		}
		index[digest] = d
	}

	w := &walker{index: index, used: make(map[string]bool, len(index))}
	claims, err := w.walkObject(payload, claimpath.Root, nil)
	if err != nil {
		return nil, err
	}

	for digest := range index {
		if !w.used[digest] {
			return nil, fmt.Errorf("%w: digest %q was never matched", ErrUnusedDisclosure, digest)
		}
	}

	return &Result{Claims: claims, PerPath: w.perPath}, nil
}

type walker struct {
	index   map[string]*disclosure.Disclosure
	used    map[string]bool
	perPath []PathDisclosures
}

func (w *walker) walkValue(v any, path claimpath.Path, ancestors []*disclosure.Disclosure) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		return w.walkObject(val, path, ancestors)
	case []any:
		return w.walkArray(val, path, ancestors)
	default:
		return v, nil
	}
}

func (w *walker) walkObject(obj map[string]any, path claimpath.Path, ancestors []*disclosure.Disclosure) (map[string]any, error) {
	revealed := make(map[string]*disclosure.Disclosure)
	merged := make(map[string]any, len(obj))

	for key, value := range obj {
		if key == sdClaim || key == sdAlgClaim {
			continue
		}
		merged[key] = value
		revealed[key] = nil
	}

	if raw, ok := obj[sdClaim]; ok {
		digests, err := asStringArray(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q must be an array of strings: %v", ErrMalformedPayload, sdClaim, err)
		}
		for _, digest := range digests {
			d, found := w.index[digest]
			if !found {
				continue // decoy or claim the holder chose not to disclose
			}
			w.used[digest] = true
			name := d.Name()
			if _, collide := merged[name]; collide {
				return nil, fmt.Errorf("%w: %q", ErrClaimCollision, name)
			}
			merged[name] = d.Value()
			revealed[name] = d
		}
	}

	out := make(map[string]any, len(merged))
	for key, value := range merged {
		childPath := path.Child(claimpath.Key(key))
		chain := ancestors
		if trigger := revealed[key]; trigger != nil {
			chain = appendDisclosure(ancestors, trigger)
			w.perPath = append(w.perPath, PathDisclosures{Path: childPath, Disclosures: chain})
		}
		recursed, err := w.walkValue(value, childPath, chain)
		if err != nil {
			return nil, err
		}
		out[key] = recursed
	}
	return out, nil
}

func (w *walker) walkArray(arr []any, path claimpath.Path, ancestors []*disclosure.Disclosure) ([]any, error) {
	out := make([]any, 0, len(arr))
	idx := 0
	for _, item := range arr {
		if digest, ok := arrayMarkerDigest(item); ok {
			d, found := w.index[digest]
			if !found {
				continue // decoy or array element the holder chose not to disclose
			}
			w.used[digest] = true
			childPath := path.Child(claimpath.Index(idx))
			chain := appendDisclosure(ancestors, d)
			w.perPath = append(w.perPath, PathDisclosures{Path: childPath, Disclosures: chain})
			recursed, err := w.walkValue(d.Value(), childPath, chain)
			if err != nil {
				return nil, err
			}
			out = append(out, recursed)
			idx++
			continue
		}

		childPath := path.Child(claimpath.Index(idx))
		recursed, err := w.walkValue(item, childPath, ancestors)
		if err != nil {
			return nil, err
		}
		out = append(out, recursed)
		idx++
	}
	return out, nil
}

func arrayMarkerDigest(item any) (string, bool) {
	m, ok := item.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	raw, ok := m[arrayMarkerClaim]
	if !ok {
		return "", false
	}
	digest, ok := raw.(string)
	return digest, ok
}

func asStringArray(raw any) ([]string, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("not an array")
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %v is not a string", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func appendDisclosure(chain []*disclosure.Disclosure, d *disclosure.Disclosure) []*disclosure.Disclosure {
	next := make([]*disclosure.Disclosure, len(chain)+1)
	copy(next, chain)
	next[len(chain)] = d
	return next
}
