// Package discloser implements the discloser engine of spec.md §4.4: it
// turns an issuer-built element.Set into DisclosedClaims — a JWT payload
// plus the disclosures it commits to. Grounded on
// dc4eu-vc/pkg/sdjwtvc/methods.go (MakeCredentialWithOptions,
// addHashToPath, addDecoyDigests, shuffleSDArrays/sortSDArray), adapted
// from VCTM-path-driven data mutation to recursive element.Set traversal.
package discloser

import (
	"fmt"

	"github.com/go-sdjwt/core/pkg/disclosure"
	"github.com/go-sdjwt/core/pkg/element"
	"github.com/go-sdjwt/core/pkg/hashcap"
	"github.com/go-sdjwt/core/pkg/salt"
)

// sdAlgClaim and sdClaim are the reserved payload keys of spec.md §6.
const (
	sdAlgClaim = "_sd_alg"
	sdClaim    = "_sd"
	arrayMarkerClaim = "..."
)

// Options configure one disclose operation.
type Options struct {
	// HashAlg selects the digest algorithm recorded in "_sd_alg".
	HashAlg hashcap.Algorithm
	// Hashes computes digests and decoys.
	Hashes hashcap.Hashes
	// Salts supplies one-time salts for each disclosure.
	Salts salt.Provider
	// NumDecoys is added to every "_sd" array the engine produces, per
	// level (spec.md §4.2, §4.4 step 2).
	NumDecoys int
}

// DisclosedClaims is the (claimSet, disclosures) pair of spec.md §3.
type DisclosedClaims struct {
	ClaimSet    map[string]any
	Disclosures []*disclosure.Disclosure
}

// Disclose runs the discloser engine of spec.md §4.4 over a root element
// set.
func Disclose(elements element.Set, opts Options) (*DisclosedClaims, error) {
	if !hashcap.Valid(opts.HashAlg) {
		return nil, fmt.Errorf("%w: %q", hashcap.ErrUnsupportedAlgorithm, opts.HashAlg)
	}

	claimSet, disclosures, err := discloseLevel(elements, opts)
	if err != nil {
		return nil, err
	}

	// Root-level-only "_sd_alg" injection (spec.md §4.4 step 6, §3 and §8
	// property 5: present iff at least one disclosure — decoys don't
	// count — exists anywhere in the credential).
	if len(disclosures) > 0 {
		claimSet[sdAlgClaim] = string(opts.HashAlg)
	}

	return &DisclosedClaims{ClaimSet: claimSet, Disclosures: disclosures}, nil
}

// discloseLevel implements one pass of spec.md §4.4's per-object-level
// algorithm and recurses into StructuredDisclosed children, accumulating
// every disclosure produced at this level and below.
func discloseLevel(elements element.Set, opts Options) (map[string]any, []*disclosure.Disclosure, error) {
	claimSet := make(map[string]any)
	var allDisclosures []*disclosure.Disclosure
	var sdDigests []string

	for _, el := range elements {
		switch el.Kind() {
		case element.KindPlain:
			for name, value := range el.Claims() {
				claimSet[name] = value
			}

		case element.KindFlatDisclosed:
			for name, value := range el.Claims() {
				d, digest, err := makeObjectDisclosure(opts, name, value)
				if err != nil {
					return nil, nil, err
				}
				sdDigests = append(sdDigests, digest)
				allDisclosures = append(allDisclosures, d)
			}

		case element.KindStructuredDisclosed:
			subClaimSet, subDisclosures, err := discloseLevel(el.Children(), opts)
			if err != nil {
				return nil, nil, err
			}
			claimSet[el.Name()] = subClaimSet
			allDisclosures = append(allDisclosures, subDisclosures...)

		case element.KindArray:
			arr, arrDisclosures, err := discloseArray(opts, el.Items())
			if err != nil {
				return nil, nil, err
			}
			claimSet[el.Name()] = arr
			allDisclosures = append(allDisclosures, arrDisclosures...)
		}
	}

	// Decoy digests and deterministic ascending sort (spec.md §4.4 steps
	// 2-3, §5 ordering guarantee, §8 property 4). Only levels that
	// produced at least one real disclosure get decoys, mirroring the
	// teacher's addDecoyDigestsRecursive, which only augments "_sd"
	// arrays that already exist.
	if len(sdDigests) > 0 {
		if opts.NumDecoys > 0 {
			decoys, err := opts.Hashes.Decoys(opts.HashAlg, opts.NumDecoys)
			if err != nil {
				return nil, nil, fmt.Errorf("sdjwt: generating decoy digests: %w", err)
			}
			sdDigests = append(sdDigests, decoys...)
		}
		hashcap.SortDigests(sdDigests)
		claimSet[sdClaim] = toAnySlice(sdDigests)
	}

	return claimSet, allDisclosures, nil
}

func makeObjectDisclosure(opts Options, name string, value any) (*disclosure.Disclosure, string, error) {
	saltValue, err := opts.Salts.Next()
	if err != nil {
		return nil, "", fmt.Errorf("sdjwt: generating salt: %w", err)
	}
	d, err := disclosure.Encode(saltValue, name, value)
	if err != nil {
		return nil, "", err
	}
	digest, err := d.Digest(opts.Hashes, opts.HashAlg)
	if err != nil {
		return nil, "", fmt.Errorf("sdjwt: digesting disclosure for %q: %w", name, err)
	}
	return d, digest, nil
}

// discloseArray builds an array value from items, replacing each
// ArrayDisclosed item with a {"...": digest} marker (spec.md §6, §9 open
// question). Per SPEC_FULL.md §13's resolution of that open question,
// array-level decoys are additional {"...": digest} entries with no backing
// disclosure, appended after the real elements so real indices never shift;
// like object-level decoys, they're only added to arrays that already
// contain at least one real ArrayDisclosed element.
func discloseArray(opts Options, items []element.ArrayItem) ([]any, []*disclosure.Disclosure, error) {
	arr := make([]any, 0, len(items))
	var disclosures []*disclosure.Disclosure
	hasDisclosed := false

	for _, item := range items {
		if !item.Disclosed() {
			arr = append(arr, item.Value())
			continue
		}
		hasDisclosed = true

		saltValue, err := opts.Salts.Next()
		if err != nil {
			return nil, nil, fmt.Errorf("sdjwt: generating salt: %w", err)
		}
		d, err := disclosure.EncodeArrayElement(saltValue, item.Value())
		if err != nil {
			return nil, nil, err
		}
		digest, err := d.Digest(opts.Hashes, opts.HashAlg)
		if err != nil {
			return nil, nil, fmt.Errorf("sdjwt: digesting array element disclosure: %w", err)
		}
		arr = append(arr, map[string]any{arrayMarkerClaim: digest})
		disclosures = append(disclosures, d)
	}

	if hasDisclosed && opts.NumDecoys > 0 {
		decoys, err := opts.Hashes.Decoys(opts.HashAlg, opts.NumDecoys)
		if err != nil {
			return nil, nil, fmt.Errorf("sdjwt: generating array decoy digests: %w", err)
		}
		for _, decoy := range decoys {
			arr = append(arr, map[string]any{arrayMarkerClaim: decoy})
		}
	}

	return arr, disclosures, nil
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
