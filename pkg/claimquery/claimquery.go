// Package claimquery provides convenience constructors for presentation
// queries (spec.md §4.6) over claimpath.Path, plus JSONPath-based extraction
// of values from a recreated claim set. Grounded on
// dc4eu-vc/pkg/sdjwtvc/utils.go:ExtractClaimsByJSONPath, which uses
// github.com/PaesslerAG/jsonpath the same way: a label -> JSONPath map in,
// a label -> value map out.
package claimquery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/go-sdjwt/core/pkg/claimpath"
)

// ParsePath parses a "$.address.city" style JSONPath literal into a
// claimpath.Path. Only the plain dotted-child subset is supported (no
// wildcards, filters or slices) — sufficient for the equality-based
// presentation queries of spec.md §4.6.
func ParsePath(jsonPathLiteral string) (claimpath.Path, error) {
	trimmed := strings.TrimPrefix(jsonPathLiteral, "$.")
	trimmed = strings.TrimPrefix(trimmed, "$")
	if trimmed == "" {
		return claimpath.Root, nil
	}
	return claimpath.ParseDotted(trimmed)
}

// ParsePaths parses each of literals via ParsePath, returning a query set
// suitable for presentation.Select (spec.md §4.6).
func ParsePaths(literals ...string) ([]claimpath.Path, error) {
	out := make([]claimpath.Path, 0, len(literals))
	for _, lit := range literals {
		p, err := ParsePath(lit)
		if err != nil {
			return nil, fmt.Errorf("claimquery: parsing %q: %w", lit, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ExtractByJSONPath extracts labeled values out of a recreated claim set
// using full JSONPath expressions (wildcards, filters, and all), for
// callers that need more than the plain-dotted equality queries
// presentation.Select supports. jsonPaths maps a caller-chosen label to a
// JSONPath expression; the result maps each label to its extracted value.
func ExtractByJSONPath(claims map[string]any, jsonPaths map[string]string) (map[string]any, error) {
	// jsonpath.Get expects a value built from encoding/json, not an
	// arbitrary any graph produced by recreate; round-trip through JSON to
	// normalize numeric and nested-map representations the same way the
	// teacher does.
	raw, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("claimquery: marshaling claims: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("claimquery: unmarshaling claims: %w", err)
	}

	out := make(map[string]any, len(jsonPaths))
	for label, path := range jsonPaths {
		result, err := jsonpath.Get(path, v)
		if err != nil {
			return nil, fmt.Errorf("claimquery: evaluating %q: %w", path, err)
		}
		out[label] = result
	}
	return out, nil
}
