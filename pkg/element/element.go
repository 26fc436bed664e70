// Package element implements the issuer-facing disclosure tree of spec.md
// §4.3: a discriminated element set built from plain/flat/structured (and,
// per the open-question resolution in SPEC_FULL.md §12, array-element)
// constructors, with duplicate/collision rules enforced at build time
// (spec.md §9). No single pack example builds a tree like this — the
// teacher's sdjwtvc walks VCTM claim paths against existing data instead —
// so the sum type follows spec.md §4.3 directly, expressed as a tagged
// struct with a Kind discriminant and switch-based traversal the way the
// teacher expresses other sum types (e.g. sdjwt3/types.go's Discloser),
// per spec.md §9's "pattern-matched traversal is preferable to virtual
// dispatch".
package element

import (
	"errors"
	"fmt"
)

// Errors per spec.md §4.3, §4.4, §7.
var (
	ErrDuplicateClaim = errors.New("sdjwt: duplicate claim")
	ErrKeyCollision   = errors.New("sdjwt: key collision")
	ErrReservedKey    = errors.New("sdjwt: \"_sd\" is a reserved key")
)

// Kind discriminates the variants of Element (spec.md §4.3, §9).
type Kind int

const (
	// KindPlain claims appear verbatim in the JWT payload, never
	// disclosable.
	KindPlain Kind = iota
	// KindFlatDisclosed claims each become their own disclosure.
	KindFlatDisclosed
	// KindStructuredDisclosed nests a recursively-disclosed child set
	// under a name that is itself never disclosable.
	KindStructuredDisclosed
	// KindArray nests an array whose elements may individually be
	// ArrayPlain or ArrayDisclosed.
	KindArray
)

// Element is one member of a disclosure Set (spec.md §4.3).
type Element struct {
	kind     Kind
	name     string // claim key for StructuredDisclosed/Array; unused otherwise
	claims   map[string]any
	children Set
	items    []ArrayItem
}

// Kind reports which variant e is.
func (e Element) Kind() Kind { return e.kind }

// Name returns the claim key an Element is nested under. Only meaningful
// for KindStructuredDisclosed and KindArray.
func (e Element) Name() string { return e.name }

// Claims returns the bundled claim map. Only meaningful for KindPlain and
// KindFlatDisclosed.
func (e Element) Claims() map[string]any { return e.claims }

// Children returns the nested element set. Only meaningful for
// KindStructuredDisclosed.
func (e Element) Children() Set { return e.children }

// Items returns the array's items. Only meaningful for KindArray.
func (e Element) Items() []ArrayItem { return e.items }

// ArrayItem is one element of a KindArray Element: either a literal value
// that stays inline, or a value disclosed individually via a "..." marker
// (spec.md §9 open question, SPEC_FULL.md §12).
type ArrayItem struct {
	disclosed bool
	value     any
}

// Disclosed reports whether this item is individually disclosable.
func (a ArrayItem) Disclosed() bool { return a.disclosed }

// Value returns the item's value.
func (a ArrayItem) Value() any { return a.value }

// ArrayPlain constructs an array item that stays inline in the array,
// never disclosable.
func ArrayPlain(value any) ArrayItem { return ArrayItem{value: value} }

// ArrayDisclosed constructs an array item disclosed individually via a
// "..." marker element (spec.md §6).
func ArrayDisclosed(value any) ArrayItem { return ArrayItem{disclosed: true, value: value} }

// Set is an ordered collection of Elements at one object level.
type Set []Element

const reservedKey = "_sd"

// Builder accumulates Elements for one object level, enforcing spec.md
// §4.3's disjointness rule (Plain/FlatDisclosed claim names) and §4.4's
// key-collision rule (Plain/FlatDisclosed claim names vs
// StructuredDisclosed/Array names) as each call is made, per spec.md §9
// ("the builder MUST enforce §4.3's duplicate/collision rules at build
// time"). Methods return the Builder to support fluent chaining; the first
// error encountered is latched and returned by Build.
type Builder struct {
	elements []Element
	origin   map[string]Kind
	err      error
}

// NewBuilder returns an empty Builder for one object level.
func NewBuilder() *Builder {
	return &Builder{origin: make(map[string]Kind)}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// reserve records that key originates from kind at this level, failing
// with ErrReservedKey, ErrDuplicateClaim or ErrKeyCollision as spec.md
// requires.
func (b *Builder) reserve(key string, kind Kind) error {
	if key == reservedKey {
		return fmt.Errorf("%w: claim name %q", ErrReservedKey, key)
	}
	prior, exists := b.origin[key]
	if !exists {
		b.origin[key] = kind
		return nil
	}
	if (prior == KindPlain || prior == KindFlatDisclosed) && (kind == KindPlain || kind == KindFlatDisclosed) {
		return fmt.Errorf("%w: %q", ErrDuplicateClaim, key)
	}
	return fmt.Errorf("%w: %q", ErrKeyCollision, key)
}

// Plain adds claims that appear verbatim in the payload (spec.md §4.3).
func (b *Builder) Plain(claims map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	for key := range claims {
		if err := b.reserve(key, KindPlain); err != nil {
			return b.fail(err)
		}
	}
	b.elements = append(b.elements, Element{kind: KindPlain, claims: claims})
	return b
}

// Flat adds claims that each become their own disclosure, digested into the
// enclosing "_sd" array (spec.md §4.3).
func (b *Builder) Flat(claims map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	for key := range claims {
		if err := b.reserve(key, KindFlatDisclosed); err != nil {
			return b.fail(err)
		}
	}
	b.elements = append(b.elements, Element{kind: KindFlatDisclosed, claims: claims})
	return b
}

// Structured nests a recursively-disclosed child set under name; name
// itself is never selectively disclosable (spec.md §4.3). build populates
// the nested Builder.
func (b *Builder) Structured(name string, build func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.reserve(name, KindStructuredDisclosed); err != nil {
		return b.fail(err)
	}
	nested := NewBuilder()
	build(nested)
	children, err := nested.Build()
	if err != nil {
		return b.fail(fmt.Errorf("sdjwt: building structured(%q): %w", name, err))
	}
	b.elements = append(b.elements, Element{kind: KindStructuredDisclosed, name: name, children: children})
	return b
}

// StructuredWithFlatClaims is shorthand for Structured(name) { Flat(c) }
// (spec.md §4.3).
func (b *Builder) StructuredWithFlatClaims(name string, claims map[string]any) *Builder {
	return b.Structured(name, func(nested *Builder) {
		nested.Flat(claims)
	})
}

// Array nests an array under name, whose items may individually be
// ArrayPlain or ArrayDisclosed (spec.md §9 open question).
func (b *Builder) Array(name string, items ...ArrayItem) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.reserve(name, KindArray); err != nil {
		return b.fail(err)
	}
	b.elements = append(b.elements, Element{kind: KindArray, name: name, items: items})
	return b
}

// Build finalizes the Set, returning the first validation error
// encountered during construction, if any.
func (b *Builder) Build() (Set, error) {
	if b.err != nil {
		return nil, b.err
	}
	return Set(b.elements), nil
}
