// Package claimpath implements the ClaimPath value type of spec.md §3: an
// ordered sequence of steps (object key or array index) from the credential
// root, with prefix ordering. No pack example defines an equivalent type
// directly; per spec.md §9 ("design as a value type with prefix-ordering...
// prefer immutable sharing of parent paths") it is built as a small
// immutable slice type in the idiom the teacher uses for its own value
// types (e.g. dc4eu-vc/pkg/sdjwtvc's []*string claim paths, generalized here
// to also address array indices).
package claimpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one element of a ClaimPath: either an object key or an array
// index, never both.
type Step struct {
	key      string
	index    int
	isIndex  bool
}

// Key constructs an object-key step.
func Key(name string) Step { return Step{key: name} }

// Index constructs an array-index step.
func Index(i int) Step { return Step{index: i, isIndex: true} }

// IsIndex reports whether the step addresses an array element.
func (s Step) IsIndex() bool { return s.isIndex }

// KeyName returns the object key this step addresses. Meaningless if
// IsIndex() is true.
func (s Step) KeyName() string { return s.key }

// ArrayIndex returns the array index this step addresses. Meaningless if
// IsIndex() is false.
func (s Step) ArrayIndex() int { return s.index }

func (s Step) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

func (s Step) equal(o Step) bool {
	return s.isIndex == o.isIndex && s.key == o.key && s.index == o.index
}

// Path is an ordered sequence of steps from the credential root. The zero
// value is the empty (root) path. Path is immutable: Child always returns a
// new Path holding its own copy of the parent's steps.
type Path struct {
	steps []Step
}

// Root is the empty claim path.
var Root = Path{}

// New builds a Path from steps, root-first.
func New(steps ...Step) Path {
	return Path{steps: append([]Step(nil), steps...)}
}

// Child returns the path extended by one step. The receiver is left
// unmodified; the new Path's backing array is never aliased by a sibling
// Child call, since Child copies the parent's steps into a freshly
// allocated slice.
func (p Path) Child(step Step) Path {
	next := make([]Step, len(p.steps)+1)
	copy(next, p.steps)
	next[len(p.steps)] = step
	return Path{steps: next}
}

// Len returns the number of steps in the path.
func (p Path) Len() int { return len(p.steps) }

// Steps returns a copy of the path's steps, root-first.
func (p Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Equal reports whether p and o address the same claim path, including
// length (spec.md §3: "equality includes length").
func (p Path) Equal(o Path) bool {
	if len(p.steps) != len(o.steps) {
		return false
	}
	for i := range p.steps {
		if !p.steps[i].equal(o.steps[i]) {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether p is a prefix of o — "p ⊑ o" in spec.md §3 —
// including the case p.Equal(o).
func (p Path) IsPrefixOf(o Path) bool {
	if len(p.steps) > len(o.steps) {
		return false
	}
	for i := range p.steps {
		if !p.steps[i].equal(o.steps[i]) {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = s.String()
	}
	return "$." + strings.Join(parts, ".")
}

// MustParseDotted parses a small "a.b.2.c" dotted-path notation into a
// Path, treating purely-numeric segments as array indices. It panics on a
// malformed segment and is meant for literal, compile-time-known paths in
// tests and examples, not untrusted input — ParseDotted is the fallible
// counterpart.
func MustParseDotted(s string) Path {
	p, err := ParseDotted(s)
	if err != nil {
		panic(fmt.Sprintf("claimpath: %v", err))
	}
	return p
}

// ParseDotted parses "a.b.2.c" into a Path, treating purely-numeric
// segments as array indices.
func ParseDotted(s string) (Path, error) {
	if s == "" {
		return Root, nil
	}
	segments := strings.Split(s, ".")
	steps := make([]Step, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			return Path{}, fmt.Errorf("claimpath: empty segment in %q", s)
		}
		if n, err := strconv.Atoi(seg); err == nil {
			steps = append(steps, Index(n))
			continue
		}
		steps = append(steps, Key(seg))
	}
	return New(steps...), nil
}
