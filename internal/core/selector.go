package core

import (
	"fmt"
	"sort"
	"strings"
)

// SelectorOp is one of the six label-selector match operators, per spec
// §4.11.
type SelectorOp string

const (
	OpEquals       SelectorOp = "="
	OpNotEquals    SelectorOp = "!="
	OpIn           SelectorOp = "In"
	OpNotIn        SelectorOp = "NotIn"
	OpExists       SelectorOp = "Exists"
	OpDoesNotExist SelectorOp = "DoesNotExist"
)

// Requirement is one clause of a Selector: a key, an operator, and the
// operator's values (empty for Exists/DoesNotExist, single-valued for
// Equals/NotEquals, multi-valued for In/NotIn).
type Requirement struct {
	Key    string
	Op     SelectorOp
	Values []string
}

// Selector is an ordered set of label-match requirements, serialized as a
// Kubernetes labelSelector (or fieldSelector) query string. Per spec §4.11,
// apimachinery's own selector type is not used directly: its internal
// string form does not guarantee the exact separator/ordering this
// library's round-trip test requires, so the grammar is hand-rolled here,
// informed by (but not delegating to) k8s.io/apimachinery/pkg/labels.
type Selector struct {
	requirements []Requirement
}

// NewSelector returns an empty Selector; use the With* builders to add
// requirements.
func NewSelector() Selector {
	return Selector{}
}

func (s Selector) with(r Requirement) Selector {
	out := Selector{requirements: append(append([]Requirement(nil), s.requirements...), r)}
	return out
}

// WithEquals adds a "key=value" requirement.
func (s Selector) WithEquals(key, value string) Selector {
	return s.with(Requirement{Key: key, Op: OpEquals, Values: []string{value}})
}

// WithNotEquals adds a "key!=value" requirement.
func (s Selector) WithNotEquals(key, value string) Selector {
	return s.with(Requirement{Key: key, Op: OpNotEquals, Values: []string{value}})
}

// WithIn adds a "key in (v1,v2,...)" requirement.
func (s Selector) WithIn(key string, values ...string) Selector {
	return s.with(Requirement{Key: key, Op: OpIn, Values: values})
}

// WithNotIn adds a "key notin (v1,v2,...)" requirement.
func (s Selector) WithNotIn(key string, values ...string) Selector {
	return s.with(Requirement{Key: key, Op: OpNotIn, Values: values})
}

// WithExists adds a bare "key" requirement.
func (s Selector) WithExists(key string) Selector {
	return s.with(Requirement{Key: key, Op: OpExists})
}

// WithDoesNotExist adds a "!key" requirement.
func (s Selector) WithDoesNotExist(key string) Selector {
	return s.with(Requirement{Key: key, Op: OpDoesNotExist})
}

// Requirements returns the selector's clauses in the order they were added.
func (s Selector) Requirements() []Requirement {
	return append([]Requirement(nil), s.requirements...)
}

// Empty reports whether the selector has no requirements.
func (s Selector) Empty() bool { return len(s.requirements) == 0 }

// Encode renders the selector as the comma-joined wire string Kubernetes
// expects for labelSelector/fieldSelector query parameters.
func (s Selector) Encode() string {
	parts := make([]string, 0, len(s.requirements))
	for _, r := range s.requirements {
		switch r.Op {
		case OpEquals:
			parts = append(parts, fmt.Sprintf("%s=%s", r.Key, valueOrEmpty(r.Values)))
		case OpNotEquals:
			parts = append(parts, fmt.Sprintf("%s!=%s", r.Key, valueOrEmpty(r.Values)))
		case OpIn:
			parts = append(parts, fmt.Sprintf("%s in (%s)", r.Key, strings.Join(r.Values, ",")))
		case OpNotIn:
			parts = append(parts, fmt.Sprintf("%s notin (%s)", r.Key, strings.Join(r.Values, ",")))
		case OpExists:
			parts = append(parts, r.Key)
		case OpDoesNotExist:
			parts = append(parts, "!"+r.Key)
		}
	}
	return strings.Join(parts, ",")
}

func valueOrEmpty(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// ParseSelector parses a labelSelector/fieldSelector wire string back into a
// Selector. It is the inverse of Encode up to requirement ordering (the
// testable-properties round-trip invariant is "modulo key ordering").
func ParseSelector(s string) (Selector, error) {
	sel := NewSelector()
	s = strings.TrimSpace(s)
	if s == "" {
		return sel, nil
	}
	for _, clause := range splitTopLevelCommas(s) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		r, err := parseRequirement(clause)
		if err != nil {
			return Selector{}, err
		}
		sel = sel.with(r)
	}
	return sel, nil
}

// splitTopLevelCommas splits on commas that are not inside a "(...)" set,
// since "in (a,b)" contains commas that must not split the clause.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func parseRequirement(clause string) (Requirement, error) {
	switch {
	case strings.HasPrefix(clause, "!"):
		return Requirement{Key: strings.TrimPrefix(clause, "!"), Op: OpDoesNotExist}, nil
	case strings.Contains(clause, "!="):
		kv := strings.SplitN(clause, "!=", 2)
		return Requirement{Key: strings.TrimSpace(kv[0]), Op: OpNotEquals, Values: []string{strings.TrimSpace(kv[1])}}, nil
	case strings.Contains(clause, " notin "):
		return parseSetRequirement(clause, " notin ", OpNotIn)
	case strings.Contains(clause, " in "):
		return parseSetRequirement(clause, " in ", OpIn)
	case strings.Contains(clause, "="):
		kv := strings.SplitN(clause, "=", 2)
		return Requirement{Key: strings.TrimSpace(kv[0]), Op: OpEquals, Values: []string{strings.TrimSpace(kv[1])}}, nil
	default:
		return Requirement{Key: strings.TrimSpace(clause), Op: OpExists}, nil
	}
}

func parseSetRequirement(clause, sep string, op SelectorOp) (Requirement, error) {
	kv := strings.SplitN(clause, sep, 2)
	key := strings.TrimSpace(kv[0])
	rest := strings.TrimSpace(kv[1])
	rest = strings.TrimPrefix(rest, "(")
	rest = strings.TrimSuffix(rest, ")")
	var values []string
	for _, v := range strings.Split(rest, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			values = append(values, v)
		}
	}
	return Requirement{Key: key, Op: op, Values: values}, nil
}

// SortedKeys returns the selector's requirement keys sorted, useful in
// tests that assert round-trip equivalence modulo ordering.
func (s Selector) SortedKeys() []string {
	keys := make([]string, len(s.requirements))
	for i, r := range s.requirements {
		keys[i] = r.Key
	}
	sort.Strings(keys)
	return keys
}
