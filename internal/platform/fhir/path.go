package fhir

import (
	"fmt"
	"strings"
	"unicode"
)

// This file implements the extraction-path subset of FHIRPath used by the
// projections in this service: a resource-type head, dot navigation with
// array fan-out, and where(...) filters whose conditions are
// `<path> = '<literal>'` terms joined by `and`. That is everything the
// flattening of Patient/Condition/Observation/MedicationRequest/
// ImagingStudy/Encounter resources requires; there is deliberately no
// arithmetic, indexing, or function library here.

type pathStep struct {
	field string     // non-empty for a navigation step
	conds []pathCond // non-nil for a where(...) step
}

type pathCond struct {
	path  []string
	value string
}

// Path is a parsed extraction path, ready to evaluate against any number
// of resources.
type Path struct {
	expr  string
	steps []pathStep
}

// ParsePath parses an extraction path such as
//
//	Patient.name.where(use = 'official').given
//	identifier.where(type.coding.system = 'x' and type.coding.code = 'MR').value
//
// A leading segment starting with an uppercase letter is treated as a
// resource-type head and matched against the resource's resourceType.
func ParsePath(expr string) (*Path, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, fmt.Errorf("fhir: empty extraction path")
	}

	var steps []pathStep
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && s[j] != '.' && s[j] != '(' {
			j++
		}
		seg := s[i:j]

		if j < len(s) && s[j] == '(' {
			if seg != "where" {
				return nil, fmt.Errorf("fhir: unsupported function %q in %q", seg, expr)
			}
			end := matchParen(s, j)
			if end < 0 {
				return nil, fmt.Errorf("fhir: unbalanced parentheses in %q", expr)
			}
			conds, err := parseConds(s[j+1 : end])
			if err != nil {
				return nil, fmt.Errorf("fhir: %w in %q", err, expr)
			}
			steps = append(steps, pathStep{conds: conds})
			i = end + 1
		} else {
			if seg == "" {
				return nil, fmt.Errorf("fhir: empty segment in %q", expr)
			}
			steps = append(steps, pathStep{field: seg})
			i = j
		}

		if i < len(s) {
			if s[i] != '.' {
				return nil, fmt.Errorf("fhir: expected '.' at offset %d in %q", i, expr)
			}
			i++
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("fhir: empty extraction path")
	}
	return &Path{expr: expr, steps: steps}, nil
}

// MustParsePath is ParsePath for package-level projection tables, where a
// malformed path is a programming error.
func MustParsePath(expr string) *Path {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Path) String() string { return p.expr }

// Evaluate returns every value the path selects from the resource, in
// document order. Missing fields yield an empty result, never an error.
func (p *Path) Evaluate(resource map[string]interface{}) []interface{} {
	if resource == nil {
		return nil
	}

	steps := p.steps
	if len(steps) > 0 && steps[0].field != "" && isResourceTypeName(steps[0].field) {
		rt, _ := resource["resourceType"].(string)
		if rt != steps[0].field {
			return nil
		}
		steps = steps[1:]
	}

	coll := []interface{}{resource}
	for _, st := range steps {
		if st.conds != nil {
			coll = filterWhere(coll, st.conds)
		} else {
			var next []interface{}
			for _, item := range coll {
				next = append(next, navigateField(item, st.field)...)
			}
			coll = next
		}
		if len(coll) == 0 {
			return nil
		}
	}
	return coll
}

func matchParen(s string, open int) int {
	depth := 0
	inStr := false
	for i := open; i < len(s); i++ {
		switch {
		case inStr:
			if s[i] == '\'' {
				inStr = false
			}
		case s[i] == '\'':
			inStr = true
		case s[i] == '(':
			depth++
		case s[i] == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseConds(s string) ([]pathCond, error) {
	var conds []pathCond
	for _, term := range splitAnd(s) {
		eq := -1
		inStr := false
		for i := 0; i < len(term); i++ {
			if term[i] == '\'' {
				inStr = !inStr
			}
			if term[i] == '=' && !inStr {
				eq = i
				break
			}
		}
		if eq < 0 {
			return nil, fmt.Errorf("condition %q is not a '=' comparison", strings.TrimSpace(term))
		}
		lhs := strings.TrimSpace(term[:eq])
		rhs := strings.TrimSpace(term[eq+1:])
		if lhs == "" || len(rhs) < 2 || rhs[0] != '\'' || rhs[len(rhs)-1] != '\'' {
			return nil, fmt.Errorf("condition %q must compare a path to a quoted literal", strings.TrimSpace(term))
		}
		conds = append(conds, pathCond{
			path:  strings.Split(lhs, "."),
			value: rhs[1 : len(rhs)-1],
		})
	}
	if len(conds) == 0 {
		return nil, fmt.Errorf("empty where(...) filter")
	}
	return conds, nil
}

// splitAnd splits condition terms on the `and` keyword, respecting quoted
// literals.
func splitAnd(s string) []string {
	var terms []string
	inStr := false
	last := 0
	for i := 0; i+5 <= len(s); i++ {
		if s[i] == '\'' {
			inStr = !inStr
			continue
		}
		if !inStr && s[i] == ' ' && strings.HasPrefix(s[i:], " and ") {
			terms = append(terms, s[last:i])
			i += 4
			last = i + 1
		}
	}
	terms = append(terms, s[last:])
	return terms
}

// filterWhere keeps the items for which every condition holds. A condition
// holds when any value selected by its path equals the literal.
func filterWhere(coll []interface{}, conds []pathCond) []interface{} {
	var out []interface{}
	for _, item := range coll {
		keep := true
		for _, cond := range conds {
			vals := []interface{}{item}
			for _, f := range cond.path {
				var next []interface{}
				for _, v := range vals {
					next = append(next, navigateField(v, f)...)
				}
				vals = next
			}
			matched := false
			for _, v := range vals {
				if fmt.Sprintf("%v", v) == cond.value {
					matched = true
					break
				}
			}
			if !matched {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

// navigateField extracts a named field from a value, fanning out arrays.
func navigateField(item interface{}, field string) []interface{} {
	m, ok := item.(map[string]interface{})
	if !ok {
		return nil
	}
	val, ok := m[field]
	if !ok || val == nil {
		return nil
	}
	if arr, isArr := val.([]interface{}); isArr {
		return arr
	}
	return []interface{}{val}
}

// isResourceTypeName reports whether the segment looks like a FHIR resource
// type (starts with an uppercase letter).
func isResourceTypeName(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}
