package itemselector

import "fmt"

// Filter is the parsed form of the wire-level metadata filter (§6): a
// mapping from field name to either a scalar equality or an operator
// bundle, with two special combinators, $and and $or. Representing it as
// an AST (rather than re-walking the raw map[string]any on every
// evaluation) keeps Select's hot path — called once per candidate item —
// cheap, and makes the filter independently validatable/testable.
type Filter struct {
	And    []Filter
	Or     []Filter
	Fields []FieldPredicate
}

// FieldPredicate constrains a single metadata field. A bare scalar filter
// value ({"t": "x"}) parses to a single OpMatch operator; an operator
// bundle ({"n": {"$gt": 1, "$lt": 10}}) parses to one operator per key, all
// of which must hold (mirroring vectra-py's metadata_filter, which ANDs
// every key in the operator dict).
type FieldPredicate struct {
	Key string
	Ops []Operator
}

// Operator is one evaluated comparison against a field's value.
type Operator struct {
	Kind  OpKind
	Value any   // Eq, Ne, Gt, Gte, Lt, Lte, Match
	Array []any // In, Nin
}

// OpKind enumerates the filter operators from §6, plus Match for bare
// scalar equality (the non-operator-object form).
type OpKind string

const (
	OpMatch OpKind = "match" // field: scalar
	OpEq    OpKind = "$eq"
	OpNe    OpKind = "$ne"
	OpGt    OpKind = "$gt"
	OpGte   OpKind = "$gte"
	OpLt    OpKind = "$lt"
	OpLte   OpKind = "$lte"
	OpIn    OpKind = "$in"
	OpNin   OpKind = "$nin"
)

// Parse builds a Filter AST from the raw wire shape (as produced by
// encoding/json: map[string]any, nested maps, []any, float64/string/bool/nil
// leaves). A nil raw filter parses to the zero Filter, which Select treats
// as "match everything".
func Parse(raw map[string]any) (Filter, error) {
	var f Filter
	for key, value := range raw {
		switch key {
		case "$and", "$or":
			list, ok := value.([]any)
			if !ok {
				return Filter{}, fmt.Errorf("itemselector: %s requires an array of filters", key)
			}
			subs := make([]Filter, 0, len(list))
			for _, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					return Filter{}, fmt.Errorf("itemselector: %s entries must be filter objects", key)
				}
				sub, err := Parse(m)
				if err != nil {
					return Filter{}, err
				}
				subs = append(subs, sub)
			}
			if key == "$and" {
				f.And = subs
			} else {
				f.Or = subs
			}
		default:
			ops, err := parseFieldValue(value)
			if err != nil {
				return Filter{}, fmt.Errorf("itemselector: field %q: %w", key, err)
			}
			f.Fields = append(f.Fields, FieldPredicate{Key: key, Ops: ops})
		}
	}
	return f, nil
}

func parseFieldValue(value any) ([]Operator, error) {
	bundle, ok := value.(map[string]any)
	if !ok {
		// Scalar equality, e.g. {"t": "x"}.
		return []Operator{{Kind: OpMatch, Value: value}}, nil
	}
	ops := make([]Operator, 0, len(bundle))
	for opKey, opValue := range bundle {
		switch OpKind(opKey) {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
			ops = append(ops, Operator{Kind: OpKind(opKey), Value: opValue})
		case OpIn, OpNin:
			arr, ok := opValue.([]any)
			if !ok {
				return nil, fmt.Errorf("%s requires an array", opKey)
			}
			ops = append(ops, Operator{Kind: OpKind(opKey), Array: arr})
		default:
			// Unknown operator keys compare directly against the operator
			// value (fallback equality), per §4.2.
			ops = append(ops, Operator{Kind: OpEq, Value: opValue})
		}
	}
	return ops, nil
}
