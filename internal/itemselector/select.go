package itemselector

// Select evaluates filter against metadata per §4.2: an absent/empty
// filter matches everything; $and/$or combine sub-filters; any other
// top-level key constrains the corresponding metadata field, and a field
// absent from metadata fails the match.
func Select(metadata map[string]any, filter Filter) bool {
	for _, sub := range filter.And {
		if !Select(metadata, sub) {
			return false
		}
	}
	if len(filter.Or) > 0 {
		matched := false
		for _, sub := range filter.Or {
			if Select(metadata, sub) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, field := range filter.Fields {
		value, present := metadata[field.Key]
		if !present {
			return false
		}
		for _, op := range field.Ops {
			if !evalOperator(value, op) {
				return false
			}
		}
	}
	return true
}

// evalOperator implements the fixed metadata_filter bug described in
// spec §9(a): the source gates $gt/$gte/$lt/$lte on isinstance(value, float)
// and $in/$nin on isinstance(value, bool), which defeats both operator
// families for ordinary JSON numbers, ints, and strings. The intended (and
// here implemented) semantics are: numeric comparison operators apply to
// any numeric value, and $in/$nin apply to membership of any scalar value
// in the given list — not gated by a specific Go/JSON type.
func evalOperator(value any, op Operator) bool {
	switch op.Kind {
	case OpMatch:
		// An explicit null filter value never matches, regardless of the
		// metadata value — mirrors vectra-py's `if value is None: return False`.
		if op.Value == nil {
			return false
		}
		return scalarEqual(value, op.Value)
	case OpEq:
		return scalarEqual(value, op.Value)
	case OpNe:
		return !scalarEqual(value, op.Value)
	case OpGt, OpGte, OpLt, OpLte:
		v, ok := asFloat(value)
		if !ok {
			return false
		}
		target, ok := asFloat(op.Value)
		if !ok {
			return false
		}
		switch op.Kind {
		case OpGt:
			return v > target
		case OpGte:
			return v >= target
		case OpLt:
			return v < target
		default: // OpLte
			return v <= target
		}
	case OpIn, OpNin:
		member := false
		for _, candidate := range op.Array {
			if scalarEqual(value, candidate) {
				member = true
				break
			}
		}
		if op.Kind == OpIn {
			return member
		}
		return !member
	default:
		return scalarEqual(value, op.Value)
	}
}

// asFloat coerces the JSON-decoded numeric shapes (float64 from
// encoding/json, plus plain Go numeric types for values built in-process)
// to float64 for comparison.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// scalarEqual compares two scalar metadata values for equality, treating
// any numeric pair as equal-by-value regardless of concrete numeric type
// (encoding/json always decodes numbers as float64, but values built
// in-process may carry int).
func scalarEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}
