// Package state holds the canonical run state and the merge policies applied
// when node updates are committed.
package state

import (
	"fmt"
	"reflect"
)

// Reducer combines an existing value for a state key with an incoming value.
// Reducers are pure: they must not retain or mutate their arguments.
type Reducer interface {
	// Reduce merges the incoming value into the current value and returns
	// the merged result. current is nil when the key has never been written.
	Reduce(current, incoming interface{}) interface{}

	// Commutative reports whether the merged outcome is independent of
	// commit order (element order aside). Only commutative reducers may be
	// assigned to keys written by concurrently-runnable nodes.
	Commutative() bool
}

// ReducerKind identifies a merge policy by name.
type ReducerKind string

const (
	// ReducerOverwrite replaces the current value (last writer wins).
	ReducerOverwrite ReducerKind = "overwrite"
	// ReducerAppend accumulates values into a slice in first-commit order.
	ReducerAppend ReducerKind = "append"
	// ReducerMerge merges map values recursively.
	ReducerMerge ReducerKind = "merge"
	// ReducerMax keeps the maximum value.
	ReducerMax ReducerKind = "max"
	// ReducerMin keeps the minimum value.
	ReducerMin ReducerKind = "min"
)

// NewReducer creates a reducer for the given kind.
func NewReducer(kind ReducerKind) (Reducer, error) {
	switch kind {
	case ReducerOverwrite:
		return OverwriteReducer{}, nil
	case ReducerAppend:
		return AppendReducer{}, nil
	case ReducerMerge:
		return MergeReducer{}, nil
	case ReducerMax:
		return MaxReducer{}, nil
	case ReducerMin:
		return MinReducer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReducerKind, kind)
	}
}

// OverwriteReducer replaces the current value with the incoming one.
type OverwriteReducer struct{}

// Reduce returns the incoming value unconditionally.
func (OverwriteReducer) Reduce(_, incoming interface{}) interface{} { return incoming }

// Commutative returns false: the result depends on commit order.
func (OverwriteReducer) Commutative() bool { return false }

// AppendReducer accumulates values into an ordered slice. Slices are
// concatenated; scalars are appended as single elements. Order of elements is
// the order commits were applied, which for parallel writers is the order
// their completions were observed.
type AppendReducer struct{}

// Reduce appends the incoming value to the current one. Incompatible element
// types fall back to a []interface{} accumulation rather than failing: state
// values are opaque to the engine.
func (AppendReducer) Reduce(current, incoming interface{}) interface{} {
	if current == nil {
		return incoming
	}
	cur := reflect.ValueOf(current)
	inc := reflect.ValueOf(incoming)

	switch {
	case cur.Kind() == reflect.Slice && inc.Kind() == reflect.Slice:
		if inc.Type().Elem().AssignableTo(cur.Type().Elem()) {
			out := reflect.MakeSlice(cur.Type(), 0, cur.Len()+inc.Len())
			out = reflect.AppendSlice(out, cur)
			for i := 0; i < inc.Len(); i++ {
				out = reflect.Append(out, inc.Index(i))
			}
			return out.Interface()
		}
		return append(genericSlice(cur), genericSlice(inc)...)
	case cur.Kind() == reflect.Slice:
		if inc.IsValid() && inc.Type().AssignableTo(cur.Type().Elem()) {
			return reflect.Append(cur, inc).Interface()
		}
		return append(genericSlice(cur), incoming)
	case inc.Kind() == reflect.Slice:
		if cur.Type().AssignableTo(inc.Type().Elem()) {
			out := reflect.MakeSlice(inc.Type(), 0, inc.Len()+1)
			out = reflect.Append(out, cur)
			return reflect.AppendSlice(out, inc).Interface()
		}
		return append([]interface{}{current}, genericSlice(inc)...)
	default:
		return []interface{}{current, incoming}
	}
}

// genericSlice copies a slice value into a fresh []interface{}.
func genericSlice(v reflect.Value) []interface{} {
	out := make([]interface{}, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out
}

// Commutative returns true: the accumulated multiset is order-independent.
func (AppendReducer) Commutative() bool { return true }

// MergeReducer merges map values recursively; non-map values are replaced.
type MergeReducer struct{}

// Reduce merges the incoming value into the current one.
func (r MergeReducer) Reduce(current, incoming interface{}) interface{} {
	if current == nil {
		return incoming
	}
	curMap, curOK := current.(map[string]interface{})
	incMap, incOK := incoming.(map[string]interface{})
	if !curOK || !incOK {
		return incoming
	}
	merged := make(map[string]interface{}, len(curMap)+len(incMap))
	for k, v := range curMap {
		merged[k] = v
	}
	for k, v := range incMap {
		if existing, ok := merged[k]; ok {
			merged[k] = r.Reduce(existing, v)
		} else {
			merged[k] = v
		}
	}
	return merged
}

// Commutative returns false: overlapping non-map keys are replaced in commit
// order.
func (MergeReducer) Commutative() bool { return false }

// MaxReducer keeps the larger of the current and incoming values.
type MaxReducer struct{}

// Reduce returns the maximum of the two values.
func (MaxReducer) Reduce(current, incoming interface{}) interface{} {
	if current == nil {
		return incoming
	}
	if compareValues(current, incoming) >= 0 {
		return current
	}
	return incoming
}

// Commutative returns true.
func (MaxReducer) Commutative() bool { return true }

// MinReducer keeps the smaller of the current and incoming values.
type MinReducer struct{}

// Reduce returns the minimum of the two values.
func (MinReducer) Reduce(current, incoming interface{}) interface{} {
	if current == nil {
		return incoming
	}
	if compareValues(current, incoming) <= 0 {
		return current
	}
	return incoming
}

// Commutative returns true.
func (MinReducer) Commutative() bool { return true }

// compareValues orders two values of the same dynamic type. Unsupported or
// mismatched types compare as equal, so the current value is kept.
func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return compareOrdered(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return compareOrdered(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return compareOrdered(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return compareOrdered(av, bv)
		}
	}
	return 0
}

func compareOrdered[T int | int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
