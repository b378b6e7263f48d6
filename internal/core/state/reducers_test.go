package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReducer(t *testing.T) {
	kinds := []ReducerKind{ReducerOverwrite, ReducerAppend, ReducerMerge, ReducerMax, ReducerMin}
	for _, kind := range kinds {
		r, err := NewReducer(kind)
		require.NoError(t, err, "kind %s", kind)
		require.NotNil(t, r)
	}

	_, err := NewReducer("bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownReducerKind)
}

func TestOverwriteReducer(t *testing.T) {
	r := OverwriteReducer{}
	assert.Equal(t, "b", r.Reduce("a", "b"))
	assert.Equal(t, 2, r.Reduce(nil, 2))
	assert.False(t, r.Commutative())
}

func TestAppendReducer(t *testing.T) {
	r := AppendReducer{}

	t.Run("NilCurrent", func(t *testing.T) {
		assert.Equal(t, []interface{}{"x"}, r.Reduce(nil, []interface{}{"x"}))
	})

	t.Run("SliceSlice", func(t *testing.T) {
		got := r.Reduce([]interface{}{"a"}, []interface{}{"b", "c"})
		assert.Equal(t, []interface{}{"a", "b", "c"}, got)
	})

	t.Run("SliceScalar", func(t *testing.T) {
		got := r.Reduce([]interface{}{"a"}, "b")
		assert.Equal(t, []interface{}{"a", "b"}, got)
	})

	t.Run("ScalarSlice", func(t *testing.T) {
		got := r.Reduce("a", []interface{}{"b"})
		assert.Equal(t, []interface{}{"a", "b"}, got)
	})

	t.Run("ScalarScalar", func(t *testing.T) {
		got := r.Reduce("a", "b")
		assert.Equal(t, []interface{}{"a", "b"}, got)
	})

	t.Run("TypedSlices", func(t *testing.T) {
		got := r.Reduce([]string{"a"}, []string{"b"})
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("MixedSliceTypes", func(t *testing.T) {
		got := r.Reduce([]string{"a"}, []int{1})
		assert.Equal(t, []interface{}{"a", 1}, got)
	})

	t.Run("MixedSliceScalar", func(t *testing.T) {
		got := r.Reduce([]string{"a"}, 1)
		assert.Equal(t, []interface{}{"a", 1}, got)
	})

	t.Run("MixedScalarSlice", func(t *testing.T) {
		got := r.Reduce(1, []string{"b"})
		assert.Equal(t, []interface{}{1, "b"}, got)
	})

	t.Run("NilIncomingScalar", func(t *testing.T) {
		got := r.Reduce([]string{"a"}, nil)
		assert.Equal(t, []interface{}{"a", nil}, got)
	})

	assert.True(t, r.Commutative())
}

func TestMergeReducer(t *testing.T) {
	r := MergeReducer{}

	t.Run("MapsMergeRecursively", func(t *testing.T) {
		current := map[string]interface{}{
			"a": 1,
			"nested": map[string]interface{}{"x": 1},
		}
		incoming := map[string]interface{}{
			"b": 2,
			"nested": map[string]interface{}{"y": 2},
		}
		got := r.Reduce(current, incoming).(map[string]interface{})
		assert.Equal(t, 1, got["a"])
		assert.Equal(t, 2, got["b"])
		nested := got["nested"].(map[string]interface{})
		assert.Equal(t, 1, nested["x"])
		assert.Equal(t, 2, nested["y"])
	})

	t.Run("NonMapReplaces", func(t *testing.T) {
		assert.Equal(t, "b", r.Reduce("a", "b"))
	})

	assert.False(t, r.Commutative())
}

func TestMaxMinReducers(t *testing.T) {
	maxR := MaxReducer{}
	minR := MinReducer{}

	assert.Equal(t, 5, maxR.Reduce(3, 5))
	assert.Equal(t, 5, maxR.Reduce(5, 3))
	assert.Equal(t, 3, minR.Reduce(3, 5))
	assert.Equal(t, 3, minR.Reduce(5, 3))
	assert.Equal(t, 2.5, maxR.Reduce(1.5, 2.5))
	assert.Equal(t, "a", minR.Reduce("b", "a"))
	assert.Equal(t, 7, maxR.Reduce(nil, 7))

	// Mismatched types keep the current value.
	assert.Equal(t, 3, maxR.Reduce(3, "ten"))

	assert.True(t, maxR.Commutative())
	assert.True(t, minR.Commutative())
}
