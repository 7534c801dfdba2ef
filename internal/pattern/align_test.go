package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bindingValues flattens an alignment into var->rendered-value pairs in
// binding order.
func bindingValues(a Alignment) [][2]string {
	out := make([][2]string, len(a.Bindings))
	for i, b := range a.Bindings {
		out[i] = [2]string{b.Var, b.Value()}
	}
	return out
}

func collect(t *testing.T, p1, p2 string) []Alignment {
	t.Helper()
	it, err := Align(p1, p2)
	require.NoError(t, err)
	var out []Alignment
	for {
		al, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, al)
	}
}

func TestAlignEnumeration(t *testing.T) {
	t.Run("variables on both sides", func(t *testing.T) {
		got := collect(t, "a{b}{c}def", "abc{d}{e}f")
		want := [][][2]string{
			{{"b", "b"}, {"c", "c"}, {"d", "d"}, {"e", "e"}},
			{{"b", "bc"}, {"c", "{d}"}, {"e", "de"}},
			{{"b", "b"}, {"c", "c{d}"}, {"e", "de"}},
		}
		require.Len(t, got, len(want))
		for i, al := range got {
			if diff := cmp.Diff(want[i], bindingValues(al)); diff != "" {
				t.Errorf("alignment %d mismatch (-want +got):\n%s", i, diff)
			}
		}
	})

	t.Run("variable spans split literal runs", func(t *testing.T) {
		got := collect(t, "a{b}c{d}e", "abccc{e}e")
		want := [][][2]string{
			{{"b", "bcc"}, {"d", "{e}"}},
			{{"b", "bc"}, {"d", "c{e}"}},
			{{"b", "b"}, {"d", "cc{e}"}},
			{{"b", "bccc"}, {"e", "c{d}"}},
		}
		require.Len(t, got, len(want))
		for i, al := range got {
			if diff := cmp.Diff(want[i], bindingValues(al)); diff != "" {
				t.Errorf("alignment %d mismatch (-want +got):\n%s", i, diff)
			}
		}
	})

	t.Run("simple suffix rule", func(t *testing.T) {
		got := collect(t, "{base}.o", "myfile.o")
		require.Len(t, got, 1)
		b, ok := got[0].Get("base")
		require.True(t, ok)
		assert.True(t, b.Ground())
		assert.Equal(t, "myfile", b.Value())
	})

	t.Run("no empty absorption", func(t *testing.T) {
		assert.Empty(t, collect(t, "{a}{b}", "x"))
	})

	t.Run("no variables", func(t *testing.T) {
		got := collect(t, "abc", "abc")
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Bindings)

		assert.Empty(t, collect(t, "abc", "abx"))
	})

	t.Run("both empty", func(t *testing.T) {
		got := collect(t, "", "")
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Bindings)
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := Align("{", "x")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
	})
}

func TestAlignIsLazy(t *testing.T) {
	it, err := Align("a{b}c{d}e", "abccc{e}e")
	require.NoError(t, err)
	first, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, [][2]string{{"b", "bcc"}, {"d", "{e}"}}, bindingValues(first))
	// Re-aligning restarts the deterministic enumeration.
	it2, err := Align("a{b}c{d}e", "abccc{e}e")
	require.NoError(t, err)
	again, ok := it2.Next()
	require.True(t, ok)
	assert.Equal(t, bindingValues(first), bindingValues(again))
}

func TestAlignmentApply(t *testing.T) {
	got := collect(t, "a{b}c{d}e", "abccc{e}e")
	require.NotEmpty(t, got)
	al := got[0] // b="bcc", d={e}

	out, err := al.Apply("a{b}c{d}e")
	require.NoError(t, err)
	assert.Equal(t, "abccc{e}e", out, "both patterns apply to the same string")

	// An unbound variable passes through as a placeholder.
	out, err = al.Apply("{b}-{z}")
	require.NoError(t, err)
	assert.Equal(t, "bcc-{z}", out)

	_, err = al.Apply("{broken")
	assert.Error(t, err)
}

func TestAlignmentApplyEscapes(t *testing.T) {
	got := collect(t, "{v}.o", "a{{b.o")
	require.Len(t, got, 1)
	b, ok := got[0].Get("v")
	require.True(t, ok)
	assert.Equal(t, "a{b", b.Value())

	out, err := got[0].Apply("{v}.o")
	require.NoError(t, err)
	assert.Equal(t, "a{{b.o", out, "literal braces re-escape on the way out")
}
