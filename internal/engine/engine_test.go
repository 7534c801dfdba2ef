package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logicmake/internal/term"
)

func collectProofs(t *testing.T, it *Proofs, limit int) []*Proof {
	t.Helper()
	var out []*Proof
	for len(out) < limit {
		p, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	require.NoError(t, it.Err())
	return out
}

func TestResolveFact(t *testing.T) {
	e := New()
	fact, err := e.RegisterFact(term.NewAtom("wet", term.NewAtom("grass")))
	require.NoError(t, err)

	got := collectProofs(t, e.Resolve(term.NewAtom("wet", term.NewAtom("grass"))), 10)
	require.Len(t, got, 1)
	require.Len(t, got[0].Rules, 1)
	assert.Equal(t, fact.ID(), got[0].Rules[0].ID())

	assert.Empty(t, collectProofs(t, e.Resolve(term.NewAtom("wet", term.NewAtom("sand"))), 10))
}

func TestResolveChained(t *testing.T) {
	e := New()
	x := term.NewVariable("X")
	_, err := e.Register(term.NewAtom("mortal", x), []term.Term{term.NewAtom("human", x)}, Hooks{})
	require.NoError(t, err)
	_, err = e.RegisterFact(term.NewAtom("human", term.NewAtom("socrates")))
	require.NoError(t, err)

	y := term.NewVariable("Y")
	got := collectProofs(t, e.Resolve(term.NewAtom("mortal", y)), 10)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Rules, 2, "rule application plus supporting fact")
	assert.Equal(t, "socrates", got[0].Bindings.Ground()["Y"].String())
}

func TestResolveEnumeratesInRegistrationOrder(t *testing.T) {
	e := New()
	for _, name := range []string{"socrates", "plato", "aristotle"} {
		_, err := e.RegisterFact(term.NewAtom("human", term.NewAtom(name)))
		require.NoError(t, err)
	}

	y := term.NewVariable("Y")
	got := collectProofs(t, e.Resolve(term.NewAtom("human", y)), 10)
	require.Len(t, got, 3)
	var names []string
	for _, p := range got {
		names = append(names, p.Bindings.Ground()["Y"].String())
	}
	assert.Equal(t, []string{"socrates", "plato", "aristotle"}, names)
}

func TestResolveAllSharedVariable(t *testing.T) {
	e := New()
	for _, name := range []string{"socrates", "plato"} {
		_, err := e.RegisterFact(term.NewAtom("human", term.NewAtom(name)))
		require.NoError(t, err)
	}
	_, err := e.RegisterFact(term.NewAtom("ancient", term.NewAtom("socrates")))
	require.NoError(t, err)

	x := term.NewVariable("X")
	queries := []term.Term{term.NewAtom("human", x), term.NewAtom("ancient", x)}
	got := collectProofs(t, e.ResolveAll(queries, term.NewBindings()), 10)
	require.Len(t, got, 1, "plato has no ancient fact, so only one joint proof")
	assert.Equal(t, "socrates", got[0].Bindings.Ground()["X"].String())
	assert.Len(t, got[0].Rules, 2)
}

func TestResolveEmptyQueryListIsVacuouslyTrue(t *testing.T) {
	e := New()
	got := collectProofs(t, e.ResolveAll(nil, term.NewBindings()), 10)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Rules)
}

func TestResolveUnboundGoalFails(t *testing.T) {
	e := New()
	_, err := e.RegisterFact(term.NewAtom("fact"))
	require.NoError(t, err)
	assert.Empty(t, collectProofs(t, e.Resolve(term.NewVariable("X")), 10))
}

func TestPrimitiveConsultedBeforeRules(t *testing.T) {
	e := New()
	e.RegisterPrimitive("exists", func(q *term.Atom, b *term.Bindings) bool {
		return len(q.Args) == 1 && term.Equal(q.Args[0], term.NewAtom("a.txt"))
	})
	_, err := e.RegisterFact(term.NewAtom("exists", term.NewAtom("a.txt")))
	require.NoError(t, err)

	got := collectProofs(t, e.Resolve(term.NewAtom("exists", term.NewAtom("a.txt"))), 10)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Rules, "primitive success carries no rules")
	assert.Len(t, got[1].Rules, 1)

	// Primitive failure falls through to the rules silently.
	got = collectProofs(t, e.Resolve(term.NewAtom("exists", term.NewAtom("b.txt"))), 10)
	assert.Empty(t, got)
}

func TestMaxDepthTerminatesCycles(t *testing.T) {
	e := New()
	e.SetMaxDepth(8)
	x := term.NewVariable("X")
	_, err := e.Register(term.NewAtom("p", x), []term.Term{term.NewAtom("p", x)}, Hooks{})
	require.NoError(t, err)

	it := e.Resolve(term.NewAtom("p", term.NewAtom("a")))
	_, ok := it.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, it.Err(), ErrMaxDepth)
}

func TestRegisterRejectsVariableConsequent(t *testing.T) {
	e := New()
	_, err := e.Register(term.NewVariable("X"), nil, Hooks{})
	assert.Error(t, err)
}

func TestRuleLookupByID(t *testing.T) {
	e := New()
	r, err := e.RegisterFact(term.NewAtom("f"))
	require.NoError(t, err)
	assert.Same(t, r, e.Rule(r.ID()))
	assert.Nil(t, e.Rule("nope"))
	assert.Len(t, e.Rules(), 1)
}

func TestRuleString(t *testing.T) {
	e := New()
	x := term.NewVariable("X")
	r, err := e.Register(term.NewAtom("mortal", x), []term.Term{term.NewAtom("human", x)}, Hooks{})
	require.NoError(t, err)
	v, ok := r.Var("X")
	require.True(t, ok)
	assert.Equal(t, "mortal(_"+v.Name+")<=human(_"+v.Name+")", r.String())

	fact, err := e.RegisterFact(term.NewAtom("flat"))
	require.NoError(t, err)
	assert.Equal(t, "flat", fact.String())
	assert.True(t, fact.Fact())
}

func TestProofsErrSticksAfterFailure(t *testing.T) {
	e := New()
	e.SetMaxDepth(2)
	x := term.NewVariable("X")
	_, err := e.Register(term.NewAtom("p", x), []term.Term{term.NewAtom("p", x)}, Hooks{})
	require.NoError(t, err)

	it := e.Resolve(term.NewAtom("p", term.NewAtom("a")))
	_, ok := it.Next()
	require.False(t, ok)
	require.Error(t, it.Err())
	_, ok = it.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, it.Err(), ErrMaxDepth)
}

func TestGrandparentJoin(t *testing.T) {
	e := New()
	x := term.NewVariable("X")
	y := term.NewVariable("Y")
	_, err := e.Register(
		term.NewAtom("grandparent", x, y),
		[]term.Term{
			term.NewAtom("parent", x, term.NewVariable("Z")),
			term.NewAtom("parent", term.NewVariable("Z"), y),
		},
		Hooks{},
	)
	require.NoError(t, err)
	for _, pair := range [][2]string{{"abe", "homer"}, {"homer", "bart"}} {
		_, err := e.RegisterFact(term.NewAtom("parent", term.NewAtom(pair[0]), term.NewAtom(pair[1])))
		require.NoError(t, err)
	}

	g := term.NewVariable("G")
	c := term.NewVariable("C")
	got := collectProofs(t, e.Resolve(term.NewAtom("grandparent", g, c)), 10)
	require.Len(t, got, 1)
	ground := got[0].Bindings.Ground()
	assert.Equal(t, "abe", ground["G"].String())
	assert.Equal(t, "bart", ground["C"].String())
}
