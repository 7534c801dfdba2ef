package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logicmake/internal/engine"
	"logicmake/internal/term"
)

// newTestRuleSet builds a copy-based compile chain in dir: .c sources are
// leaves, .o files copy from .c, .exe files copy from .o.
func newTestRuleSet(t *testing.T, dir string) *RuleSet {
	t.Helper()
	eng := engine.New()
	eng.SetMaxDepth(16)
	run := &ShellRunner{Dir: dir}
	rs := NewRuleSet(eng, run, &FS{Root: dir})

	_, err := rs.Target("{base}.c").Register()
	require.NoError(t, err)
	_, err = rs.Target("{base}.o").
		Requires("{base}.c").
		Commands("cp {base}.c {base}.o").
		Register()
	require.NoError(t, err)
	_, err = rs.Target("{name}.exe").
		Requires("{name}.o").
		Commands("cp {name}.o {name}.exe").
		Register()
	require.NoError(t, err)
	return rs
}

func TestSatisfyBuildsDependencyChain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.c", "int main() {}\n")
	rs := newTestRuleSet(t, dir)

	sat := NewSatisfier(rs.Engine())
	proof, err := sat.Satisfy(context.Background(), term.NewAtom("hello.exe"))
	require.NoError(t, err)
	require.Len(t, proof.Rules, 3)

	assert.FileExists(t, filepath.Join(dir, "hello.o"))
	assert.FileExists(t, filepath.Join(dir, "hello.exe"))
}

func TestSatisfySkipsSatisfiedRules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.c", "src")
	rs := newTestRuleSet(t, dir)
	sat := NewSatisfier(rs.Engine())

	_, err := sat.Satisfy(context.Background(), term.NewAtom("hello.o"))
	require.NoError(t, err)

	// Poison the object file; a second run must not rewrite it, since
	// its existence test already holds.
	writeFile(t, dir, "hello.o", "hand edited")
	_, err = sat.Satisfy(context.Background(), term.NewAtom("hello.o"))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "hello.o"))
	require.NoError(t, err)
	assert.Equal(t, "hand edited", string(data))
}

func TestSatisfyMissingSource(t *testing.T) {
	dir := t.TempDir()
	rs := newTestRuleSet(t, dir)
	sat := NewSatisfier(rs.Engine())

	_, err := sat.Satisfy(context.Background(), term.NewAtom("nope.exe"))
	var uerr *UnsatisfiedError
	require.ErrorAs(t, err, &uerr)
	assert.Positive(t, uerr.Attempts)
	assert.ErrorContains(t, uerr.LastErr, "no actions")
}

func TestSatisfyNoProof(t *testing.T) {
	dir := t.TempDir()
	rs := newTestRuleSet(t, dir)
	sat := NewSatisfier(rs.Engine())

	_, err := sat.Satisfy(context.Background(), term.NewAtom("Makefile"))
	var uerr *UnsatisfiedError
	require.ErrorAs(t, err, &uerr)
	assert.Zero(t, uerr.Attempts)
	assert.NoError(t, uerr.LastErr)
}

func TestSatisfyBacktracksPastFailingAction(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New()
	run := &ShellRunner{Dir: dir}
	rs := NewRuleSet(eng, run, &FS{Root: dir})

	// Two ways to produce out.txt; the first action always fails, the
	// second succeeds, so satisfaction must fall through to it.
	_, err := rs.Target("out.txt").Commands("exit 1").Register()
	require.NoError(t, err)
	_, err = rs.Target("out.txt").Commands("echo ok > out.txt").Register()
	require.NoError(t, err)

	sat := NewSatisfier(eng)
	proof, err := sat.Satisfy(context.Background(), term.NewAtom("out.txt"))
	require.NoError(t, err)
	require.Len(t, proof.Rules, 1)
	assert.FileExists(t, filepath.Join(dir, "out.txt"))
}

func TestSatisfyActionLeavesTestUnsatisfied(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New()
	run := &ShellRunner{Dir: dir}
	rs := NewRuleSet(eng, run, &FS{Root: dir})

	// The action succeeds but never creates the target.
	_, err := rs.Target("ghost.txt").Commands("true").Register()
	require.NoError(t, err)

	sat := NewSatisfier(eng)
	_, err = sat.Satisfy(context.Background(), term.NewAtom("ghost.txt"))
	var uerr *UnsatisfiedError
	require.ErrorAs(t, err, &uerr)
	assert.ErrorContains(t, uerr.LastErr, "left it unsatisfied")
}

func TestSatisfyHonorsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	rs := newTestRuleSet(t, dir)
	sat := NewSatisfier(rs.Engine())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sat.Satisfy(ctx, term.NewAtom("hello.exe"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTargetBuilderStructuredRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.c", "src")
	eng := engine.New()
	run := &ShellRunner{Dir: dir}
	rs := NewRuleSet(eng, run, &FS{Root: dir})

	base := term.NewVariable("Base")
	_, err := rs.TargetTerm(term.NewAtom("buildable", File(base, term.NewAtom(".o")))).
		RequiresTerm(term.NewAtom(PredExists, File(base, term.NewAtom(".c")))).
		Register()
	require.NoError(t, err)

	// The primitive cannot bind an unbound Base, so known sources are
	// also registered as facts for enumeration.
	_, err = rs.Fact(term.NewAtom(PredExists, File(term.NewAtom("hello"), term.NewAtom(".c"))))
	require.NoError(t, err)

	q := term.NewVariable("Q")
	proofs := eng.Resolve(term.NewAtom("buildable", File(q, term.NewAtom(".o"))))
	proof, ok := proofs.Next()
	require.True(t, ok)
	require.NoError(t, proofs.Err())
	require.Len(t, proof.Rules, 2)
	assert.Equal(t, "hello", proof.Bindings.Ground()["Q"].String())
	_, ok = proofs.Next()
	assert.False(t, ok)
}
