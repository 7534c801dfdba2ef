package build

import (
	"context"
	"os"

	"logicmake/internal/engine"
	"logicmake/internal/term"
)

// RuleSet registers build rules on an engine with the shared runner and
// filesystem. It mirrors a provides/requires registry: a target pattern is
// the consequent, each requirement an antecedent.
type RuleSet struct {
	eng *engine.Engine
	run *ShellRunner
	fs  *FS
}

// NewRuleSet wires a rule set over an engine.
func NewRuleSet(e *engine.Engine, run *ShellRunner, fs *FS) *RuleSet {
	fs.Register(e)
	return &RuleSet{eng: e, run: run, fs: fs}
}

// Engine exposes the underlying engine for structured-term registration.
func (rs *RuleSet) Engine() *engine.Engine { return rs.eng }

// Target starts a rule whose consequent is a bare pattern string such as
// "{base}.o".
func (rs *RuleSet) Target(pattern string) *TargetBuilder {
	return &TargetBuilder{
		rs:         rs,
		target:     pattern,
		consequent: term.NewAtom(pattern),
	}
}

// TargetTerm starts a rule with a structured consequent such as
// buildable(file(Base, ".o")).
func (rs *RuleSet) TargetTerm(consequent term.Term) *TargetBuilder {
	return &TargetBuilder{rs: rs, consequent: consequent}
}

// Fact registers an antecedent-free rule.
func (rs *RuleSet) Fact(consequent term.Term) (*engine.Rule, error) {
	return rs.eng.RegisterFact(consequent)
}

// TargetBuilder accumulates one rule before registration.
type TargetBuilder struct {
	rs          *RuleSet
	target      string // pattern form of the consequent, when string-shaped
	consequent  term.Term
	antecedents []term.Term
	hooks       engine.Hooks
	noAutoTest  bool
}

// Requires adds a pattern-string antecedent.
func (tb *TargetBuilder) Requires(pattern string) *TargetBuilder {
	tb.antecedents = append(tb.antecedents, term.NewAtom(pattern))
	return tb
}

// RequiresTerm adds a structured antecedent.
func (tb *TargetBuilder) RequiresTerm(t term.Term) *TargetBuilder {
	tb.antecedents = append(tb.antecedents, t)
	return tb
}

// Test sets an explicit test hook, replacing the default freshness test.
func (tb *TargetBuilder) Test(fn engine.TestFunc) *TargetBuilder {
	tb.hooks.Test = fn
	tb.noAutoTest = true
	return tb
}

// Commands sets the build action to a shell script template; {name}
// placeholders expand from the rule's bindings at execution time.
func (tb *TargetBuilder) Commands(script string) *TargetBuilder {
	run := tb.rs.run
	tb.hooks.Commands = func(ctx context.Context, r *engine.Rule, b *term.Bindings) error {
		expanded, err := ExpandTemplate(script, r, b)
		if err != nil {
			return err
		}
		_, err = run.Run(ctx, expanded)
		return err
	}
	return tb
}

// CommandsFunc sets an arbitrary commands hook.
func (tb *TargetBuilder) CommandsFunc(fn engine.CommandsFunc) *TargetBuilder {
	tb.hooks.Commands = fn
	return tb
}

// Register installs the rule. A string-shaped target with no explicit test
// gets the default test "the target file exists", evaluated by expanding
// the target pattern under the rule's bindings.
func (tb *TargetBuilder) Register() (*engine.Rule, error) {
	if tb.target != "" && !tb.noAutoTest {
		fs := tb.rs.fs
		target := tb.target
		tb.hooks.Test = func(r *engine.Rule, b *term.Bindings) bool {
			path, err := ExpandTemplate(target, r, b)
			if err != nil {
				return false
			}
			_, statErr := os.Stat(fs.join(path))
			return statErr == nil
		}
	}
	return tb.rs.eng.Register(tb.consequent, tb.antecedents, tb.hooks)
}
