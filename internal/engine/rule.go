// Package engine implements the rule base and the backtracking resolution
// search. Rules pair a consequent with zero or more antecedents; resolving
// a query enumerates, lazily and depth first, every way the query can be
// proven from the registered rules.
package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"logicmake/internal/term"
)

// TestFunc reports whether a rule's target is already satisfied under the
// given bindings. The rule is passed so hooks can resolve their template
// variables through Var. Opaque to the resolution core.
type TestFunc func(r *Rule, b *term.Bindings) bool

// CommandsFunc runs a rule's build actions under the given bindings.
// Opaque to the resolution core; an error fails the candidate proof.
type CommandsFunc func(ctx context.Context, r *Rule, b *term.Bindings) error

// Hooks carries the externally supplied behaviors attached to a rule.
// A nil Test counts as always satisfied (pure logical rules need no build
// step); a nil Commands is a no-op.
type Hooks struct {
	Test     TestFunc
	Commands CommandsFunc
}

// Rule is one dependency rule: a consequent provable when every antecedent
// is provable. Construction standardizes the rule's variables apart with
// the owning engine's generator, so no two rule instances ever share a
// live variable identity. Rules are immutable after construction and live
// for the process.
type Rule struct {
	id          string
	consequent  term.Term
	antecedents []term.Term
	vars        map[string]*term.Variable
	hooks       Hooks
}

// newRule copies and standardizes the template terms apart. The unrenamed
// template is not retained.
func newRule(consequent term.Term, antecedents []term.Term, hooks Hooks, g *term.Gen) *Rule {
	mapping := make(map[string]*term.Variable)
	r := &Rule{
		id:         uuid.NewString(),
		consequent: term.StandardizeApart(consequent, g, mapping),
		hooks:      hooks,
	}
	r.vars = mapping
	for _, a := range antecedents {
		r.antecedents = append(r.antecedents, term.StandardizeApart(a, g, mapping))
	}
	return r
}

// ID returns the rule's stable handle id.
func (r *Rule) ID() string { return r.id }

// Consequent returns the rule's (standardized) consequent.
func (r *Rule) Consequent() term.Term { return r.consequent }

// Antecedents returns the rule's (standardized) antecedent list.
func (r *Rule) Antecedents() []term.Term { return r.antecedents }

// Fact reports whether the rule has no antecedents.
func (r *Rule) Fact() bool { return len(r.antecedents) == 0 }

// Test runs the rule's test hook; rules without one count as satisfied.
func (r *Rule) Test(b *term.Bindings) bool {
	if r.hooks.Test == nil {
		return true
	}
	return r.hooks.Test(r, b)
}

// Commands runs the rule's build actions; rules without any succeed.
func (r *Rule) Commands(ctx context.Context, b *term.Bindings) error {
	if r.hooks.Commands == nil {
		return nil
	}
	return r.hooks.Commands(ctx, r, b)
}

// Var returns the rule's standardized variable for one of its original
// template names ("base" in a "{base}.o" consequent). Hooks use this to
// read bindings by the names the rule author wrote.
func (r *Rule) Var(name string) (*term.Variable, bool) {
	v, ok := r.vars[name]
	return v, ok
}

// HasCommands reports whether the rule carries a commands hook.
func (r *Rule) HasCommands() bool { return r.hooks.Commands != nil }

// String renders the rule as consequent<=ant1, ant2.
func (r *Rule) String() string {
	if len(r.antecedents) == 0 {
		return r.consequent.String()
	}
	parts := make([]string, len(r.antecedents))
	for i, a := range r.antecedents {
		parts[i] = a.String()
	}
	return r.consequent.String() + "<=" + strings.Join(parts, ", ")
}
