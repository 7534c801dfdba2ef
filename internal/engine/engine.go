package engine

import (
	"fmt"

	"logicmake/internal/term"
)

// Primitive evaluates a built-in predicate (say, a filesystem existence
// check) against a query under the current bindings. It must not mutate
// the bindings; success proves the subgoal as a fact, failure is an
// ordinary search failure.
type Primitive func(q *term.Atom, b *term.Bindings) bool

// Engine is the knowledge base plus resolution entry points: an ordered
// rule list, an index from consequent functor name to its rules (first
// registered, first tried), and a registry of
// primitive evaluators. The rule base is read-only during resolution, so
// resolution needs no locking; only per-branch Bindings clones mutate.
type Engine struct {
	gen        *term.Gen
	rules      []*Rule
	index      map[string][]*Rule
	patterned  []*Rule // rules whose consequent is a bare pattern string
	primitives map[string]Primitive
	maxDepth   int
}

// New returns an empty knowledge base with its own variable generator.
// Independent engines never share generated variable identities.
func New() *Engine {
	return &Engine{
		gen:        term.NewGen(),
		index:      make(map[string][]*Rule),
		primitives: make(map[string]Primitive),
	}
}

// Register installs a rule. Must be called before resolution begins; the
// engine does not support adding rules mid-search.
func (e *Engine) Register(consequent term.Term, antecedents []term.Term, hooks Hooks) (*Rule, error) {
	ca, ok := consequent.(*term.Atom)
	if !ok {
		return nil, fmt.Errorf("engine: consequent must be an atom, got %s", consequent)
	}
	r := newRule(consequent, antecedents, hooks, e.gen)
	e.rules = append(e.rules, r)
	if len(ca.Args) == 0 && term.IsPatternName(ca.Name) {
		e.patterned = append(e.patterned, r)
	} else {
		e.index[ca.Name] = append(e.index[ca.Name], r)
	}
	return r, nil
}

// RegisterFact installs a rule with no antecedents and no hooks.
func (e *Engine) RegisterFact(consequent term.Term) (*Rule, error) {
	return e.Register(consequent, nil, Hooks{})
}

// SetMaxDepth caps antecedent nesting during resolution. Zero means
// unlimited. Exceeding the cap terminates the enumeration with ErrMaxDepth
// rather than silently dropping proofs, since in practice it signals a
// cyclic rule set.
func (e *Engine) SetMaxDepth(n int) { e.maxDepth = n }

// RegisterPrimitive maps a functor name to a built-in evaluator. The
// evaluator is consulted before any rules for that functor.
func (e *Engine) RegisterPrimitive(functor string, p Primitive) {
	e.primitives[functor] = p
}

// Rules returns the registered rules in registration order.
func (e *Engine) Rules() []*Rule { return e.rules }

// Rule returns the registered rule with the given id, or nil.
func (e *Engine) Rule(id string) *Rule {
	for _, r := range e.rules {
		if r.id == id {
			return r
		}
	}
	return nil
}

// candidates returns the rules whose consequent could match the query, in
// try order. Structured queries only ever match their functor's bucket. A
// zero-argument query additionally reaches the bare-pattern rules; when
// the query name is itself a pattern (an antecedent like "{base}.c" mid
// proof) the name index is useless, so every zero-argument consequent is a
// candidate, in registration order.
func (e *Engine) candidateRules(q *term.Atom) []*Rule {
	if len(q.Args) > 0 {
		return e.index[q.Name]
	}
	if term.IsPatternName(q.Name) {
		var out []*Rule
		for _, r := range e.rules {
			if ca, ok := r.consequent.(*term.Atom); ok && len(ca.Args) == 0 {
				out = append(out, r)
			}
		}
		return out
	}
	bucket := e.index[q.Name]
	if len(e.patterned) == 0 {
		return bucket
	}
	out := make([]*Rule, 0, len(bucket)+len(e.patterned))
	out = append(out, bucket...)
	return append(out, e.patterned...)
}

// Resolve enumerates every proof of a single target, lazily.
func (e *Engine) Resolve(target term.Term) *Proofs {
	return e.ResolveAll([]term.Term{target}, term.NewBindings())
}

// ResolveAll enumerates every way the whole query list can be proven under
// the given starting bindings. Results arrive depth first, left to right,
// in rule registration order; pulling one proof never computes the next.
func (e *Engine) ResolveAll(queries []term.Term, b *term.Bindings) *Proofs {
	return newProofs(e, queries, b, 0)
}
