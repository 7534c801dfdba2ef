package engine

import (
	"errors"
	"fmt"

	"logicmake/internal/pattern"
	"logicmake/internal/term"
)

// ErrMaxDepth terminates a resolution whose antecedent nesting exceeds
// the engine's configured cap.
var ErrMaxDepth = errors.New("engine: resolution depth limit exceeded")

// Proof is one successful resolution: the final substitution plus the
// rules applied, ordered head rule first, then the rules proving the
// remaining query tail, then the rules proving the head rule's
// antecedents.
type Proof struct {
	Bindings *term.Bindings
	Rules    []*Rule
}

// Proofs enumerates every proof of a query list, demand-driven: Next does
// exactly the search needed to surface one more proof, so a caller may
// stop after the first success or exhaust the sequence to see every
// admissible derivation. The search is depth first, left to right, in rule
// registration order, driven by an explicit chain of choice-point
// iterators rather than goroutines.
type Proofs struct {
	eng      *Engine
	queries  []term.Term
	bindings *term.Bindings
	depth    int

	started   bool
	doneEmpty bool
	head      *term.Atom
	rules     []*Rule
	ruleIdx   int
	primTried bool

	curRule *Rule
	cands   *candidates

	antIter  *Proofs
	tailIter *Proofs
	tailRule *Rule   // rule being applied when tailIter was opened (nil for primitives)
	tailAnt  []*Rule // antecedent rules proving tailRule

	err  error
	done bool
}

func newProofs(e *Engine, queries []term.Term, b *term.Bindings, depth int) *Proofs {
	return &Proofs{eng: e, queries: queries, bindings: b, depth: depth}
}

// Err returns the error that terminated the enumeration early, if any.
// The only fatal condition is a malformed pattern string; search failures
// are silent.
func (p *Proofs) Err() error { return p.err }

// Next returns the next proof, or false when the sequence is exhausted or
// an error occurred.
func (p *Proofs) Next() (*Proof, bool) {
	if p.done || p.err != nil {
		return nil, false
	}

	// Empty query list: vacuously true, exactly once.
	if len(p.queries) == 0 {
		if p.doneEmpty {
			p.done = true
			return nil, false
		}
		p.doneEmpty = true
		return &Proof{Bindings: p.bindings}, true
	}

	if !p.started {
		p.started = true
		if max := p.eng.maxDepth; max > 0 && p.depth > max {
			p.fail(fmt.Errorf("%w: depth %d proving %s", ErrMaxDepth, p.depth, p.queries[0]))
			return nil, false
		}
		// Substitute rather than Resolve: a pattern-named goal whose
		// variables are already bound becomes a concrete name here, so
		// it can hit the name index directly.
		head, ok := term.Substitute(p.queries[0], p.bindings).(*term.Atom)
		if !ok {
			// An unbound variable is not a provable goal.
			p.done = true
			return nil, false
		}
		p.head = head
		p.rules = p.eng.candidateRules(head)
	}

	for {
		// Innermost: continuations of the query tail.
		if p.tailIter != nil {
			if res, ok := p.tailIter.Next(); ok {
				if p.tailRule == nil {
					return res, true
				}
				rules := make([]*Rule, 0, 1+len(res.Rules)+len(p.tailAnt))
				rules = append(rules, p.tailRule)
				rules = append(rules, res.Rules...)
				rules = append(rules, p.tailAnt...)
				return &Proof{Bindings: res.Bindings, Rules: rules}, true
			}
			if err := p.tailIter.Err(); err != nil {
				p.fail(err)
				return nil, false
			}
			p.tailIter = nil
		}

		// Next way to prove the current rule's antecedents.
		if p.antIter != nil {
			if res, ok := p.antIter.Next(); ok {
				p.tailIter = newProofs(p.eng, p.queries[1:], res.Bindings, p.depth)
				p.tailRule = p.curRule
				p.tailAnt = res.Rules
				continue
			}
			if err := p.antIter.Err(); err != nil {
				p.fail(err)
				return nil, false
			}
			p.antIter = nil
		}

		// Next way to unify the head with the current rule's consequent.
		if p.cands != nil {
			b2, ok, err := p.cands.next()
			if err != nil {
				p.fail(err)
				return nil, false
			}
			if ok {
				p.antIter = newProofs(p.eng, p.curRule.antecedents, b2, p.depth+1)
				continue
			}
			p.cands = nil
		}

		// Built-in evaluator, consulted once, before any rules.
		if !p.primTried {
			p.primTried = true
			if prim, ok := p.eng.primitives[p.head.Name]; ok && prim(p.head, p.bindings) {
				p.tailIter = newProofs(p.eng, p.queries[1:], p.bindings, p.depth)
				p.tailRule = nil
				p.tailAnt = nil
				continue
			}
		}

		// Next candidate rule, in registration order.
		if p.ruleIdx < len(p.rules) {
			p.curRule = p.rules[p.ruleIdx]
			p.ruleIdx++
			p.cands = newCandidates(p.head, p.curRule, p.bindings)
			continue
		}

		p.done = true
		return nil, false
	}
}

func (p *Proofs) fail(err error) {
	p.err = err
	p.done = true
}

// candidates enumerates the substitutions under which a query unifies with
// one rule's consequent. Plain structural unification yields at most one;
// when the terms carry bare pattern strings, each admissible combination
// of string alignments is its own candidate, enumerated odometer-style
// with one lazy alignment iterator per deferred pattern pair.
type candidates struct {
	base  *term.Bindings
	pairs [][2]string
	its   []*pattern.Alignments
	cur   []pattern.Alignment

	simple bool // no deferred pairs: base itself is the only candidate
	spent  bool
}

func newCandidates(q *term.Atom, r *Rule, b *term.Bindings) *candidates {
	c := &candidates{base: b.Clone()}
	hook := func(a, b string) bool {
		if term.IsPatternName(a) || term.IsPatternName(b) {
			c.pairs = append(c.pairs, [2]string{a, b})
			return true
		}
		return false
	}
	if !term.UnifyHook(q, r.consequent, c.base, hook) {
		c.spent = true
		return c
	}
	c.simple = len(c.pairs) == 0
	return c
}

func (c *candidates) next() (*term.Bindings, bool, error) {
	if c.spent {
		return nil, false, nil
	}
	if c.simple {
		c.spent = true
		return c.base, true, nil
	}

	// First pull: open one alignment iterator per deferred pair.
	if c.its == nil {
		c.its = make([]*pattern.Alignments, len(c.pairs))
		c.cur = make([]pattern.Alignment, len(c.pairs))
		for i, pr := range c.pairs {
			it, err := pattern.Align(pr[0], pr[1])
			if err != nil {
				c.spent = true
				return nil, false, err
			}
			al, ok := it.Next()
			if !ok {
				c.spent = true
				return nil, false, nil
			}
			c.its[i] = it
			c.cur[i] = al
		}
	}

	for !c.spent {
		b := c.base.Clone()
		ok := true
		for _, al := range c.cur {
			if !applyAlignment(al, b) {
				ok = false
				break
			}
		}
		if err := c.advance(); err != nil {
			return nil, false, err
		}
		if ok {
			return b, true, nil
		}
	}
	return nil, false, nil
}

// advance steps the odometer to the next alignment combination, rewinding
// exhausted positions by re-aligning their pair (alignment enumeration is
// deterministic, so a rewind replays the same sequence).
func (c *candidates) advance() error {
	for i := len(c.its) - 1; i >= 0; i-- {
		if al, ok := c.its[i].Next(); ok {
			c.cur[i] = al
			return nil
		}
		it, err := pattern.Align(c.pairs[i][0], c.pairs[i][1])
		if err != nil {
			c.spent = true
			return err
		}
		al, _ := it.Next()
		c.its[i] = it
		c.cur[i] = al
	}
	c.spent = true
	return nil
}

// applyAlignment folds one alignment's variable assignments into the
// bindings. A variable absorbing a single opposite variable unifies
// var-to-var; a fully literal span binds the concrete string. Spans that
// mix literals with embedded variables do not commit to a single binding,
// so such alignments are skipped and the search moves on.
func applyAlignment(al pattern.Alignment, b *term.Bindings) bool {
	for _, bd := range al.Bindings {
		v := term.NewVariable(bd.Var)
		var val term.Term
		switch {
		case len(bd.Parts) == 1 && bd.Parts[0].Var:
			val = term.NewVariable(bd.Parts[0].Text)
		case bd.Ground():
			val = term.NewAtom(bd.Value())
		default:
			return false
		}
		if !term.Unify(v, val, b) {
			return false
		}
	}
	return true
}
