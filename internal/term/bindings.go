package term

import (
	"fmt"
	"sort"
	"strings"
)

// ErrBindingConflict reports a double-bind of one variable within a single
// Bindings. This is a programming error (a substitution reused across search
// branches without cloning), never an ordinary unification failure.
type ErrBindingConflict struct {
	Name string
}

func (e *ErrBindingConflict) Error() string {
	return fmt.Sprintf("term: variable %q is already bound", e.Name)
}

// slot holds one variable binding in the arena. val is either a Term or,
// when the binding chains to another variable, that variable (which may in
// turn occupy its own slot).
type slot struct {
	v   *Variable
	val Term
}

// Bindings is the substitution accumulated along one search branch: an
// arena of slots indexed by variable name. A variable, once added, cannot
// be rebound. Each backtracking choice point clones its own Bindings, so a
// failed branch can never corrupt a sibling.
type Bindings struct {
	index map[string]int
	slots []slot
}

// NewBindings returns an empty substitution.
func NewBindings() *Bindings {
	return &Bindings{index: make(map[string]int)}
}

// Clone returns an independent copy for a speculative branch.
func (b *Bindings) Clone() *Bindings {
	c := &Bindings{
		index: make(map[string]int, len(b.index)),
		slots: make([]slot, len(b.slots)),
	}
	for k, v := range b.index {
		c.index[k] = v
	}
	copy(c.slots, b.slots)
	return c
}

// Len returns the number of bound variables.
func (b *Bindings) Len() int {
	return len(b.slots)
}

// Bind adds a binding from v to val. It fails with ErrBindingConflict if v
// already occupies a slot. Chains are kept acyclic by the occurs check in
// Unify; Bind itself only guards against rebinding.
func (b *Bindings) Bind(v *Variable, val Term) error {
	if _, ok := b.index[v.Name]; ok {
		return &ErrBindingConflict{Name: v.Name}
	}
	b.index[v.Name] = len(b.slots)
	b.slots = append(b.slots, slot{v: v, val: val})
	return nil
}

// Bound reports whether v currently occupies a slot.
func (b *Bindings) Bound(v *Variable) bool {
	_, ok := b.index[v.Name]
	return ok
}

// Resolve follows the binding chain from v until it reaches an unbound
// variable or a non-variable term. An unbound variable resolves to itself:
// absence signals "still free", not an error. The walk is iterative; chains
// are acyclic by construction.
func (b *Bindings) Resolve(t Term) Term {
	for {
		v, ok := t.(*Variable)
		if !ok {
			return t
		}
		i, ok := b.index[v.Name]
		if !ok {
			return v
		}
		t = b.slots[i].val
	}
}

// occurs reports whether v appears anywhere inside t once every reachable
// variable has been resolved through b. The walk uses an explicit stack so
// pathological inputs cannot blow the goroutine stack.
func (b *Bindings) occurs(v *Variable, t Term) bool {
	stack := []Term{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur = b.Resolve(cur)
		switch cur := cur.(type) {
		case *Variable:
			if cur.Name == v.Name {
				return true
			}
		case *Atom:
			stack = append(stack, cur.Args...)
		}
	}
	return false
}

// String renders the substitution as {_a->x, _b->y}, sorted by variable
// name for stable output.
func (b *Bindings) String() string {
	names := make([]string, 0, len(b.index))
	for name := range b.index {
		names = append(names, name)
	}
	sort.Strings(names)
	items := make([]string, len(names))
	for i, name := range names {
		s := b.slots[b.index[name]]
		items[i] = fmt.Sprintf("_%s->%s", name, s.val)
	}
	return "{" + strings.Join(items, ", ") + "}"
}

// Ground returns the fully resolved values of every bound variable whose
// name was not generated by standardize-apart, keyed by variable name.
func (b *Bindings) Ground() map[string]Term {
	out := make(map[string]Term)
	for name := range b.index {
		if Generated(name) {
			continue
		}
		out[name] = Substitute(&Variable{Name: name}, b)
	}
	return out
}
