package term

// NameHook lets a caller intercept pairs of zero-argument atom names whose
// plain comparison failed. Returning true defers the pair: unification
// proceeds as if the names matched and the caller settles the pair later
// (the resolution layer hands such pairs to the string pattern matcher).
// A nil hook means zero-argument atoms unify only on exact name equality.
type NameHook func(a, b string) bool

// Unify attempts to unify a and b under bnd, mutating bnd in place. On
// failure bnd may hold a partial extension, so callers clone before calling
// when rollback matters. Policy:
//
//   - both sides dereference through bnd first;
//   - atoms unify iff names and arity match and every argument pair
//     unifies left to right, short-circuiting on the first failure;
//   - an unbound variable binds to the other side after an occurs check
//     (a cyclic bind is an ordinary failure, not an error);
//   - variable-to-variable binds the left variable to the right one, a
//     fixed direction so traces stay reproducible.
func Unify(a, b Term, bnd *Bindings) bool {
	return UnifyHook(a, b, bnd, nil)
}

// UnifyHook is Unify with a NameHook for zero-argument atom pairs.
func UnifyHook(a, b Term, bnd *Bindings, hook NameHook) bool {
	a = bnd.Resolve(a)
	b = bnd.Resolve(b)

	if av, ok := a.(*Variable); ok {
		return bindVar(av, b, bnd)
	}
	if bv, ok := b.(*Variable); ok {
		return bindVar(bv, a, bnd)
	}

	aa := a.(*Atom)
	ba := b.(*Atom)
	if len(aa.Args) != len(ba.Args) {
		return false
	}
	if aa.Name != ba.Name {
		if len(aa.Args) == 0 && hook != nil && hook(aa.Name, ba.Name) {
			return true
		}
		return false
	}
	for i := range aa.Args {
		if !UnifyHook(aa.Args[i], ba.Args[i], bnd, hook) {
			return false
		}
	}
	return true
}

// bindVar binds an unbound variable v to t. Both arguments are already
// resolved. A binding that would embed v inside its own value fails.
func bindVar(v *Variable, t Term, bnd *Bindings) bool {
	if tv, ok := t.(*Variable); ok {
		if tv.Name == v.Name {
			return true
		}
		// Both unbound: record v -> tv.
		return bnd.Bind(v, tv) == nil
	}
	if bnd.occurs(v, t) {
		return false
	}
	return bnd.Bind(v, t) == nil
}
