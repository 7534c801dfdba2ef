// Package term implements the term representation and unification machinery
// for the logicmake resolution engine. A term is either an Atom (a named
// functor with ordered arguments) or a Variable. Terms are immutable value
// trees; every mutation-shaped operation returns a fresh copy.
package term

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is a closed tagged variant: only Atom and Variable implement it.
type Term interface {
	fmt.Stringer

	// Copy returns a deep structural copy of the term.
	Copy() Term

	isTerm()
}

// Atom is a named functor with zero or more ordered arguments.
// A zero-argument atom doubles as a plain string value, e.g. file names.
type Atom struct {
	Name string
	Args []Term
}

// Variable is a placeholder resolved during proof search. Identity is the
// name; standardizing apart guarantees uniqueness across rule instances.
type Variable struct {
	Name string
}

func (a *Atom) isTerm()     {}
func (v *Variable) isTerm() {}

// NewAtom builds an atom. The name must be non-empty.
func NewAtom(name string, args ...Term) *Atom {
	if name == "" {
		panic("term: atom name must be non-empty")
	}
	return &Atom{Name: name, Args: args}
}

// NewVariable builds a variable with a user-chosen name.
func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (a *Atom) Copy() Term {
	args := make([]Term, len(a.Args))
	for i, arg := range a.Args {
		args[i] = arg.Copy()
	}
	return &Atom{Name: a.Name, Args: args}
}

func (v *Variable) Copy() Term {
	return &Variable{Name: v.Name}
}

func (a *Atom) String() string {
	if len(a.Args) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return a.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (v *Variable) String() string {
	return "_" + v.Name
}

// genPrefix starts generated names; user names never contain '§'.
const genPrefix = "§v"

// Gen produces unique variable names. Each knowledge base owns its own Gen
// so independent bases never leak shared identities.
type Gen struct {
	n int
}

// NewGen returns a fresh generator starting at zero.
func NewGen() *Gen {
	return &Gen{}
}

// Fresh returns a new variable with a generated, collision-free name.
func (g *Gen) Fresh() *Variable {
	v := &Variable{Name: genPrefix + strconv.Itoa(g.n)}
	g.n++
	return v
}

// Generated reports whether a variable name came from a Gen.
func Generated(name string) bool {
	return strings.HasPrefix(name, genPrefix)
}

// StandardizeApart returns a copy of t in which every distinct variable has
// been replaced by a freshly generated one. Repeated occurrences of the same
// original variable map to the same replacement, recorded in mapping (keyed
// by original name). Placeholders inside zero-argument pattern atoms are
// renamed through the same mapping so that string patterns cannot alias
// across rule instances either.
func StandardizeApart(t Term, g *Gen, mapping map[string]*Variable) Term {
	switch t := t.(type) {
	case *Variable:
		fresh, ok := mapping[t.Name]
		if !ok {
			fresh = g.Fresh()
			mapping[t.Name] = fresh
		}
		return fresh
	case *Atom:
		if len(t.Args) == 0 {
			return &Atom{Name: renamePlaceholders(t.Name, g, mapping)}
		}
		args := make([]Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = StandardizeApart(arg, g, mapping)
		}
		return &Atom{Name: t.Name, Args: args}
	default:
		panic("term: unrecognized term")
	}
}

// renamePlaceholders rewrites {name} placeholders in a pattern string using
// the shared standardize-apart mapping. Escaped braces ({{ and }}) pass
// through untouched. Malformed patterns are left alone here; the matcher
// reports them when the pattern is actually aligned.
func renamePlaceholders(s string, g *Gen, mapping map[string]*Variable) string {
	if !strings.ContainsRune(s, '{') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteString("{{")
			i += 2
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteString("}}")
			i += 2
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				b.WriteString(s[i:])
				return b.String()
			}
			name := s[i+1 : i+end]
			fresh, ok := mapping[name]
			if !ok {
				fresh = g.Fresh()
				mapping[name] = fresh
			}
			b.WriteString("{" + fresh.Name + "}")
			i += end + 1
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// Substitute returns a copy of t with every reachable variable replaced by
// its deep-resolved value. Variables that remain unbound stay variables.
func Substitute(t Term, b *Bindings) Term {
	switch t := t.(type) {
	case *Variable:
		val := b.Resolve(t)
		if v, ok := val.(*Variable); ok {
			return v.Copy()
		}
		return Substitute(val, b)
	case *Atom:
		if len(t.Args) == 0 {
			return &Atom{Name: expandPatternName(t.Name, b)}
		}
		args := make([]Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = Substitute(arg, b)
		}
		return &Atom{Name: t.Name, Args: args}
	default:
		panic("term: unrecognized term")
	}
}

// expandPatternName splices the resolved values of bound placeholder
// variables into a pattern string; unbound placeholders stay as {name}.
// Only ground zero-argument atoms splice in, anything else keeps the
// placeholder so the pattern stays alignable.
func expandPatternName(s string, b *Bindings) string {
	if !strings.ContainsRune(s, '{') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			sb.WriteString("{{")
			i += 2
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			sb.WriteString("}}")
			i += 2
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				sb.WriteString(s[i:])
				return sb.String()
			}
			name := s[i+1 : i+end]
			val := b.Resolve(&Variable{Name: name})
			if atom, ok := val.(*Atom); ok && len(atom.Args) == 0 && !IsPatternName(atom.Name) {
				sb.WriteString(strings.NewReplacer("{", "{{", "}", "}}").Replace(atom.Name))
			} else {
				sb.WriteString("{" + name + "}")
			}
			i += end + 1
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// IsPatternName reports whether a zero-argument atom name contains an
// unescaped brace, i.e. reads as a pattern rather than plain text.
func IsPatternName(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '}' {
			continue
		}
		if i+1 < len(s) && s[i+1] == s[i] {
			i++
			continue
		}
		return true
	}
	return false
}

// Equal reports structural equality of two terms (same shape, names and
// variable identities), without consulting any bindings.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case *Variable:
		bv, ok := b.(*Variable)
		return ok && a.Name == bv.Name
	case *Atom:
		ba, ok := b.(*Atom)
		if !ok || a.Name != ba.Name || len(a.Args) != len(ba.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], ba.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Vars appends every variable occurring in t, depth first, to out.
func Vars(t Term, out []*Variable) []*Variable {
	switch t := t.(type) {
	case *Variable:
		return append(out, t)
	case *Atom:
		for _, arg := range t.Args {
			out = Vars(arg, out)
		}
	}
	return out
}
