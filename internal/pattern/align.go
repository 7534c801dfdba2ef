package pattern

import "strings"

// Binding assigns one variable the span of tokens it absorbed in an
// alignment. Parts is ordered; a part is a literal string or a variable
// reference from the opposite pattern. Adjacent literal parts are already
// concatenated; a variable boundary always starts a new part.
type Binding struct {
	Var   string
	Parts []Token
}

// Ground reports whether the binding assigns a concrete string only.
func (b Binding) Ground() bool {
	for _, p := range b.Parts {
		if p.Var {
			return false
		}
	}
	return true
}

// Value concatenates the binding's parts, rendering embedded variables as
// {name} placeholders. For a ground binding this is the absorbed string.
func (b Binding) Value() string {
	var sb strings.Builder
	for _, p := range b.Parts {
		if p.Var {
			sb.WriteString("{" + p.Text + "}")
		} else {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Alignment is one admissible way of matching two patterns: an ordered
// list of variable bindings. Patterns with no variables align with zero
// bindings.
type Alignment struct {
	Bindings []Binding
}

// Get returns the binding for a variable name.
func (a Alignment) Get(name string) (Binding, bool) {
	for _, b := range a.Bindings {
		if b.Var == name {
			return b, true
		}
	}
	return Binding{}, false
}

// Apply substitutes the alignment's bindings into a pattern, leaving
// unbound variables as placeholders and re-escaping literal braces. Both
// source patterns of an alignment apply to the same string: no characters
// are dropped or duplicated.
func (a Alignment) Apply(p string) (string, error) {
	toks, err := Tokenize(p)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, t := range toks {
		if !t.Var {
			sb.WriteString(Escape(t.Text))
			continue
		}
		b, ok := a.Get(t.Text)
		if !ok {
			sb.WriteString("{" + t.Text + "}")
			continue
		}
		for _, p := range b.Parts {
			if p.Var {
				sb.WriteString("{" + p.Text + "}")
			} else {
				sb.WriteString(Escape(p.Text))
			}
		}
	}
	return sb.String(), nil
}

// pos is a matrix coordinate.
type pos struct {
	row, col int
}

// Alignments enumerates every admissible alignment of two patterns,
// demand-driven: Next does only the work needed to surface one more
// alignment, so callers may stop after the first. Internally a depth-first
// stack of partial backward paths replaces generator suspension.
type Alignments struct {
	m     *Matrix
	stack [][]pos
	empty bool // both patterns empty: exactly one trivial alignment
}

// Align tokenizes both patterns, builds the match matrix and returns a
// lazy alignment iterator. Tokenization failures surface here; an
// unreachable matrix simply yields no alignments.
func Align(p1, p2 string) (*Alignments, error) {
	m, err := NewMatrix(p1, p2)
	if err != nil {
		return nil, err
	}
	return m.Alignments(), nil
}

// Alignments returns a lazy iterator over the matrix's admissible
// alignments.
func (m *Matrix) Alignments() *Alignments {
	it := &Alignments{m: m}
	if len(m.rows) == 0 || len(m.cols) == 0 {
		it.empty = len(m.rows) == 0 && len(m.cols) == 0
		return it
	}
	last := pos{len(m.rows) - 1, len(m.cols) - 1}
	if m.at(last.row, last.col).paths > 0 {
		it.stack = [][]pos{{last}}
	}
	return it
}

// Next returns the next alignment, or false when the enumeration is
// exhausted.
func (it *Alignments) Next() (Alignment, bool) {
	if it.empty {
		it.empty = false
		return Alignment{}, true
	}
	m := it.m
	for len(it.stack) > 0 {
		path := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		head := path[0]
		if head.row == 0 && head.col == 0 {
			return m.alignmentFor(path), true
		}

		info := m.at(head.row, head.col)
		// Walk backward: diagonal whenever reachable; sideways only along
		// a compatible variable run.
		if info.typ == matchCol || info.typ == matchBoth {
			if head.row > 0 {
				if up := m.at(head.row-1, head.col); up.typ == matchCol || up.typ == matchBoth {
					it.stack = append(it.stack, prepend(pos{head.row - 1, head.col}, path))
				}
			}
		}
		if info.typ == matchRow || info.typ == matchBoth {
			if head.col > 0 {
				if left := m.at(head.row, head.col-1); left.typ == matchRow || left.typ == matchBoth {
					it.stack = append(it.stack, prepend(pos{head.row, head.col - 1}, path))
				}
			}
		}
		if head.row > 0 && head.col > 0 && m.at(head.row-1, head.col-1).paths > 0 {
			it.stack = append(it.stack, prepend(pos{head.row - 1, head.col - 1}, path))
		}
	}
	return Alignment{}, false
}

func prepend(p pos, path []pos) []pos {
	out := make([]pos, 0, len(path)+1)
	out = append(out, p)
	return append(out, path...)
}

// alignmentFor converts one complete backward path into variable bindings
// by walking it forward. A step that stays in the same row extends the
// current row variable's span; same column is symmetric; a diagonal step
// opens a new binding for whichever side is a variable. Runs of absorbed
// literal characters concatenate, but a variable on either side of the
// boundary starts a fresh part.
func (m *Matrix) alignmentFor(path []pos) Alignment {
	var out Alignment
	prev := pos{-1, -1}
	for i, p := range path {
		rtok, ctok := m.rows[p.row], m.cols[p.col]
		switch {
		case p.row == prev.row:
			out.extend(ctok)
		case p.col == prev.col:
			out.extend(rtok)
		default:
			switch m.at(p.row, p.col).typ {
			case matchRow:
				out.open(rtok.Text, ctok)
			case matchCol:
				out.open(ctok.Text, rtok)
			case matchBoth:
				// Direction depends on where the path goes next: a column
				// move means the column variable is absorbing; anything
				// else reads as a row-variable match.
				if i+1 < len(path) && path[i+1].col == p.col {
					out.open(ctok.Text, rtok)
				} else {
					out.open(rtok.Text, ctok)
				}
			}
			// Literal-literal matches bind nothing.
		}
		prev = p
	}
	return out
}

// open starts a new binding for a variable with its first absorbed token.
func (a *Alignment) open(name string, first Token) {
	a.Bindings = append(a.Bindings, Binding{Var: name, Parts: []Token{first}})
}

// extend grows the most recent binding by one absorbed token.
func (a *Alignment) extend(t Token) {
	b := &a.Bindings[len(a.Bindings)-1]
	last := &b.Parts[len(b.Parts)-1]
	if last.Var || t.Var {
		b.Parts = append(b.Parts, t)
		return
	}
	last.Text += t.Text
}
