package pattern

import (
	"strconv"
	"strings"
)

// Match types for matrix cells.
const (
	matchDead  = '-' // unreachable
	matchConst = '.' // literal-literal match
	matchRow   = 'r' // row variable absorbs the column token
	matchCol   = 'c' // column variable absorbs the row token
	matchBoth  = '*' // variable on both axes, direction ambiguous
)

// cell records how token (row, col) can participate in an alignment and how
// many distinct admissible paths reach it.
type cell struct {
	typ   byte
	paths int
}

// Matrix is the dynamic-programming alignment grid over two tokenized
// patterns. Cell (i, j) answers "can token i of the first pattern align
// with token j of the second, given some path from the origin". Every
// token must absorb at least one token of the other side; variables never
// match empty.
type Matrix struct {
	rows  []Token
	cols  []Token
	cells []cell
}

// NewMatrix tokenizes both patterns and fills the grid. The alignment
// rules:
//
//   - every cell may inherit reachability from its upper-left diagonal;
//   - an 'r' cell may additionally inherit from an 'r' or '*' cell on its
//     left (the row variable extends its absorbed span);
//   - a 'c' cell may additionally inherit from a 'c' or '*' cell above;
//   - '*' cells sum every reachable predecessor;
//   - a literal-literal cell matches only on exact equality and only via
//     the diagonal.
//
// The bottom-right count is the number of admissible alignments.
func NewMatrix(p1, p2 string) (*Matrix, error) {
	rows, err := Tokenize(p1)
	if err != nil {
		return nil, err
	}
	cols, err := Tokenize(p2)
	if err != nil {
		return nil, err
	}
	m := &Matrix{rows: rows, cols: cols, cells: make([]cell, len(rows)*len(cols))}
	m.fill()
	return m, nil
}

func (m *Matrix) at(row, col int) *cell {
	return &m.cells[row*len(m.cols)+col]
}

func (m *Matrix) fill() {
	for row, rtok := range m.rows {
		for col, ctok := range m.cols {
			info := m.at(row, col)
			info.typ = matchDead

			diag := 0
			switch {
			case row == 0 && col == 0:
				diag = 1
			case row > 0 && col > 0:
				diag = m.at(row-1, col-1).paths
			}

			if !rtok.Var && !ctok.Var {
				if rtok.Text == ctok.Text {
					info.typ = matchConst
					info.paths = diag
				}
				if info.paths == 0 {
					info.typ = matchDead
				}
				continue
			}

			rowSrc := 0
			if rtok.Var && col > 0 {
				if left := m.at(row, col-1); left.typ == matchRow || left.typ == matchBoth {
					rowSrc = left.paths
				}
			}
			colSrc := 0
			if ctok.Var && row > 0 {
				if up := m.at(row-1, col); up.typ == matchCol || up.typ == matchBoth {
					colSrc = up.paths
				}
			}

			switch {
			case rtok.Var && ctok.Var:
				switch {
				case row == 0 && col == 0:
					info.typ = matchBoth
					info.paths = 1
				case rowSrc > 0 && colSrc > 0:
					info.typ = matchBoth
					info.paths = diag + rowSrc + colSrc
				case rowSrc > 0:
					info.typ = matchRow
					info.paths = diag + rowSrc
				case colSrc > 0:
					info.typ = matchCol
					info.paths = diag + colSrc
				default:
					info.typ = matchBoth
					info.paths = diag
				}
			case rtok.Var:
				info.typ = matchRow
				if row == 0 && col == 0 {
					info.paths = 1
				} else {
					info.paths = diag + rowSrc
				}
			default:
				info.typ = matchCol
				if row == 0 && col == 0 {
					info.paths = 1
				} else {
					info.paths = diag + colSrc
				}
			}

			if info.paths == 0 {
				info.typ = matchDead
			}
		}
	}
}

// Matches returns the number of admissible alignments, zero when the
// bottom-right cell is unreachable or either pattern is empty. Two empty
// patterns count as one trivial alignment.
func (m *Matrix) Matches() int {
	if len(m.rows) == 0 && len(m.cols) == 0 {
		return 1
	}
	if len(m.rows) == 0 || len(m.cols) == 0 {
		return 0
	}
	return m.at(len(m.rows)-1, len(m.cols)-1).paths
}

// String renders the grid one row per line, each cell as its type letter
// followed by its path count.
func (m *Matrix) String() string {
	var b strings.Builder
	for row := range m.rows {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := range m.cols {
			if col > 0 {
				b.WriteByte(' ')
			}
			info := m.at(row, col)
			b.WriteByte(info.typ)
			b.WriteString(strconv.Itoa(info.paths))
		}
	}
	return b.String()
}
