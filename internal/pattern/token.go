// Package pattern implements variable-aware alignment of filename-style
// pattern strings. A pattern mixes literal text with {name} variable
// placeholders; braces are escaped by doubling. Aligning two patterns
// enumerates every admissible way to apportion characters between their
// variables, something ordinary term unification cannot do because a single
// string may need to split across differently-positioned variables.
package pattern

import (
	"fmt"
	"strings"
)

// Token is one element of a tokenized pattern: either a single literal
// character or a {name} variable placeholder. Literals are kept at single
// characters so that the alignment matrix can apportion a literal run
// between variables one character at a time.
type Token struct {
	Var  bool
	Text string // literal character, or the variable name
}

func (t Token) String() string {
	if t.Var {
		return "{" + t.Text + "}"
	}
	return t.Text
}

// ParseError reports a malformed pattern string.
type ParseError struct {
	Pattern string
	Pos     int
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pattern: %s at offset %d in %q", e.Reason, e.Pos, e.Pattern)
}

// Tokenize splits a pattern into literal-character and variable tokens.
// {{ and }} produce literal braces. A stray }, a { inside a variable name,
// an empty {} and an unterminated {name are all parse errors.
func Tokenize(s string) ([]Token, error) {
	var toks []Token
	runes := []rune(s)
	for i := 0; i < len(runes); {
		switch runes[i] {
		case '{':
			if i+1 < len(runes) && runes[i+1] == '{' {
				toks = append(toks, Token{Text: "{"})
				i += 2
				continue
			}
			j := i + 1
			for j < len(runes) && runes[j] != '}' {
				if runes[j] == '{' {
					return nil, &ParseError{Pattern: s, Pos: j, Reason: "'{' inside a variable name"}
				}
				j++
			}
			if j == len(runes) {
				return nil, &ParseError{Pattern: s, Pos: i, Reason: "unterminated variable"}
			}
			if j == i+1 {
				return nil, &ParseError{Pattern: s, Pos: i, Reason: "empty variable name"}
			}
			toks = append(toks, Token{Var: true, Text: string(runes[i+1 : j])})
			i = j + 1
		case '}':
			if i+1 < len(runes) && runes[i+1] == '}' {
				toks = append(toks, Token{Text: "}"})
				i += 2
				continue
			}
			return nil, &ParseError{Pattern: s, Pos: i, Reason: "unescaped '}'"}
		default:
			toks = append(toks, Token{Text: string(runes[i])})
			i++
		}
	}
	return toks, nil
}

// Escape doubles every brace in s so it tokenizes back to the same literal
// text.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}

// Vars returns the distinct variable names in a pattern, in order of first
// appearance.
func Vars(toks []Token) []string {
	var names []string
	seen := make(map[string]bool)
	for _, t := range toks {
		if t.Var && !seen[t.Text] {
			seen[t.Text] = true
			names = append(names, t.Text)
		}
	}
	return names
}
