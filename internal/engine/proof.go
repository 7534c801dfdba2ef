package engine

import (
	"fmt"
	"sort"
	"strings"

	"logicmake/internal/term"
)

// Result is the caller-facing view of a proof: the resolved value of every
// user-named variable plus the ordered handles of the rules applied.
type Result struct {
	Bindings map[string]term.Term
	Rules    []string
}

// Result flattens a proof for callers that do not want to hold live terms.
func (p *Proof) Result() Result {
	res := Result{Bindings: p.Bindings.Ground()}
	for _, r := range p.Rules {
		res.Rules = append(res.Rules, r.ID())
	}
	return res
}

// Render prints the proof as one rule application per line with the
// resolved consequent, suitable for trace logs and CLI output.
func (p *Proof) Render() string {
	var sb strings.Builder
	for i, r := range p.Rules {
		if i > 0 {
			sb.WriteByte('\n')
		}
		connector := "├── "
		if i == len(p.Rules)-1 {
			connector = "└── "
		}
		resolved := term.Substitute(r.Consequent(), p.Bindings)
		fmt.Fprintf(&sb, "%s%s", connector, resolved)
		if r.Fact() {
			sb.WriteString("  [fact]")
		}
	}
	if len(p.Rules) == 0 {
		sb.WriteString("(proved without rules)")
	}
	return sb.String()
}

// BindingsLine renders the user-visible bindings as name=value pairs,
// sorted by name.
func (p *Proof) BindingsLine() string {
	ground := p.Bindings.Ground()
	names := make([]string, 0, len(ground))
	for name := range ground {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%s", name, ground[name])
	}
	return strings.Join(parts, " ")
}
