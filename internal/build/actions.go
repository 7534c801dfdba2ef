package build

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"logicmake/internal/engine"
	"logicmake/internal/logging"
	"logicmake/internal/pattern"
	"logicmake/internal/term"
)

// ActionError reports a failed build action together with its captured
// output. The satisfier treats it as "this candidate proof failed" and
// moves on to the next alternative.
type ActionError struct {
	Script string
	Output string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("build: action %q failed: %v", e.Script, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// ShellRunner executes build scripts through the configured shell with a
// per-command timeout.
type ShellRunner struct {
	Shell   string
	Dir     string
	Timeout time.Duration
	Env     []string
}

// Run executes one script and returns its combined output.
func (r *ShellRunner) Run(ctx context.Context, script string) (string, error) {
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logging.Get(logging.CategoryActions)
	log.Info("running action", zap.String("script", script))

	cmd := exec.CommandContext(ctx, shell, "-c", script)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = r.Env
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn("action failed",
			zap.String("script", script),
			zap.String("output", strings.TrimSpace(string(out))),
			zap.Error(err))
		return string(out), &ActionError{Script: script, Output: string(out), Err: err}
	}
	return string(out), nil
}

// ExpandTemplate substitutes bound variables into a {name}-style template,
// e.g. "cc -c {base}.c -o {base}.o". Placeholder names are the rule
// author's original names; they reach the live bindings through the rule's
// standardize-apart mapping (nil rule means direct lookup). Every
// placeholder must resolve to a ground zero-argument atom; anything else
// is an error, since running a command with a hole in it helps nobody.
func ExpandTemplate(tmpl string, r *engine.Rule, b *term.Bindings) (string, error) {
	toks, err := pattern.Tokenize(tmpl)
	if err != nil {
		return "", fmt.Errorf("build: bad command template: %w", err)
	}
	var sb strings.Builder
	for _, t := range toks {
		if !t.Var {
			sb.WriteString(t.Text)
			continue
		}
		v := term.NewVariable(t.Text)
		if r != nil {
			rv, ok := r.Var(t.Text)
			if !ok {
				return "", fmt.Errorf("build: template variable {%s} is not a rule variable", t.Text)
			}
			v = rv
		}
		val := term.Substitute(v, b)
		atom, ok := val.(*term.Atom)
		if !ok || len(atom.Args) != 0 || term.IsPatternName(atom.Name) {
			return "", fmt.Errorf("build: template variable {%s} is not bound to a value", t.Text)
		}
		sb.WriteString(atom.Name)
	}
	return sb.String(), nil
}
