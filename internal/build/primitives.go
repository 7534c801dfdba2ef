// Package build is the make-style layer on top of the resolution engine:
// filesystem primitives, shell build actions, rule registration helpers,
// the satisfier implementing the test/commands contract, and watch mode.
package build

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"logicmake/internal/engine"
	"logicmake/internal/logging"
	"logicmake/internal/term"
)

// Functor names of the built-in predicates.
const (
	PredExists  = "exists"
	PredCurrent = "file_is_current"
)

// FS evaluates the filesystem primitives relative to a root directory.
type FS struct {
	Root string
}

// Register installs the exists/file_is_current evaluators on an engine.
func (f *FS) Register(e *engine.Engine) {
	e.RegisterPrimitive(PredExists, f.exists)
	e.RegisterPrimitive(PredCurrent, f.current)
}

// exists(Path) holds when the argument resolves to a ground path naming an
// existing file or directory.
func (f *FS) exists(q *term.Atom, b *term.Bindings) bool {
	if len(q.Args) != 1 {
		return false
	}
	path, ok := PathOf(q.Args[0], b)
	if !ok {
		return false
	}
	_, err := os.Stat(f.join(path))
	if err != nil {
		logging.Get(logging.CategoryBuild).Debug("exists check failed",
			zap.String("path", path), zap.Error(err))
	}
	return err == nil
}

// file_is_current(Target, Source) holds when the target exists and is at
// least as new as the source.
func (f *FS) current(q *term.Atom, b *term.Bindings) bool {
	if len(q.Args) != 2 {
		return false
	}
	target, ok := PathOf(q.Args[0], b)
	if !ok {
		return false
	}
	source, ok := PathOf(q.Args[1], b)
	if !ok {
		return false
	}
	ti, err := os.Stat(f.join(target))
	if err != nil {
		return false
	}
	si, err := os.Stat(f.join(source))
	if err != nil {
		return false
	}
	return !ti.ModTime().Before(si.ModTime())
}

func (f *FS) join(path string) string {
	if f.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.Root, path)
}

// PathOf resolves a term to a concrete path string. A zero-argument atom
// is its own path; a file(...) compound concatenates its ground pieces,
// so file("myfile", ".o") names "myfile.o". Unbound variables or nested
// structure make the term non-ground and the primitive fails.
func PathOf(t term.Term, b *term.Bindings) (string, bool) {
	t = term.Substitute(t, b)
	atom, ok := t.(*term.Atom)
	if !ok {
		return "", false
	}
	if len(atom.Args) == 0 {
		return atom.Name, true
	}
	if atom.Name != "file" {
		return "", false
	}
	var sb strings.Builder
	for _, arg := range atom.Args {
		piece, ok := arg.(*term.Atom)
		if !ok || len(piece.Args) != 0 {
			return "", false
		}
		sb.WriteString(piece.Name)
	}
	return sb.String(), true
}

// File builds a file(...) term from its pieces, a convenience for
// registering structured rules like file(Base, ".o").
func File(pieces ...term.Term) *term.Atom {
	return term.NewAtom("file", pieces...)
}
