package main

import (
	"os"

	"logicmake/internal/build"
	"logicmake/internal/config"
	"logicmake/internal/engine"
)

// newRuleSet assembles the demo C build rules over the configured working
// directory. Source files are leaf rules: their test is file existence
// and they carry no actions, so a missing source fails the derivation.
func newRuleSet(cfg config.Config) (*build.RuleSet, error) {
	dir := cfg.Execution.WorkDir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}

	eng := engine.New()
	eng.SetMaxDepth(cfg.Resolution.MaxDepth)
	run := &build.ShellRunner{
		Shell:   cfg.Execution.Shell,
		Dir:     dir,
		Timeout: cfg.GetExecutionTimeout(),
	}
	rs := build.NewRuleSet(eng, run, &build.FS{Root: dir})

	if _, err := rs.Target("{base}.c").Register(); err != nil {
		return nil, err
	}
	if _, err := rs.Target("{base}.o").
		Requires("{base}.c").
		Commands("cc -c {base}.c -o {base}.o").
		Register(); err != nil {
		return nil, err
	}
	if _, err := rs.Target("{name}.exe").
		Requires("{name}.o").
		Commands("cc {name}.o -o {name}.exe").
		Register(); err != nil {
		return nil, err
	}
	return rs, nil
}
