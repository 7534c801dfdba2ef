package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"logicmake/internal/build"
	"logicmake/internal/engine"
	"logicmake/internal/pattern"
	"logicmake/internal/term"
)

var (
	solveAll       bool
	solveMaxProofs int
	alignMatrix    bool
)

func init() {
	solveCmd.Flags().BoolVar(&solveAll, "all", false, "enumerate every proof, not just the first")
	solveCmd.Flags().IntVar(&solveMaxProofs, "max-proofs", 0, "stop after this many proofs (0: config value)")
	alignCmd.Flags().BoolVar(&alignMatrix, "matrix", false, "print the alignment matrix")
}

var solveCmd = &cobra.Command{
	Use:   "solve [target]",
	Short: "Prove a target without running any build actions",
	Long: `Resolves a target against the rule base and prints each proof: the
chain of rules applied and the resulting variable bindings. Nothing is
executed; use "build" to actually bring the target up to date.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := newRuleSet(cfg)
		if err != nil {
			return err
		}
		target := term.NewAtom(args[0])
		proofs := rs.Engine().Resolve(target)

		limit := solveMaxProofs
		if limit == 0 {
			limit = cfg.Resolution.MaxProofs
		}
		count := 0
		for {
			proof, ok := proofs.Next()
			if !ok {
				break
			}
			count++
			fmt.Println(titleStyle.Render(fmt.Sprintf("proof %d of %s", count, target)))
			fmt.Println(renderProof(proof))
			if line := proof.BindingsLine(); line != "" {
				fmt.Println(mutedStyle.Render("where " + line))
			}
			if !solveAll || (limit > 0 && count >= limit) {
				break
			}
		}
		if err := proofs.Err(); err != nil {
			return err
		}
		if count == 0 {
			fmt.Println(errorStyle.Render(fmt.Sprintf("no proof for %s", target)))
			os.Exit(1)
		}
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build [target]",
	Short: "Bring a target up to date",
	Long: `Resolves the target and executes the first derivation that can be
satisfied: dependencies first, each rule's actions running only when its
test does not already hold. A failed action backtracks to the next
derivation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := newRuleSet(cfg)
		if err != nil {
			return err
		}
		target := term.NewAtom(args[0])
		sat := build.NewSatisfier(rs.Engine())
		proof, err := sat.Satisfy(cmd.Context(), target)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("%s is up to date", target)))
		fmt.Println(renderProof(proof))
		return nil
	},
}

var alignCmd = &cobra.Command{
	Use:   "align [pattern] [pattern]",
	Short: "Align two patterns and print every match",
	Long: `Matches two strings that may both contain {name} variables and prints
each admissible alignment's bindings. With --matrix the underlying
alignment matrix is printed first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := pattern.NewMatrix(args[0], args[1])
		if err != nil {
			return err
		}
		if alignMatrix {
			fmt.Println(m.String())
		}
		fmt.Println(mutedStyle.Render(fmt.Sprintf("%d alignment(s)", m.Matches())))
		it := m.Alignments()
		n := 0
		for {
			al, ok := it.Next()
			if !ok {
				break
			}
			n++
			fmt.Println(titleStyle.Render(fmt.Sprintf("alignment %d", n)))
			names := make([]string, 0, len(al.Bindings))
			byName := make(map[string]pattern.Binding, len(al.Bindings))
			for _, bd := range al.Bindings {
				names = append(names, bd.Var)
				byName[bd.Var] = bd
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  {%s} = %s\n", name, byName[name].Value())
			}
		}
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := newRuleSet(cfg)
		if err != nil {
			return err
		}
		for _, r := range rs.Engine().Rules() {
			line := r.String()
			if r.Fact() {
				line += factStyle.Render("  [fact]")
			}
			fmt.Println(line)
			fmt.Println(mutedStyle.Render("  id " + r.ID()))
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [target...]",
	Short: "Rebuild targets whenever a watched path changes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := newRuleSet(cfg)
		if err != nil {
			return err
		}
		paths := cfg.Watch.Paths
		if len(paths) == 0 {
			dir := cfg.Execution.WorkDir
			if dir == "" {
				dir = "."
			}
			paths = []string{dir}
		}
		sat := build.NewSatisfier(rs.Engine())
		w, err := build.NewWatcher(sat, paths, cfg.GetWatchDebounce())
		if err != nil {
			return err
		}
		for _, arg := range args {
			w.Watch(term.NewAtom(arg))
		}
		if err := w.Start(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(titleStyle.Render("watching; ctrl-c to stop"))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
		case <-cmd.Context().Done():
		}
		return w.Stop()
	},
}

// renderProof styles the engine's proof rendering: connectors muted,
// the [fact] marker highlighted.
func renderProof(p *engine.Proof) string {
	lines := strings.Split(p.Render(), "\n")
	for i, line := range lines {
		for _, conn := range []string{"├── ", "└── "} {
			if rest, ok := strings.CutPrefix(line, conn); ok {
				line = mutedStyle.Render(conn) + rest
				break
			}
		}
		if rest, ok := strings.CutSuffix(line, "  [fact]"); ok {
			line = rest + factStyle.Render("  [fact]")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
