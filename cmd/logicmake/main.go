package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"logicmake/internal/config"
	"logicmake/internal/logging"
)

var (
	// Global flags
	cfgPath string
	workDir string
	verbose bool

	cfg config.Config
)

// styles for CLI output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	factStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

var rootCmd = &cobra.Command{
	Use:   "logicmake",
	Short: "logicmake - dependency resolution as logical inference",
	Long: `logicmake treats a build as a theorem: targets are goals, build rules
are implications, and a successful build is a proof. Target names may
contain {name} variables; two names with variables on both sides are
matched by enumerating every admissible alignment.

The built-in demo rule set compiles C sources: object files depend on
sources, programs depend on objects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if workDir != "" {
			cfg.Execution.WorkDir = workDir
		}
		if verbose {
			cfg.Logging.Level = "debug"
			cfg.Logging.Development = true
		}
		return logging.Init(logging.Options{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", "directory to build in (default: current)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(alignCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
