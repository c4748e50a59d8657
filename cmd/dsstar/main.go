// Package main implements the dsstar CLI — a thin front door over the
// DS-Star orchestrator core (SPEC_FULL.md §1 "Delivery shape"). The core
// ships as an importable module; this binary is its only in-repo consumer,
// driving the upstream run(...) interface against an HTTP or stub model
// adapter and rendering live progress with bubbletea.
//
// Adapted from the teacher's cmd/nerd/main.go command-registration layout:
// a cobra rootCmd holding global persistent flags, one file per subcommand
// family, zap for CLI-facing structured logging, and internal/logging for
// the gated on-disk debug trail.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/config"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/logging"
)

var (
	verbose     bool
	workspace   string
	configPath  string
	debugMode   bool
	cfg         *config.Config
	cliLogger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dsstar",
	Short: "DS-Star — iterative LLM-driven single-page app synthesis",
	Long: `dsstar drives an iterative Plan -> PlanCritique -> CodeGen ->
SecurityScan -> CodeCritique -> SmokeTest -> Patch loop that turns a plain
English request into a single, self-contained, security-vetted HTML tool.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			var err error
			ws, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve workspace: %w", err)
			}
		} else if abs, err := filepath.Abs(ws); err == nil {
			ws = abs
		}
		workspace = ws

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if debugMode {
			loaded.DebugMode = true
		}
		cfg = loaded

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zapCfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cliLogger = l

		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		if err := logging.Initialize(ws, cfg.DebugMode, level); err != nil {
			fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cliLogger != nil {
			_ = cliLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "dsstar.yaml", "Path to dsstar.yaml")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable categorized file logging under .dsstar/logs")

	rootCmd.AddCommand(runCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// modelTimeout resolves the per-call deadline from config, defaulting to
// 120s per §5 when unset or malformed.
func modelTimeout() time.Duration {
	if cfg == nil {
		return 120 * time.Second
	}
	return cfg.GetModelTimeout()
}
