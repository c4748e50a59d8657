package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/critics"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/modeladapter"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/orchestrator"
	dsprogress "github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/progress"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/smoke"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/store"
)

var (
	flagPlannerModel string
	flagCoderModel   string
	flagCriticModel  string
	flagRuntimeModel string
	flagMaxIters     int
	flagDryRun       bool
	flagNoUI         bool
)

var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Synthesize a single-page tool from a plain English request",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagPlannerModel, "planner-model", "planner", "Model id for the Planner role")
	runCmd.Flags().StringVar(&flagCoderModel, "coder-model", "coder", "Model id for the Coder role")
	runCmd.Flags().StringVar(&flagCriticModel, "critic-model", "critic", "Model id for both Critic roles")
	runCmd.Flags().StringVar(&flagRuntimeModel, "runtime-model", "runtime", "Model id the synthesized page uses for window.geaRuntimeLLM() calls")
	runCmd.Flags().IntVar(&flagMaxIters, "max-iters", 0, "Override configured max iterations (1-10)")
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Use a scripted stub adapter instead of calling a real model endpoint")
	runCmd.Flags().BoolVar(&flagNoUI, "no-ui", false, "Print progress as plain log lines instead of the live bubbletea view")
}

func runRun(cmd *cobra.Command, args []string) error {
	prompt := args[0]

	maxIters := cfg.MaxIters
	if flagMaxIters > 0 {
		maxIters = flagMaxIters
	}
	maxIters = clampMaxIters(maxIters)

	storeRoot := cfg.ArtifactStoreRoot
	if !filepath.IsAbs(storeRoot) {
		storeRoot = filepath.Join(workspace, storeRoot)
	}
	if err := os.MkdirAll(storeRoot, 0o755); err != nil {
		return fmt.Errorf("create artifact store: %w", err)
	}

	runIndex, err := store.OpenRunIndex(storeRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run index unavailable: %v\n", err)
	}
	if runIndex != nil {
		defer runIndex.Close()
	}
	artifactStore := store.Open(storeRoot, runIndex)

	adapter := buildAdapter()

	harness := smoke.New(smoke.Config{
		Headless:            cfg.Browser.Headless,
		ViewportWidth:       cfg.Browser.ViewportWidth,
		ViewportHeight:      cfg.Browser.ViewportHeight,
		NavigationTimeoutMs: cfg.Browser.NavigationTimeoutMs,
		SettleTimeMs:        cfg.Browser.SettleTimeMs,
	})
	defer harness.Close()

	orch := orchestrator.New(
		adapter,
		&critics.PlanCritic{Adapter: adapter},
		&critics.CodeCritic{Adapter: adapter},
		harness,
		artifactStore,
		modelTimeout(),
	)

	req := domain.Request{
		Prompt:       prompt,
		MaxIters:     maxIters,
		PlannerModel: flagPlannerModel,
		CoderModel:   flagCoderModel,
		CriticModel:  flagCriticModel,
		RuntimeModel: flagRuntimeModel,
	}

	if flagNoUI {
		return runPlain(orch, req)
	}
	return runWithUI(orch, req, maxIters)
}

// buildAdapter returns a scripted StubAdapter under --dry-run (so the whole
// pipeline is exercisable without a live model endpoint), or an HTTPAdapter
// against cfg.ModelBaseURL otherwise.
func buildAdapter() modeladapter.Adapter {
	if flagDryRun {
		stub := modeladapter.NewStubAdapter()
		stub.Default = func(modelID, prompt string) (string, error) {
			switch modelID {
			case flagPlannerModel:
				return `{"title": "Dry Run Tool", "pages": ["home"], "ui_components": ["table", "form", "button"]}`, nil
			case flagCoderModel:
				return `<!DOCTYPE html><html><head><title>Dry Run Tool</title></head><body>
<table></table><form></form><button>Go</button>
</body></html>`, nil
			case flagCriticModel:
				return `{"approved": true, "issues": [], "missing": []}`, nil
			default:
				return "", fmt.Errorf("dry-run: no canned response for model %q", modelID)
			}
		}
		return stub
	}
	return modeladapter.NewHTTPAdapter(cfg.ModelBaseURL, modelTimeout())
}

func clampMaxIters(n int) int {
	if n <= 0 {
		return 8
	}
	if n > 10 {
		return 10
	}
	return n
}

// runPlain drives the orchestrator synchronously, printing each progress
// event as a log line. Used under --no-ui and from non-interactive shells.
func runPlain(orch *orchestrator.Orchestrator, req domain.Request) error {
	onProgress := func(ev dsprogress.Event) {
		fmt.Println(formatEvent(ev))
	}
	result, err := orch.Run(context.Background(), req, onProgress)
	if result != nil {
		printSummary(result)
	}
	if err != nil && !errors.Is(err, orchestrator.ErrMaxIters) {
		return err
	}
	if result != nil && !result.Success {
		return fmt.Errorf("run did not succeed within %d iterations", req.MaxIters)
	}
	return nil
}

// runWithUI drives the orchestrator on a background goroutine, streaming
// progress.Event values into a bubbletea program via tea.Program.Send — the
// only safe way to push data into a running bubbletea Update loop from
// another goroutine.
func runWithUI(orch *orchestrator.Orchestrator, req domain.Request, maxIters int) error {
	model := newProgressModel(maxIters)
	program := tea.NewProgram(model)

	go func() {
		onProgress := func(ev dsprogress.Event) {
			program.Send(progressEventMsg(ev))
		}
		result, err := orch.Run(context.Background(), req, onProgress)
		program.Send(runDoneMsg{result: result, err: err})
	}()

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("progress UI: %w", err)
	}

	pm, ok := finalModel.(progressModel)
	if !ok || pm.final == nil {
		return fmt.Errorf("run ended without a result")
	}

	if pm.final.result != nil {
		printSummary(pm.final.result)
	}
	if pm.final.err != nil && !errors.Is(pm.final.err, orchestrator.ErrMaxIters) {
		return pm.final.err
	}
	if pm.final.result != nil && !pm.final.result.Success {
		return fmt.Errorf("run did not succeed within %d iterations", req.MaxIters)
	}
	return nil
}

func printSummary(result *orchestrator.RunResult) {
	md := fmt.Sprintf(`# Run %s

**Success:** %v
**Iterations:** %d
**Artifact:** %s
`, result.RunID, result.Success, result.Summary.TotalIterations, result.FinalHTMLPath)

	if len(result.SecurityErrors) > 0 {
		md += "\n## Security violations seen\n"
		for _, e := range result.SecurityErrors {
			md += fmt.Sprintf("- %s\n", e)
		}
	}
	if len(result.FailureReports) > 0 {
		md += "\n## Failure reports\n"
		for _, f := range result.FailureReports {
			md += fmt.Sprintf("- %s\n", f)
		}
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := renderer.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
