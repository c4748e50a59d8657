package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/store"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent synthesis runs from the advisory run index",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Maximum number of runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	storeRoot := cfg.ArtifactStoreRoot
	if !filepath.IsAbs(storeRoot) {
		storeRoot = filepath.Join(workspace, storeRoot)
	}

	idx, err := store.OpenRunIndex(storeRoot)
	if err != nil {
		return fmt.Errorf("open run index: %w", err)
	}
	defer idx.Close()

	rows, err := idx.List(flagRunsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSUCCESS\tITERATIONS\tSTARTED\tENDED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%v\t%d\t%s\t%s\n", r.RunID, r.Success, r.TotalIterations, r.StartedAt, r.EndedAt)
	}
	return w.Flush()
}
