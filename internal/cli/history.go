package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/dirsort/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		root  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recorded organize runs",
		Long: `Every organize run is recorded with its per-extension counts.
'dirsort history' lists recent runs, 'dirsort history clear' removes them.
Individual file moves are not recorded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, root, limit)
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "only show runs for this directory")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show (0 for all)")

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryClearCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var (
		root  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, root, limit)
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "only show runs for this directory")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show (0 for all)")

	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs.\n", n)
			return nil
		},
	}
}

func openHistory() (*history.Store, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return history.Open(historyPath(cfg))
}

func listHistory(cmd *cobra.Command, root string, limit int) error {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve root: %w", err)
		}
		root = abs
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			root = resolved
		}
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.List(cmd.Context(), history.Filter{Root: root, Limit: limit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "RUN\tROOT\tMODE\tFILES\tMOVED\tFAILED\tSIZE\tWHEN\n")
	for _, r := range runs {
		mode := "move"
		if r.DryRun {
			mode = "dry-run"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			shortID(r.ID), r.Root, mode, r.Discovered, r.Moved, r.Failed,
			humanize.Bytes(uint64(r.Bytes)), humanize.Time(r.StartedAt))
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
