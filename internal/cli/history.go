package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/shapes/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DBPath string
	Limit  int
}

// RunSummary is one lint run in the history listing.
type RunSummary struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Hash      string    `json:"catalog_hash"`
	Threshold string    `json:"threshold"`
	Findings  int       `json:"findings"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [from-run to-run]",
		Short: "List recorded lint runs or compare two of them",
		Long: `List the lint runs recorded with "shapes lint --db", newest first.

Given two run IDs, print the types whose pattern changed between them:
added, removed or reshaped.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 run IDs, received %d", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "shapes.db", "history database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of runs to list (0 for all)")
	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	// Open would create an empty database; a missing file is a user error.
	if _, err := os.Stat(opts.DBPath); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DBPath), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.DBPath))
	}
	st, err := store.Open(opts.DBPath, store.ReadOnly())
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if len(args) == 2 {
		return runHistoryDiff(ctx, st, formatter, args[0], args[1])
	}

	runs, err := st.Runs(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	summaries := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		created, err := r.CreatedAt()
		if err != nil {
			return WrapExitError(ExitCommandError, "corrupt run", err)
		}
		findings, err := st.Findings(ctx, r.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read findings", err)
		}
		summaries = append(summaries, RunSummary{
			ID:        r.ID,
			Seq:       r.Seq,
			CreatedAt: created,
			Source:    r.Source,
			Hash:      r.CatalogHash,
			Threshold: r.Threshold,
			Findings:  len(findings),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(formatter.Writer, "%4d  %s  %s  %s  %s  %d finding(s)\n",
			s.Seq, s.ID, s.CreatedAt.Format(time.RFC3339), s.Source, shortHash(s.Hash), s.Findings)
	}
	return nil
}

func runHistoryDiff(ctx context.Context, st *store.Store, formatter *OutputFormatter, from, to string) error {
	for _, id := range []string{from, to} {
		if _, err := st.Run(ctx, id); err != nil {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unknown run", err)
		}
	}
	changes, err := st.Changes(ctx, from, to)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compare runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(changes)
	}
	if len(changes) == 0 {
		formatter.Pass("No pattern changes")
		return nil
	}
	for _, c := range changes {
		switch {
		case c.Before == "":
			okColor.Fprintf(formatter.Writer, "+ %s\n", c.TypeName)
		case c.After == "":
			failColor.Fprintf(formatter.Writer, "- %s\n", c.TypeName)
		default:
			before, _ := st.Pattern(ctx, c.Before)
			after, _ := st.Pattern(ctx, c.After)
			warnColor.Fprintf(formatter.Writer, "~ %s\n", c.TypeName)
			fmt.Fprintf(formatter.Writer, "    was %s\n    now %s\n", before, after)
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
