package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/store"
)

// FindingsOptions holds flags for the findings command.
type FindingsOptions struct {
	*RootOptions
	DBPath    string
	RunID     string
	Source    string
	Types     []string
	Threshold string
	Limit     int
}

// FindingRecord is one recorded finding in the search output.
type FindingRecord struct {
	RunID    string `json:"run_id"`
	Seq      int64  `json:"seq"`
	Source   string `json:"source"`
	Type     string `json:"type"`
	Path     string `json:"path"`
	Branch   int    `json:"branch"`
	Other    int    `json:"other"`
	Strength string `json:"strength"`
	Message  string `json:"message"`
}

// NewFindingsCommand creates the findings command.
func NewFindingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "findings",
		Short: "Search ambiguities recorded by past lint runs",
		Long: `Search the findings recorded with "shapes lint --db", newest run first.

Examples:
  shapes findings --type Id --type Loose
  shapes findings --threshold always --source catalog.cue
  shapes findings --run 0190c3a2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindings(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "shapes.db", "history database")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only findings of this run")
	cmd.Flags().StringVar(&opts.Source, "source", "", "only runs of this catalog path")
	cmd.Flags().StringArrayVar(&opts.Types, "type", nil, "only findings in this type (repeatable)")
	cmd.Flags().StringVar(&opts.Threshold, "threshold", "potential", "weakest strength to show (always|sometimes|potential)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum findings to show (0 for all)")
	return cmd
}

func runFindings(ctx context.Context, opts *FindingsOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	threshold, err := pattern.ParseMatches(opts.Threshold)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid threshold", err)
	}

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

	filter := store.FindingFilter{
		RunID:     opts.RunID,
		Source:    opts.Source,
		Types:     opts.Types,
		Strengths: store.AtLeast(threshold),
	}
	hits, err := st.Search(ctx, filter.Predicate(), opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "search failed", err)
	}

	records := make([]FindingRecord, len(hits))
	for i, h := range hits {
		records[i] = FindingRecord{
			RunID:    h.RunID,
			Seq:      h.Seq,
			Source:   h.Source,
			Type:     h.TypeName,
			Path:     h.Path,
			Branch:   h.Branch,
			Other:    h.Other,
			Strength: h.Strength,
			Message:  h.Message,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No findings.")
		return nil
	}
	for _, r := range records {
		c := infoColor
		if r.Strength == pattern.Always.String() {
			c = warnColor
		}
		c.Fprintf(formatter.Writer, "%4d  %-9s  %s %s\n", r.Seq, r.Strength, r.Type, r.Message)
	}
	return nil
}
