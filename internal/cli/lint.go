package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/store"
)

// LintOptions holds flags for the lint command.
type LintOptions struct {
	*RootOptions
	Threshold string // weakest match strength reported
	DBPath    string // record the run here when set
	Workers   int    // parallel pattern builds
}

// LintFinding is one ambiguity in the lint report.
type LintFinding struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Branch   int    `json:"branch"`
	Other    int    `json:"other"`
	Strength string `json:"strength"`
	Message  string `json:"message"`
}

// LintResult holds the lint report.
type LintResult struct {
	Catalog   string        `json:"catalog"`
	Hash      string        `json:"catalog_hash"`
	Threshold string        `json:"threshold"`
	Types     int           `json:"types"`
	Findings  []LintFinding `json:"findings"`
	RunID     string        `json:"run_id,omitempty"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lint <catalog>",
		Short: "Find unions whose branches shadow each other",
		Long: `Build the pattern of every declared type and report each union in
which an earlier branch matches data meant for a later one at the
threshold or stronger (always < sometimes < potential).

With --db the run is recorded so "shapes history" can compare it with
later runs.

Exit codes:
  0 - No ambiguities
  1 - Ambiguities found
  2 - Command error (invalid paths, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Threshold, "threshold", "potential", "weakest strength to report (always|sometimes|potential)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "record the run in this SQLite database")
	cmd.Flags().IntVar(&opts.Workers, "workers", runtime.GOMAXPROCS(0), "number of parallel workers")
	return cmd
}

func runLint(ctx context.Context, opts *LintOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	threshold, err := pattern.ParseMatches(opts.Threshold)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid threshold", err)
	}

	loaded, err := LoadCatalog(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	cat := loaded.Catalog

	base, err := opts.newEngine(formatter.GetErrWriter())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid rules", err)
	}

	// Each name is linted by a pooled engine; results land by index so
	// the report keeps declaration order.
	names := cat.All()
	patterns := make([]pattern.Pattern, len(names))
	indexes := make([]int, len(names))
	for i := range indexes {
		indexes[i] = i
	}
	err = engine.Each(ctx, engine.NewPool(base), opts.Workers, indexes, func(ctx context.Context, e *engine.Engine, i int) error {
		p, err := e.Pattern(names[i])
		if err != nil {
			return fmt.Errorf("%s: %w", names[i].Name, err)
		}
		patterns[i] = p
		return nil
	})
	if err != nil {
		_ = formatter.Error(ErrCodeConvert, err.Error(), nil)
		return WrapExitError(ExitFailure, "lint failed", err)
	}
	formatter.VerboseLog("Built %d patterns with %d workers", len(names), opts.Workers)

	result := LintResult{
		Catalog:   path,
		Hash:      cat.Fingerprint(),
		Threshold: threshold.String(),
		Types:     len(names),
		Findings:  []LintFinding{},
	}
	in := store.RunInput{Source: path, CatalogHash: result.Hash, Threshold: threshold}
	for i, n := range names {
		tp, err := store.NewTypePattern(n.Name, patterns[i])
		if err != nil {
			return WrapExitError(ExitFailure, "lint failed", err)
		}
		in.Types = append(in.Types, tp)
		for _, amb := range pattern.FindAmbiguities(patterns[i], threshold) {
			f := store.NewFinding(len(in.Findings), n.Name, amb)
			in.Findings = append(in.Findings, f)
			result.Findings = append(result.Findings, LintFinding{
				Type:     f.TypeName,
				Path:     f.Path,
				Branch:   f.Branch,
				Other:    f.Other,
				Strength: f.Strength,
				Message:  f.Message,
			})
		}
	}

	if opts.DBPath != "" {
		runID, err := recordLint(ctx, opts.DBPath, in)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.RunID = runID
		formatter.VerboseLog("Recorded run %s in %s", runID, opts.DBPath)
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputLintText(formatter, result)
	}

	if len(result.Findings) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d ambiguous union(s)", len(result.Findings)))
	}
	return nil
}

func recordLint(ctx context.Context, dbPath string, in store.RunInput) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run, err := st.RecordRun(ctx, in)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func outputLintText(f *OutputFormatter, result LintResult) {
	if len(result.Findings) == 0 {
		f.Pass("%d types, no ambiguities at %s", result.Types, result.Threshold)
	} else {
		f.Fail("%d ambiguous union(s) at %s", len(result.Findings), result.Threshold)
		for _, finding := range result.Findings {
			level := "info"
			if finding.Strength == pattern.Always.String() {
				level = "warning"
			}
			f.Note(level, "%s %s", finding.Type, finding.Message)
		}
	}
	if result.RunID != "" {
		fmt.Fprintf(f.Writer, "run %s\n", result.RunID)
	}
}
