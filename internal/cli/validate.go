package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shapes/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Types  int                        `json:"types"`
	Hash   string                     `json:"catalog_hash"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
	Notes  []compiler.Note            `json:"notes,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog>",
		Short: "Check that every type in a catalog can be converted",
		Long: `Compile a CUE type catalog and check it against the rule engine.

Reports empty enums and unions, duplicate members, names that only name
each other, defaults that do not decode, unusable map keys and types no
rule handles. Recursive types and types without finite values are
reported as notes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadCatalog(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, path)

	e, err := opts.newEngine(formatter.GetErrWriter())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid rules", err)
	}

	cat := loaded.Catalog
	result := ValidationResult{
		Types:  len(cat.Names),
		Hash:   cat.Fingerprint(),
		Errors: compiler.Validate(cat, e),
		Notes:  compiler.AnalyzeRecursion(cat),
	}
	result.Valid = len(result.Errors) == 0

	if opts.Format == "json" {
		var cliErr *CLIError
		status := "ok"
		if !result.Valid {
			status = "error"
			cliErr = &CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		}
		if err := formatter.JSON(status, result, cliErr); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

func outputValidateText(f *OutputFormatter, result ValidationResult) {
	if result.Valid {
		f.Pass("Catalog valid (%d types)", result.Types)
	} else {
		f.Fail("Validation failed")
		fmt.Fprintln(f.Writer)
		for _, err := range result.Errors {
			fmt.Fprintf(f.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
		}
	}
	for _, n := range result.Notes {
		f.Note(n.Level, "%s (%s)", n.Message, strings.Join(n.Path, ", "))
	}
}
