package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

// TypePatternOutput is the rendered pattern of one type.
type TypePatternOutput struct {
	Type    string   `json:"type"`
	Pattern ir.Value `json:"pattern"`
	Text    string   `json:"-"`
}

// NewPatternCommand creates the pattern command.
func NewPatternCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern <catalog> [type...]",
		Short: "Print the encoded shape of catalog types",
		Long: `Print the pattern describing the encoded form of each type.

Types may be declared names, primitives or JSON type expressions such as
'{"list": "Tree"}'. With no types, every declared name is printed.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPattern(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func runPattern(opts *RootOptions, path string, types []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadCatalog(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	if len(types) == 0 {
		types = loaded.Catalog.Names
	}

	e, err := opts.newEngine(formatter.GetErrWriter())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid rules", err)
	}

	out := make([]TypePatternOutput, 0, len(types))
	for _, expr := range types {
		desc, err := resolveType(loaded.Catalog, expr)
		if err != nil {
			_ = formatter.Error(ErrCodeConvert, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unknown type", err)
		}
		p, err := e.Pattern(desc)
		if err != nil {
			_ = formatter.Error(ErrCodeConvert, err.Error(), nil)
			return WrapExitError(ExitFailure, fmt.Sprintf("no pattern for %s", expr), err)
		}
		out = append(out, TypePatternOutput{Type: expr, Pattern: pattern.Render(p), Text: pattern.Format(p)})
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}
	for _, tp := range out {
		fmt.Fprintf(formatter.Writer, "%s\t%s\n", tp.Type, tp.Text)
	}
	return nil
}
